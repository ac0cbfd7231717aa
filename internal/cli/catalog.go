package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
)

type CatalogValidateCmd struct {
	File string `help:"Catalog YAML file." type:"existingfile" required:""`
}

func (c *CatalogValidateCmd) Run(ctx *Context) error {
	achievements, err := catalog.Load(c.File)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRULE\tREQUIREMENT\tNAME")
	for _, a := range achievements {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s %s\n", a.ID, a.Rule, a.Requirement, a.Emoji, a.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "✓ %d achievements valid\n", len(achievements))
	return nil
}
