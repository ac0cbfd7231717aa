package cli

import (
	"context"
	"fmt"

	infradb "github.com/tedrenliv/habit-tracker/internal/infrastructure/db"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/migrations"
)

type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(ctx *Context) error {
	pool, err := ctx.connect(context.Background())
	if err != nil {
		return err
	}
	defer pool.Close()

	db := infradb.SQLDB(pool)
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return err
	}

	st, err := migrations.ReadStatus(db)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "✓ Database at version %d\n", st.Version)
	return nil
}

type MigrateStatusCmd struct{}

func (c *MigrateStatusCmd) Run(ctx *Context) error {
	pool, err := ctx.connect(context.Background())
	if err != nil {
		return err
	}
	defer pool.Close()

	db := infradb.SQLDB(pool)
	defer db.Close()

	st, err := migrations.ReadStatus(db)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Current version: %d\n", st.Version)
	fmt.Fprintf(ctx.Out, "Latest version:  %d\n", st.Latest)
	if st.Dirty {
		fmt.Fprintln(ctx.Out, "State:           dirty (a previous migration failed)")
	}

	if !st.UpToDate() {
		return migrations.CheckStatus(db)
	}

	fmt.Fprintln(ctx.Out, "✓ Schema is up to date")
	return nil
}
