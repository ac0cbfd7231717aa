package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tedrenliv/habit-tracker/internal/cli"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"./config/base.yaml" env:"CONFIG_PATH"`

	Migrate struct {
		Up     cli.MigrateUpCmd     `cmd:"" help:"Apply pending database migrations."`
		Status cli.MigrateStatusCmd `cmd:"" help:"Show the database schema version."`
	} `cmd:"" help:"Manage the database schema."`
	Catalog struct {
		Validate cli.CatalogValidateCmd `cmd:"" help:"Check an achievement catalog file."`
	} `cmd:"" help:"Work with achievement catalogs."`
	Snapshot cli.SnapshotCmd `cmd:"" help:"Print a user's progress snapshot as JSON."`
	Events   struct {
		Tail cli.EventsTailCmd `cmd:"" help:"Print progress events from Kafka as JSON lines."`
	} `cmd:"" help:"Inspect published progress events."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("progressctl"),
		kong.Description("Operations tool for the habit-tracker progress service"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	err := ctx.Run(&cli.Context{
		ConfigPath: CLI.Config,
		Out:        os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
