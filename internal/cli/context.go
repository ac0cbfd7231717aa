package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tedrenliv/habit-tracker/internal/config"
	infradb "github.com/tedrenliv/habit-tracker/internal/infrastructure/db"
)

// Context is shared by every progressctl command
type Context struct {
	ConfigPath string
	Out        io.Writer

	cfg *config.Config
}

// Config loads the service configuration on first use
func (c *Context) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.LoadFile(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// WithConfig sets an already loaded configuration
func (c *Context) WithConfig(cfg *config.Config) *Context {
	c.cfg = cfg
	return c
}

func (c *Context) connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("command requires the %s driver, config uses %q", config.DriverPostgres, cfg.Database.Driver)
	}

	return infradb.NewPostgresPool(ctx, &cfg.Database)
}
