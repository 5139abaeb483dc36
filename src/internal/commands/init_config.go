package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
)

func CreateInitConfigCommand() *InitConfigCommand {
	ic := &InitConfigCommand{
		fs: flag.NewFlagSet("init-config", flag.ExitOnError),
	}
	ic.fs.BoolVar(&ic.force, "force", false, "Overwrite an existing configuration file")
	return ic
}

// InitConfigCommand writes the built-in default configuration.
type InitConfigCommand struct {
	fs    *flag.FlagSet
	ctx   *AppContext
	force bool
}

func (c *InitConfigCommand) Name() string {
	return c.fs.Name()
}

func (c *InitConfigCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	return c.fs.Parse(args)
}

func (c *InitConfigCommand) Run() error {
	if _, err := os.Stat(c.ctx.ConfigPath); err == nil && !c.force {
		return fmt.Errorf("configuration file %s already exists, use -force to overwrite it", c.ctx.ConfigPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check configuration file: %w", err)
	}

	cfg := config.DefaultConfig()
	if err := cfg.SetConfigPath(c.ctx.ConfigPath); err != nil {
		return err
	}
	if err := cfg.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	log.Infof("Configuration written to %s", c.ctx.ConfigPath)
	return nil
}
