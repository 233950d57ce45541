package commands

import (
	"fmt"

	"git.home.luguber.info/inful/kaizen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (c *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, c.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Wrote %s\n", root.Config)
	return nil
}
