package main

import (
	"os"

	"git.home.luguber.info/inful/kaizen/cmd/kaizen/commands"
	"git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

func main() {
	cli := &commands.CLI{}
	g := commands.NewGlobal()
	parser, err := commands.NewParser(cli, g)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run()
	if cerr := g.Close(); err == nil {
		err = cerr
	}
	errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).HandleError(err)
}
