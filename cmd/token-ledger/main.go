package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "token-ledger"
	app.Usage = "Fungible token ledger with owner-controlled supply"
	app.HideVersion = true
	app.Flags = []cli.Flag{configFlag}
	app.Commands = []cli.Command{
		deployCommand,
		infoCommand,
		supplyCommand,
		balanceCommand,
		ownerCommand,
		holdersCommand,
		transferCommand,
		mintCommand,
		burnCommand,
		transferOwnershipCommand,
		verifyCommand,
		dumpCommand,
		restoreCommand,
	}
	return app
}
