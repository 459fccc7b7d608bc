package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ourkive/quorum/app"
	"github.com/ourkive/quorum/x/owners"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize a new wallet in the home directory.

The owner set is either read from a genesis file or given with the -owner and
-threshold flags. This command fails if the wallet is already initialized.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl      = flHome(fl)
		genesisFl   = fl.String("genesis", "", "Path to a genesis file. Cannot be used together with -owner.")
		ownersFl    = flAddresses(fl, "owner", "Address of an owner. Repeat for each owner.")
		thresholdFl = fl.Uint("threshold", 1, "Number of confirmations required to execute a transaction.")
	)
	fl.Parse(args)

	var gen app.Genesis
	switch {
	case *genesisFl != "" && len(*ownersFl) != 0:
		flagDie("-genesis and -owner cannot be used together")
	case *genesisFl != "":
		var err error
		if gen, err = app.LoadGenesis(*genesisFl); err != nil {
			return err
		}
	default:
		var err error
		gen, err = app.NewGenesis(owners.Config{
			Owners:    *ownersFl,
			Threshold: uint32(*thresholdFl),
		})
		if err != nil {
			return err
		}
	}

	if err := app.InitWallet(*homeFl, gen); err != nil {
		return fmt.Errorf("cannot initialize wallet: %s", err)
	}
	_, err := fmt.Fprintf(output, "wallet initialized in %s\n", *homeFl)
	return err
}
