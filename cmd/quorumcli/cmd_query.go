package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/x/ledger"
)

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out a single transaction as JSON.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = flHome(fl)
		logFl  = flLogLevel(fl)
		idFl   = fl.Uint64("id", 0, "Transaction id.")
	)
	fl.Parse(args)
	if err := requireFlags(fl, "id"); err != nil {
		flagDie("%s", err)
	}

	w, err := openWallet(*homeFl, *logFl, ioutil.Discard)
	if err != nil {
		return err
	}
	defer w.Close()

	tx, err := w.Engine.Transaction(*idFl)
	if err != nil {
		return fmt.Errorf("cannot load transaction: %s", err)
	}
	return writeJSON(output, tx)
}

func cmdList(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out transactions as JSON, ordered by id.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl      = flHome(fl)
		logFl       = flLogLevel(fl)
		filterFl    = fl.String("filter", "all", "Which transactions to list: all, pending or executed.")
		confirmerFl = flAddress(fl, "confirmed-by", "", "List only transactions confirmed by this owner. Cannot be combined with -filter.")
	)
	fl.Parse(args)

	filters := map[string]ledger.Filter{
		"all":      ledger.All,
		"pending":  ledger.Pending,
		"executed": ledger.Executed,
	}
	filter, ok := filters[*filterFl]
	if !ok {
		flagDie("unknown filter %q", *filterFl)
	}

	w, err := openWallet(*homeFl, *logFl, ioutil.Discard)
	if err != nil {
		return err
	}
	defer w.Close()

	var txs []*ledger.Transaction
	if len(*confirmerFl) != 0 {
		txs, err = w.Engine.ConfirmedBy(*confirmerFl)
	} else {
		txs, err = w.Engine.Transactions(filter)
	}
	if err != nil {
		return fmt.Errorf("cannot list transactions: %s", err)
	}
	return writeJSON(output, txs)
}

func cmdOwners(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the owner set and the number of confirmations required.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = flHome(fl)
		logFl  = flLogLevel(fl)
	)
	fl.Parse(args)

	w, err := openWallet(*homeFl, *logFl, ioutil.Discard)
	if err != nil {
		return err
	}
	defer w.Close()

	count, err := w.Engine.TransactionCount()
	if err != nil {
		return fmt.Errorf("cannot count transactions: %s", err)
	}
	return writeJSON(output, struct {
		Owners       []quorum.Address `json:"owners"`
		Threshold    int              `json:"threshold"`
		Transactions uint64           `json:"transactions"`
	}{
		Owners:       w.Engine.Owners(),
		Threshold:    w.Engine.Threshold(),
		Transactions: count,
	})
}
