package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Submit a new transaction for approval. The id of the created transaction is
printed out.

Submitting does not confirm the transaction. Use confirm for that.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl   = flHome(fl)
		keyFl    = flKeyPath(fl)
		logFl    = flLogLevel(fl)
		targetFl = flAddress(fl, "target", "", "Address the call is made to. Required.")
		valueFl  = fl.Uint64("value", 0, "Value transferred with the call.")
		dataFl   = flHex(fl, "data", "", "Optional hex encoded call payload.")
	)
	fl.Parse(args)

	if len(*targetFl) == 0 {
		flagDie("-target is required")
	}
	caller, err := loadCaller(*keyFl)
	if err != nil {
		return err
	}
	w, err := openWallet(*homeFl, *logFl, output)
	if err != nil {
		return err
	}
	defer w.Close()

	id, err := w.Engine.Submit(w.Context(context.Background()), caller, *targetFl, *valueFl, *dataFl)
	if err != nil {
		return fmt.Errorf("cannot submit: %s", err)
	}
	_, err = fmt.Fprintln(output, id)
	return err
}

func cmdConfirm(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Confirm a pending transaction as the owner of the private key.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = flHome(fl)
		keyFl  = flKeyPath(fl)
		logFl  = flLogLevel(fl)
		idFl   = fl.Uint64("id", 0, "Transaction id.")
	)
	fl.Parse(args)
	if err := requireFlags(fl, "id"); err != nil {
		flagDie("%s", err)
	}

	caller, err := loadCaller(*keyFl)
	if err != nil {
		return err
	}
	w, err := openWallet(*homeFl, *logFl, output)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Engine.Confirm(w.Context(context.Background()), caller, *idFl); err != nil {
		return fmt.Errorf("cannot confirm: %s", err)
	}
	return nil
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a transaction that collected enough confirmations.

The approved call is written to the output as JSON. The transaction is marked
executed only if writing the call succeeded.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = flHome(fl)
		keyFl  = flKeyPath(fl)
		logFl  = flLogLevel(fl)
		idFl   = fl.Uint64("id", 0, "Transaction id.")
	)
	fl.Parse(args)
	if err := requireFlags(fl, "id"); err != nil {
		flagDie("%s", err)
	}

	caller, err := loadCaller(*keyFl)
	if err != nil {
		return err
	}
	w, err := openWallet(*homeFl, *logFl, output)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Engine.Execute(w.Context(context.Background()), caller, *idFl); err != nil {
		return fmt.Errorf("cannot execute: %s", err)
	}
	return nil
}
