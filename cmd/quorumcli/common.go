package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/app"
	"github.com/ourkive/quorum/crypto"
	"github.com/ourkive/quorum/x/dispatch"
	"github.com/tendermint/tendermint/libs/log"
)

// flKeyPath registers the -key flag.
func flKeyPath(fl *flag.FlagSet) *string {
	return fl.String("key", env("QUORUMCLI_PRIV_KEY", os.Getenv("HOME")+"/.quorum.priv.key"),
		"Path to the private key file of the owner. You can use QUORUMCLI_PRIV_KEY environment variable to set it.")
}

// flHome registers the -home flag.
func flHome(fl *flag.FlagSet) *string {
	return fl.String("home", env("QUORUMCLI_HOME", os.Getenv("HOME")+"/.quorum"),
		"Wallet home directory. You can use QUORUMCLI_HOME environment variable to set it.")
}

// flLogLevel registers the -log flag.
func flLogLevel(fl *flag.FlagSet) *string {
	return fl.String("log", env("QUORUMCLI_LOG", "error"),
		"Log level written to stderr: debug, info, error or none.")
}

// loadKey reads a private key file written by keygen.
func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	key, err := crypto.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key file %q: %s", path, err)
	}
	return key, nil
}

// loadCaller returns the owner address of the key stored under path.
func loadCaller(path string) (quorum.Address, error) {
	key, err := loadKey(path)
	if err != nil {
		return nil, err
	}
	return key.PublicKey().Address(), nil
}

func newLogger(level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stderr)), opt), nil
}

// openWallet opens the wallet in home. Executed calls are written to output.
func openWallet(home, logLevel string, output io.Writer) (*app.Wallet, error) {
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	w, err := app.OpenWallet(home, dispatch.NewStreamDispatcher(output), logger)
	if err != nil {
		return nil, fmt.Errorf("cannot open wallet: %s", err)
	}
	return w, nil
}

func writeJSON(output io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(raw))
	return err
}

// flagDie terminates the process when a flag value is not valid.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description+"\n", args...)
	os.Exit(2)
}
