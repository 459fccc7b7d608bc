package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ourkive/quorum/crypto"
	"github.com/stellar/go/exp/crypto/derivation"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

When a seed is given the key is derived from it using the SLIP-0010 path
instead of being random.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		seedFl    = flHex(fl, "seed", "", "Optional hex encoded seed to derive the key from.")
		pathFl    = fl.String("path", "m/44'/234'/0'", "Derivation path used together with -seed.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	key := crypto.GenPrivKeyEd25519()
	if len(*seedFl) != 0 {
		var err error
		if key, err = keygen(*seedFl, *pathFl); err != nil {
			return err
		}
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key.Bytes()); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	return nil
}

// keygen derives a private key from the seed using given path.
func keygen(seed []byte, path string) (*crypto.PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key using path %q: %s", path, err)
	}
	key, err := crypto.PrivKeyEd25519FromSeed(k.Key)
	if err != nil {
		return nil, fmt.Errorf("cannot create key: %s", err)
	}
	return key, nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key. This is the address
to use as an owner when initializing a wallet.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		bechFl    = fl.String("bech32", "", "When set, print the address bech32 encoded using given human readable part.")
	)
	fl.Parse(args)

	addr, err := loadCaller(*keyPathFl)
	if err != nil {
		return err
	}
	if *bechFl == "" {
		_, err = fmt.Fprintln(output, addr)
		return err
	}
	enc, err := addr.Bech32(*bechFl)
	if err != nil {
		return fmt.Errorf("cannot encode address: %s", err)
	}
	_, err = fmt.Fprintln(output, enc)
	return err
}
