package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ourkive/quorum"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *quorum.Address {
	var a quorum.Address
	if defaultVal != "" {
		var err error
		a, err = quorum.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flAddresses returns a list of addresses, one for each time the flag was
// given.
func flAddresses(fl *flag.FlagSet, name, usage string) *[]quorum.Address {
	var l addressList
	fl.Var(&l, name, usage)
	return (*[]quorum.Address)(&l)
}

type addressList []quorum.Address

func (l addressList) String() string {
	s := make([]string, len(l))
	for i, a := range l {
		s[i] = a.String()
	}
	return strings.Join(s, ",")
}

func (l *addressList) Set(raw string) error {
	a, err := quorum.ParseAddress(raw)
	if err != nil {
		return err
	}
	*l = append(*l, a)
	return nil
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *[]byte {
	var b flagbyte
	if defaultVal != "" {
		var err error
		b, err = hex.DecodeString(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&b, name, usage)
	return (*[]byte)(&b)
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// requireFlags returns an error naming the first of the flags that was not
// set on the command line.
func requireFlags(fl *flag.FlagSet, names ...string) error {
	set := make(map[string]bool)
	fl.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range names {
		if !set[name] {
			return fmt.Errorf("-%s is required", name)
		}
	}
	return nil
}
