package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ourkive/quorum"
)

// commands is a register of all available commands. The name is matched with
// the first argument given.
//
// A command function reads only from input and writes only to output. Given
// args are the command line arguments without the program and the command
// name, to be parsed with the flag package. Invalid flags terminate the
// process.
//
// Commands that modify the wallet operate on the home directory given with
// -home. Approved calls are written to output as JSON, so that they can be
// piped into a relayer:
//
//   $ quorumcli execute -id 4 | relayer
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"confirm": cmdConfirm,
	"execute": cmdExecute,
	"init":    cmdInit,
	"keyaddr": cmdKeyaddr,
	"keygen":  cmdKeygen,
	"list":    cmdList,
	"owners":  cmdOwners,
	"show":    cmdShow,
	"submit":  cmdSubmit,
	"version": cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for a multi signature wallet.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, quorum.Version())
	return err
}
