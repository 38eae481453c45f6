// Command lathe builds rocket-engine and manifold solids and writes them
// as STL.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/chazu/lathe/internal/cli"
)

func main() {
	inv, err := cli.ParseInvocation(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			os.Exit(cli.ExitSuccess)
		}
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			os.Exit(invErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitConfigError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	result, execErr := cli.Execute(ctx, inv, os.Stdout, os.Stderr)
	stop()
	if execErr != nil {
		fmt.Fprintln(os.Stderr, execErr)
	}
	os.Exit(result.ExitCode)
}
