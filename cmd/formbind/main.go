package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-formbind/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		code := cli.GetExitCode(err)
		if code == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, "formbind:", err)
		}
		stop()
		os.Exit(code)
	}
}
