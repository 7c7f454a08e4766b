package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		fmt.Fprintln(os.Stderr, "[FATAL]", err)
		os.Exit(exitError)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %v, finishing hosts in progress. Press Ctrl+C again to abort.\n", sig)
		cancel()
		<-sigChan
		fmt.Fprintln(os.Stderr, "Aborted without writing output.")
		os.Exit(exitInterrupted)
	}()

	code := run(ctx, flags, os.Stdout, os.Stderr)
	signal.Stop(sigChan)
	cancel()
	os.Exit(code)
}
