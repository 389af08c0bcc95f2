// Command sam-demultiplex splits a multiplexed SAM file into per-sample FASTQ files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maschon0/SAM-demultiplex/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	code := cli.RunContext(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == cli.ExitOK {
		code = cli.ExitCancel
	}

	stop()
	os.Exit(code)
}
