// Command xmcprep prepares and inspects sparse multi-label datasets.
//
//	xmcprep prepare --dir data/eurlex --split train --min-labels 2
//	xmcprep prepare --dir data/eurlex --split test --masks-from train
//	xmcprep inspect --dir data/eurlex --split train
//	xmcprep weights --dir data/eurlex --split train --mode sqrt
//	xmcprep batches --dir data/eurlex --split train --batch-size 256 --sort
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
