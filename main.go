package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/evanofslack/fleet-dns-sync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		slog.Error("Run aborted", "error", err)
		os.Exit(1)
	}
}
