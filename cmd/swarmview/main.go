package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rvoss/swarmview/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override swarmview config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	pollEvery := flag.Duration("poll", 0, "polling interval (optional, defaults to 1s)")
	noStream := flag.Bool("no-stream", false, "disable the push stream and run on polling alone")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		NoStream:   *noStream,
	}
	if poll := *pollEvery; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "swarmview: %v\n", err)
		return 1
	}
	return 0
}
