package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/pinlog/internal/demo"
	"github.com/okian/pinlog/pkg/logger"
)

func main() {
	var (
		baseURL  = flag.String("url", demo.DefaultBaseURL, "Base URL of the service")
		workouts = flag.Int("workouts", demo.DefaultWorkouts, "Valid workouts to log")
		invalid  = flag.Int("invalid", demo.DefaultInvalid, "Invalid submissions to try")
		workers  = flag.Int("workers", 1, "Concurrent clients")
		timeout  = flag.Duration("timeout", demo.DefaultTimeout, "HTTP request timeout")
		reset    = flag.Bool("reset", false, "Reset the session first")
		seed     = flag.Uint64("seed", 0, "Generator seed")
		verbose  = flag.Bool("verbose", false, "Log every submission")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		demo.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &demo.Config{
		BaseURL:  *baseURL,
		Workouts: *workouts,
		Invalid:  *invalid,
		Workers:  *workers,
		Timeout:  *timeout,
		Reset:    *reset,
		Seed:     *seed,
		Verbose:  *verbose,
	}
	if _, err := demo.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("demo failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
