package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/reten/internal/smoke"
	"github.com/okian/reten/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumProfiles = 20
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 5 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9090", "Base URL of the service")
		username    = flag.String("username", "admin", "Username for the prediction service session")
		password    = flag.String("password", "admin", "Password for the prediction service session")
		numProfiles = flag.Int("profiles", defaultNumProfiles, "Number of synthetic profiles to submit")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:     *baseURL,
		Username:    *username,
		Password:    *password,
		NumProfiles: *numProfiles,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}

	if err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
