package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nape-ntsoane/trax/internal/apiclient"
	"github.com/nape-ntsoane/trax/internal/cli"
	"github.com/nape-ntsoane/trax/internal/config"
	"github.com/nape-ntsoane/trax/internal/notify"
	"github.com/nape-ntsoane/trax/internal/session"
	"github.com/nape-ntsoane/trax/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	apiURL := flag.String("api", "", "override the API base URL (e.g. https://trax.example.com/api/v1)")
	internal := flag.Bool("internal", false, "use TRAX_INTERNAL_API_URL when it is set")
	verbose := flag.Bool("v", false, "log failed API calls")
	flag.Parse()

	baseURL := cfg.BaseURL(*internal)
	if *apiURL != "" {
		baseURL = *apiURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Options{
		Service:     "trax",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	store, err := session.OpenBolt(cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open session store %s: %v\n", cfg.SessionDB, err)
		return cli.ExitFailure
	}
	defer store.Close()

	sess, err := session.New(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session: %v\n", err)
		return cli.ExitFailure
	}

	opts := []apiclient.Option{apiclient.WithTimeout(cfg.HTTPTimeout)}
	if *verbose {
		opts = append(opts, apiclient.WithLogger(log.New(os.Stderr, "trax: ", log.LstdFlags)))
	}
	client := apiclient.New(baseURL, sess, notify.New(cfg.Notify), opts...)

	return cli.New(client, os.Stdout, os.Stderr).Run(ctx, flag.Args())
}
