package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/app"
	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/config"
	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(openMembership).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// openMembership loads config from the environment and builds the runtime.
func openMembership(ctx context.Context) (service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.DebugObj("subscriber starting", "config", cfg)

	return newService(ctx, cfg, log, logger.Close)
}

// newService builds the membership service. flush runs once the service is
// closed, or right away when it cannot be built.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger, flush func() error) (service, error) {
	m, err := app.NewMembership(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize membership service", "error", err.Error())
		_ = flush()
		return nil, err
	}
	return closeWithLogger{Membership: m, flush: flush}, nil
}

// closeWithLogger flushes the logger after the service is closed.
type closeWithLogger struct {
	*app.Membership
	flush func() error
}

func (c closeWithLogger) Close() error {
	err := c.Membership.Close()
	_ = c.flush()
	return err
}
