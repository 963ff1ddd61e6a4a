package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"dicey/bot"
	"dicey/config"
	"dicey/events"
	"dicey/infrastructure"
	"dicey/metrics"
	"dicey/service"
)

// integrations are the optional outputs started before the store and the bot
type integrations struct {
	nats    *infrastructure.NATSClient
	metrics *metrics.Server
}

// startIntegrations connects NATS and starts the metrics endpoint when configured
func startIntegrations(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (*integrations, error) {
	in := &integrations{}

	if len(cfg.NATSServers) > 0 {
		client := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		in.nats = client
		if err := client.EnsureStream(infrastructure.EventStreamName, infrastructure.AllSubjects()); err != nil {
			in.close(ctx)
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(client).SubscribeToBus(eventBus)
		log.WithField("connected", client.IsConnected()).Info("Publishing roll events to NATS")
	}

	if cfg.MetricsAddr != "" {
		in.metrics = metrics.NewServer(cfg.MetricsAddr)
		in.metrics.Start()
	}

	return in, nil
}

// close stops the metrics endpoint and drains NATS. In-flight bus handlers may
// still publish, so it runs after the bot has stopped.
func (in *integrations) close(ctx context.Context) {
	if in.metrics != nil {
		if err := in.metrics.Shutdown(ctx); err != nil {
			log.Errorf("Error stopping metrics server: %v", err)
		}
		in.metrics = nil
	}

	if in.nats != nil {
		if !in.nats.IsConnected() {
			log.Warn("NATS connection lost before shutdown, pending events may be dropped")
		}
		if err := in.nats.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
		in.nats = nil
	}
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting dicey bot...")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize event bus
	eventBus := events.NewBus()
	metrics.SubscribeToBus(eventBus)

	outputs, err := startIntegrations(ctx, cfg, eventBus)
	if err != nil {
		return err
	}

	shutdownCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), 10*time.Second)
	}

	log.WithField("backend", cfg.StoreBackend).Info("Opening roll store...")
	store, err := openStore(ctx, cfg, eventBus)
	if err != nil {
		closeCtx, cancel := shutdownCtx()
		defer cancel()
		outputs.close(closeCtx)
		return err
	}
	log.Info("Roll store ready")

	// Initialize services
	rollStore := service.NewUserRollStore(store.factory, metrics.StoreObserver{})
	rollService := service.NewRollService(rollStore, nil)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, rollService)
	if err != nil {
		closeCtx, cancel := shutdownCtx()
		defer cancel()
		outputs.close(closeCtx)
		store.close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	closeCtx, cancel := shutdownCtx()
	defer cancel()
	outputs.close(closeCtx)

	log.Info("Closing roll store...")
	store.close()

	log.Info("Shutdown completed")
	return nil
}
