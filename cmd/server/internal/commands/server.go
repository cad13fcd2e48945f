package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/TailoredAgents/joslyn-api/internal/logger"
	"github.com/TailoredAgents/joslyn-api/internal/pricing"
	"github.com/TailoredAgents/joslyn-api/internal/queue"
	"github.com/TailoredAgents/joslyn-api/internal/server"
	memorystore "github.com/TailoredAgents/joslyn-api/internal/store/memory"
	postgresstore "github.com/TailoredAgents/joslyn-api/internal/store/postgres"
	"github.com/TailoredAgents/joslyn-api/internal/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/cors"
)

type ServerCmd struct {
	// Server configuration
	Listen      string   `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"JOSLYN_LISTEN"`
	CORSOrigins []string `help:"allowed CORS origins" default:"http://localhost:3000" env:"JOSLYN_CORS_ORIGINS"`

	// Authentication
	AuthSecret string `help:"HS256 secret for verifying API JWTs" env:"JOSLYN_AUTH_SECRET"`
	HeaderAuth bool   `help:"accept X-User-Id/X-Org-Id identity headers (development only)" default:"false" env:"JOSLYN_HEADER_AUTH"`

	// Admin surface
	AdminAPIKey string `help:"static key guarding /admin endpoints; empty disables them" env:"JOSLYN_ADMIN_API_KEY"`

	// Pricing
	RatesFile string `help:"path to a JSON rate table" env:"JOSLYN_RATES_FILE"`
	RatesJSON string `help:"inline JSON rate table; takes precedence over --rates-file" env:"JOSLYN_MODEL_RATES_JSON"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"JOSLYN_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"JOSLYN_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	// Queue configuration
	QueueType string   `help:"queue type (memory or sqs)" default:"memory" env:"JOSLYN_QUEUE_TYPE" enum:"memory,sqs"`
	SQSQueue  SQSFlags `embed:"" prefix:"sqs-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

type SQSFlags struct {
	QueueURL    string `help:"SQS queue URL for background jobs" env:"JOSLYN_SQS_QUEUE_URL"`
	EndpointURL string `help:"SQS endpoint URL override (for LocalStack)" default:"" env:"JOSLYN_SQS_ENDPOINT_URL"`
}

func (s *SQSFlags) Validate() error {
	if s.QueueURL == "" {
		return errors.New("SQS queue URL is required (--sqs-queue-url or JOSLYN_SQS_QUEUE_URL)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "joslyn-api", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	rates, err := c.loadRates()
	if err != nil {
		return err
	}
	// A table without a default entry is a configuration gap: unknown
	// models price at zero. Degrade loudly rather than refuse to start.
	if err := rates.Validate(); err != nil {
		log.Warn().Err(err).Msg("Rate table misconfigured, unknown models will cost zero")
	}

	stores, err := c.createStores(ctx)
	if err != nil {
		return err
	}

	q, err := c.createQueue(ctx)
	if err != nil {
		return err
	}

	if c.AuthSecret == "" && !c.HeaderAuth {
		log.Warn().Msg("No auth secret configured and header auth disabled, all requests will be anonymous")
	}
	if c.HeaderAuth {
		log.Warn().Msg("Header auth is enabled. This should only be used in development!")
	}
	verifier := auth.NewVerifier([]byte(c.AuthSecret), c.HeaderAuth)

	srv := server.NewServer(stores, verifier, q, server.Config{
		AdminAPIKey: c.AdminAPIKey,
		Rates:       rates,
	})

	middleware := cors.New(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Org-Id", "X-Admin-Api-Key"},
		AllowCredentials: true,
	})
	handler := middleware.Handler(srv.Handler(log))

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, handler).ListenAndServe()
}

// loadRates loads the rate table from the inline JSON or configured file,
// falling back to the built-in rates.
func (c *ServerCmd) loadRates() (pricing.RateTable, error) {
	switch {
	case c.RatesJSON != "":
		rates, err := pricing.Load([]byte(c.RatesJSON))
		if err != nil {
			return nil, fmt.Errorf("failed to parse inline rate table: %w", err)
		}
		return rates, nil

	case c.RatesFile != "":
		rates, err := pricing.LoadFile(c.RatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rate table: %w", err)
		}
		return rates, nil

	default:
		return pricing.DefaultRateTable(), nil
	}
}

// createStores builds the store bundle for the configured store type.
func (c *ServerCmd) createStores(ctx context.Context) (server.Stores, error) {
	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.Validate(); err != nil {
			return server.Stores{}, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		})
		if err != nil {
			return server.Stores{}, fmt.Errorf("failed to create store pool: %w", err)
		}

		return server.Stores{
			Organizations: postgresstore.NewOrganizationStore(pool),
			Memberships:   postgresstore.NewMembershipStore(pool),
			Events:        postgresstore.NewEventStore(pool),
			Usage:         postgresstore.NewUsageStore(pool),
			Invites:       postgresstore.NewInviteStore(pool),
		}, nil

	default:
		return server.Stores{
			Organizations: memorystore.NewOrganizationStore(),
			Memberships:   memorystore.NewMembershipStore(),
			Events:        memorystore.NewEventStore(),
			Usage:         memorystore.NewUsageStore(),
			Invites:       memorystore.NewInviteStore(),
		}, nil
	}
}

// createQueue builds the background work queue for the configured type.
func (c *ServerCmd) createQueue(ctx context.Context) (queue.Queue, error) {
	switch c.QueueType {
	case "sqs":
		if err := c.SQSQueue.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate sqs flags: %w", err)
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		clientOpts := []func(*sqs.Options){}
		if c.SQSQueue.EndpointURL != "" {
			clientOpts = append(clientOpts, func(o *sqs.Options) {
				o.BaseEndpoint = aws.String(c.SQSQueue.EndpointURL)
			})
		}

		return queue.NewSQSQueue(sqs.NewFromConfig(cfg, clientOpts...), c.SQSQueue.QueueURL), nil

	default:
		return queue.NewMemoryQueue(), nil
	}
}
