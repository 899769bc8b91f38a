package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/truck-repair-platform/internal/config"
	"github.com/wolfman30/truck-repair-platform/internal/content"
	"github.com/wolfman30/truck-repair-platform/internal/conversation"
	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/internal/notify"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// ErrPostgresRequired is returned when LEAD_STORE=postgres but no database is connected.
var ErrPostgresRequired = errors.New("bootstrap: postgres lead store requires DATABASE_URL")

// BuildLeadRepository picks the lead ledger named by cfg.LeadStore. The returned
// close func is never nil.
func BuildLeadRepository(ctx context.Context, cfg *appconfig.Config, pg *Postgres, logger *logging.Logger) (leads.Repository, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	switch cfg.LeadStore {
	case "postgres":
		if pg == nil {
			return nil, noop, ErrPostgresRequired
		}
		logger.Info("lead store: postgres")
		return leads.NewPostgresRepository(pg.Pool), noop, nil
	case "sqlite":
		repo, err := leads.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: open sqlite lead store: %w", err)
		}
		logger.Info("lead store: sqlite", "path", cfg.SQLitePath)
		return repo, repo.Close, nil
	case "", "memory":
		logger.Info("lead store: memory")
		return leads.NewInMemoryRepository(), noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown lead store %q", cfg.LeadStore)
	}
}

// BuildSessionStore keeps chat sessions in Redis when a client is available.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config) conversation.SessionStore {
	if redisClient != nil {
		return conversation.NewRedisStore(redisClient, cfg.SessionTTL)
	}
	return conversation.NewMemoryStore(cfg.SessionTTL)
}

// BuildSettingsStore keeps site settings in Redis when a client is available.
func BuildSettingsStore(redisClient *redis.Client, cfg *appconfig.Config) content.SettingsStore {
	defaults := content.DefaultSettings(cfg.ShopName, cfg.ShopPhone)
	if redisClient != nil {
		return content.NewRedisSettingsStore(redisClient, defaults)
	}
	return content.NewMemorySettingsStore(defaults)
}

// BuildContentRepository uses Postgres when connected, otherwise memory.
func BuildContentRepository(pg *Postgres) content.Repository {
	if pg != nil && pg.DB != nil {
		return content.NewPostgresRepository(pg.DB)
	}
	return content.NewMemoryRepository()
}

// BuildEmailSender wires the configured email provider. awsCfg is only used for SES.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	sendGrid := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)

	var ses *notify.SESSender
	if cfg.EmailProvider == "ses" && awsCfg != nil {
		ses = notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	}
	return notify.NewEmailSender(cfg.EmailProvider, sendGrid, ses, logger)
}

// BuildMediaStore returns an S3 media store, or nil when no bucket is configured.
func BuildMediaStore(cfg *appconfig.Config, awsCfg *aws.Config) content.MediaStore {
	if cfg.MediaBucket == "" || awsCfg == nil {
		return nil
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		// LocalStack and MinIO only serve path-style URLs.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return content.NewS3MediaStore(client, cfg.MediaBucket, cfg.MediaPublicBaseURL)
}
