package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/artifact/filestore"
	"github.com/MrJamesThe3rd/accountill/internal/artifact/redisstore"
	"github.com/MrJamesThe3rd/accountill/internal/artifact/s3store"
	pgStore "github.com/MrJamesThe3rd/accountill/internal/artifact/store"
	"github.com/MrJamesThe3rd/accountill/internal/config"
	"github.com/MrJamesThe3rd/accountill/internal/database"
	"github.com/MrJamesThe3rd/accountill/internal/notify"
	"github.com/MrJamesThe3rd/accountill/internal/notify/resend"
	"github.com/MrJamesThe3rd/accountill/internal/notify/smtp"
)

func openStore(ctx context.Context, cfg *config.Config) (artifact.Store, func(), error) {
	noop := func() {}

	switch cfg.Artifact.Backend {
	case config.BackendFile:
		s, err := filestore.New(cfg.Artifact.Dir, cfg.Artifact.TTL)
		if err != nil {
			return nil, noop, err
		}

		return s, noop, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, noop, err
		}

		s := pgStore.New(db, cfg.Artifact.TTL)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}

		return s, func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client, err := redisstore.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, noop, err
		}

		return redisstore.New(client, cfg.Redis.Prefix, cfg.Artifact.TTL), func() { _ = client.Close() }, nil

	case config.BackendS3:
		s, err := s3store.New(s3store.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, noop, err
		}

		return s, noop, nil

	default:
		return artifact.NewMemory(
			artifact.WithTTL(cfg.Artifact.TTL),
			artifact.WithMaxEntries(cfg.Artifact.MaxEntries),
		), noop, nil
	}
}

func newTransport(cfg *config.Config) (notify.Transport, error) {
	switch cfg.MailTransport() {
	case config.TransportSMTP:
		return smtp.New(smtp.Config{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.User,
			Password:           cfg.SMTP.Pass,
			InsecureSkipVerify: cfg.SMTP.Insecure,
		})
	case config.TransportResend:
		return resend.New(cfg.Resend.APIKey), nil
	case config.TransportLog:
		slog.Warn("no mail provider configured, emails will only be logged")
		return notify.NewLogTransport(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport())
	}
}
