package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ecobuilt/api/auth"
	"github.com/ecobuilt/api/catalog"
	"github.com/ecobuilt/api/config"
	"github.com/ecobuilt/api/logging"
	"github.com/ecobuilt/api/mailer"
	"github.com/ecobuilt/api/migrations"
	"github.com/ecobuilt/api/profile"
	"github.com/ecobuilt/api/server"
	"github.com/ecobuilt/api/upload"
)

func main() {
	if err := run(); err != nil {
		logging.New(os.Stderr, "").Error("server exited: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if cfg.LogPretty {
		logger = logging.NewPretty(cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := migrations.Run(ctx, sqldb, "postgres"); err != nil {
		return err
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	tokens, err := auth.NewTokenService([]byte(cfg.JWT.Secret), cfg.JWT.Expiry, cfg.JWT.Issuer, logger)
	if err != nil {
		return err
	}

	var sender auth.OtpSender
	if cfg.SMTP.Host != "" {
		mail, err := mailer.New(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return err
		}
		sender = mail
	} else {
		logger.Warn("SMTP is not configured, OTP codes will not be delivered")
	}

	var files *upload.Store
	if cfg.S3.Bucket != "" {
		files, err = upload.New(ctx, upload.Config{
			Region:        cfg.S3.Region,
			Bucket:        cfg.S3.Bucket,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			BaseEndpoint:  cfg.S3.BaseEndpoint,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Warn("S3 is not configured, file uploads are disabled")
	}

	deps := server.Deps{
		Logger:     logger,
		Repo:       repo,
		Tokens:     tokens,
		Otps:       auth.NewOtpIssuer(repo, sender, logger),
		Profiles:   profile.NewProfilesRepository(db),
		Categories: catalog.NewCategoriesRepository(db),
		Vendors:    catalog.NewVendorsRepository(db),
		Products:   catalog.NewProductsRepository(db),
	}
	if files != nil {
		deps.Files = files
	}

	app := server.New(deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.HTTP.Addr)
		errCh <- app.Listen(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
