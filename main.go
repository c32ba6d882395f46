package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sondeolabs/convoca/internal/dispatch"
	"github.com/sondeolabs/convoca/internal/i18n"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/webserver"
	"github.com/sondeolabs/convoca/internal/webserver/infrastructure"
)

var version string = "unknown"

func main() {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatal(fmt.Sprintf("Error parsing configuration from environment variables: %s", err))
	}

	db := infrastructure.Connect(cfg.DbPath)

	var sender dispatch.Sender = &infrastructure.NoEmail{}
	if cfg.SmtpServer != "" && cfg.SmtpUser != "" && cfg.SmtpPassword != "" {
		sender = &infrastructure.SMTP{
			Server:   cfg.SmtpServer,
			Port:     cfg.SmtpPort,
			User:     cfg.SmtpUser,
			Password: cfg.SmtpPassword,
		}
	}

	translator, err := i18n.NewTranslator(notification.TranslationsFS(), "en")
	if err != nil {
		log.Fatal(err)
	}
	composer := notification.NewComposer(translator)

	dispatcher := dispatch.NewDispatcher(
		&model.NotificationRepository{DB: db},
		&model.InvitationRepository{DB: db},
		sender,
		composer,
		dispatch.Config{
			Interval:      cfg.PollInterval,
			BatchSize:     cfg.PollBatchSize,
			Lease:         cfg.LeaseDuration,
			SendTimeout:   cfg.SendTimeout,
			SweepInterval: cfg.SweepInterval,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	webserverConfig := webserver.Config{
		Version:           version,
		JwtSecret:         []byte(cfg.JwtSecret),
		BaseURL:           cfg.BaseURL,
		SessionTimeout:    cfg.SessionTimeout,
		MinPasswordLength: cfg.MinPasswordLength,
	}

	controllers := webserver.SetupControllers(webserverConfig, db, composer)
	app := webserver.New(webserverConfig, controllers)

	fmt.Printf("Convoca version %s started listening on port %s\n\n", version, cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal(err)
	}
}
