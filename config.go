package main

import "time"

type Config struct {
	DbPath            string        `env:"DBPATH" env-default:"convoca.db"`
	Port              string        `env:"PORT" env-default:"3000"`
	BaseURL           string        `env:"BASE_URL" env-default:"localhost:3000"`
	JwtSecret         string        `env:"JWT_SECRET" env-required:"true"`
	SessionTimeout    time.Duration `env:"SESSION_TIMEOUT" env-default:"24h"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH" env-default:"5"`
	SmtpServer        string        `env:"SMTP_SERVER"`
	SmtpPort          int           `env:"SMTP_PORT" env-default:"587"`
	SmtpUser          string        `env:"SMTP_USER"`
	SmtpPassword      string        `env:"SMTP_PASSWORD"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" env-default:"1m"`
	PollBatchSize     int           `env:"POLL_BATCH_SIZE" env-default:"10"`
	LeaseDuration     time.Duration `env:"LEASE_DURATION" env-default:"5m"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" env-default:"30s"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" env-default:"1h"`
}
