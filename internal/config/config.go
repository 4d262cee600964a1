package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type config struct {
	Production      bool          `env:"PRODUCTION" envDefault:"false"`
	Port            string        `env:"PORT" envDefault:"80"`
	PostgresUrl     string        `env:"POSTGRES_URL"`
	RedisUrl        string        `env:"REDIS_URL" envDefault:"redis:6379"`
	DisplayTimezone string        `env:"DISPLAY_TIMEZONE" envDefault:"Asia/Singapore"`
	AppBaseURL      string        `env:"APP_BASE_URL" envDefault:""`
	Messenger       string        `env:"MESSENGER" envDefault:"log"`
	MailSender      string        `env:"MAIL_SENDER" envDefault:""`
	GmailCredsPath  string        `env:"GMAIL_CREDENTIALS_PATH" envDefault:"secrets/gmail_service_account.json"`
	NotifyLookahead time.Duration `env:"NOTIFY_LOOKAHEAD" envDefault:"60m"`
	NotifyBuffer    time.Duration `env:"NOTIFY_BUFFER" envDefault:"5m"`
	NotifyAudience  string        `env:"NOTIFY_AUDIENCE" envDefault:"workspace"`
	NotifyWorkers   int           `env:"NOTIFY_CONCURRENCY" envDefault:"4"`
	DispatchLockTTL time.Duration `env:"DISPATCH_LOCK_TTL" envDefault:"5m"`
	CronSecret      string        `env:"CRON_SECRET" envDefault:""`
	CronSchedule    string        `env:"CRON_SCHEDULE" envDefault:"*/5 * * * *"`
	TriggerURL      string        `env:"TRIGGER_URL" envDefault:"http://localhost:80/cron/upcoming-events"`
}

var conf config

func init() {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func DisplayTimezone() string {
	return conf.DisplayTimezone
}

func AppBaseURL() string {
	return conf.AppBaseURL
}

// Messenger is one of "log", "email" or "push".
func Messenger() string {
	return conf.Messenger
}

func MailSender() string {
	return conf.MailSender
}

func GmailCredentialsPath() string {
	return conf.GmailCredsPath
}

func NotifyLookahead() time.Duration {
	return conf.NotifyLookahead
}

func NotifyBuffer() time.Duration {
	return conf.NotifyBuffer
}

// NotifyAudience is "workspace" (every member) or "participants" (organizers and attendees).
func NotifyAudience() string {
	return conf.NotifyAudience
}

func NotifyConcurrency() int {
	return conf.NotifyWorkers
}

func DispatchLockTTL() time.Duration {
	return conf.DispatchLockTTL
}

func CronSecret() string {
	return conf.CronSecret
}

func CronSchedule() string {
	return conf.CronSchedule
}

func TriggerURL() string {
	return conf.TriggerURL
}
