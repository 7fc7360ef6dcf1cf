package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Cron     CronConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port        string `env:"PORT" envDefault:"3000"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"rentdesk-api"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	// postgres or memory
	Store string `env:"STORE" envDefault:"postgres"`
}

type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET" envDefault:"change-me"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// StorageConfig Cloudflare R2 (S3 uyumlu) ayarları
type StorageConfig struct {
	AccountID      string `env:"R2_ACCOUNT_ID"`
	AccessKey      string `env:"R2_ACCESS_KEY"`
	SecretKey      string `env:"R2_SECRET_KEY"`
	Bucket         string `env:"R2_BUCKET_NAME"`
	PublicURL      string `env:"R2_PUBLIC_URL" envDefault:"https://cdn.rentdesk.app"`
	ArchiveImports bool   `env:"ARCHIVE_IMPORTS" envDefault:"false"`
}

func (s StorageConfig) Enabled() bool {
	return s.AccountID != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

type NotifyConfig struct {
	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL" envDefault:"noreply@rentdesk.app"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME" envDefault:"RentDesk"`
	SendGridSandbox   bool   `env:"SENDGRID_SANDBOX" envDefault:"false"`
	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromPhone   string `env:"TWILIO_FROM_PHONE"`
}

type CronConfig struct {
	StatusSyncSchedule      string `env:"STATUS_SYNC_SCHEDULE" envDefault:"0 2 * * *"`
	OccupancyDigestSchedule string `env:"OCCUPANCY_DIGEST_SCHEDULE" envDefault:"0 8 * * 1"`
}

type SeedConfig struct {
	OnStart       bool   `env:"SEED_ON_START" envDefault:"true"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@rentdesk.app"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin12345"`
}

// Load .env dosyasını (varsa) yükler ve ortam değişkenlerini okur
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
