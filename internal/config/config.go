package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"LegalProp"`
		Port int    `envconfig:"PORT" default:"8080"`
		// BaseURL is the public front-end origin used in share and invitation links.
		BaseURL        string   `envconfig:"APP_BASE_URL" default:"http://localhost:5173"`
		AllowedOrigins []string `envconfig:"APP_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"legalprop"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret   string `envconfig:"AUTH_JWT_SECRET" required:"true"`
		JWTAudience string `envconfig:"AUTH_JWT_AUDIENCE" default:"authenticated"`
	}

	Email struct {
		From         string `envconfig:"EMAIL_FROM" default:"LegalProp <noreply@legalprop.com.br>"`
		ResendAPIKey string `envconfig:"RESEND_API_KEY"`
		SMTPHost     string `envconfig:"SMTP_HOST"`
		SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
		SMTPUser     string `envconfig:"SMTP_USER"`
		SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD" default:""`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Proposal struct {
		Validity time.Duration `envconfig:"PROPOSAL_VALIDITY" default:"720h"`
		// EnforceValueCap rejects proposals offering more than the cedible value.
		EnforceValueCap bool `envconfig:"PROPOSAL_ENFORCE_VALUE_CAP" default:"false"`
	}

	Team struct {
		InvitationTTL     time.Duration `envconfig:"TEAM_INVITATION_TTL" default:"168h"`
		InvitesPerWindow  int           `envconfig:"TEAM_INVITES_PER_WINDOW" default:"20"`
		InvitationsWindow time.Duration `envconfig:"TEAM_INVITES_WINDOW" default:"1h"`
	}

	TUI struct {
		// UserID is the profile the terminal client acts as.
		UserID string `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// ShareBaseURL is App.BaseURL without a trailing slash.
func (c *Config) ShareBaseURL() string {
	return strings.TrimRight(c.App.BaseURL, "/")
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
