package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type MobizonConfig struct {
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
	DryRun   bool   `yaml:"dry_run"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type Config struct {
	SecretKey     string         `yaml:"secret_key"`
	Server        ServerConfig   `yaml:"server"`
	Database      DatabaseConfig `yaml:"database"`
	Redis         RedisConfig    `yaml:"redis"`
	Email         EmailConfig    `yaml:"email"`
	Mobizon       MobizonConfig  `yaml:"mobizon"`
	Session       SessionConfig  `yaml:"session"`
	ClassifierURL string         `yaml:"classifier_url"`
	FrontendURL   string         `yaml:"frontend_url"`
}

// Load builds the configuration once at boot: optional config/config.yaml
// first, environment on top. Missing required values are an error — the
// caller is expected to treat that as fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if f, err := os.Open("config/config.yaml"); err == nil {
		err = yaml.NewDecoder(f).Decode(cfg)
		f.Close()
		if err != nil {
			return nil, errors.New("parse config.yaml: " + err.Error())
		}
	}

	applyEnv(cfg)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = time.Hour
	}

	var missing []string
	if cfg.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if cfg.Database.DSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.Email.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if cfg.Email.SMTPUser == "" {
		missing = append(missing, "SMTP_USER")
	}
	if cfg.Email.SMTPPassword == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if cfg.Email.FromEmail == "" {
		missing = append(missing, "EMAIL_FROM")
	}
	if cfg.ClassifierURL == "" {
		missing = append(missing, "CLASSIFIER_URL")
	}
	if len(missing) > 0 {
		return nil, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.SecretKey, "SECRET_KEY")
	setInt(&cfg.Server.Port, "HTTP_PORT")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUser, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "EMAIL_FROM")
	setString(&cfg.Mobizon.APIKey, "MOBIZON_API_KEY")
	setString(&cfg.Mobizon.SenderID, "MOBIZON_SENDER")
	setBool(&cfg.Mobizon.DryRun, "MOBIZON_DRY_RUN")
	setDuration(&cfg.Session.TTL, "SESSION_TTL")
	setString(&cfg.ClassifierURL, "CLASSIFIER_URL")
	setString(&cfg.FrontendURL, "FRONTEND_URL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
