package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Campaign CampaignConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	PostgresURL string
}

type CampaignConfig struct {
	Location       *time.Location
	WorkerLimit    int
	DefaultSubject string
	DripCron       string
	RepliesCron    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMSConfig struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	FromNumber string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

func LoadAll() (*Config, error) {
	var errs []error

	collect := func(key string) string {
		v, err := requireEnv(key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	collectInt := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: collect("POSTGRES_URL"),
		},
		Campaign: CampaignConfig{
			WorkerLimit:    collectInt("WORKER_LIMIT", 4),
			DefaultSubject: getEnv("DEFAULT_SUBJECT", "Your weekly update"),
			DripCron:       getEnv("DRIP_CRON", "0 9 * * *"),
			RepliesCron:    getEnv("REPLIES_CRON", "*/5 * * * *"),
		},
		SMTP: SMTPConfig{
			Host:     collect("SMTP_HOST"),
			Port:     collectInt("SMTP_PORT", 587),
			Username: collect("SMTP_USER"),
			Password: collect("SMTP_PASSWORD"),
			From:     collect("MAIL_FROM"),
		},
	}

	loc, err := time.LoadLocation(getEnv("TZ_LOCATION", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TZ_LOCATION: %w", err))
	}
	cfg.Campaign.Location = loc

	smsEnabled, err := getEnvBool("SMS_ENABLED", false)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.SMS.Enabled = smsEnabled
	if smsEnabled {
		cfg.SMS.AccountSID = collect("TWILIO_ACCOUNT_SID")
		cfg.SMS.AuthToken = collect("TWILIO_AUTH_TOKEN")
		cfg.SMS.FromNumber = collect("TWILIO_PHONE_NUMBER")
	}

	redisCfg, redisErrs := loadRedisConfig()
	errs = append(errs, redisErrs...)
	cfg.Redis = redisCfg

	errs = append(errs, validate(cfg)...)

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, []error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	var errs []error
	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, err)
	}
	ttl, err := getEnvInt("REDIS_TTL_SECONDS", 86400)
	if err != nil {
		errs = append(errs, err)
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
	}, errs
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Campaign.WorkerLimit <= 0 {
		errs = append(errs, errors.New("WORKER_LIMIT must be > 0"))
	}
	if cfg.SMTP.Port <= 0 {
		errs = append(errs, errors.New("SMTP_PORT must be > 0"))
	}
	if cfg.Redis.Enabled && cfg.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL_SECONDS must be > 0"))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for env %s: %s", key, v)
	}
	return b, nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
