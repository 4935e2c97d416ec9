package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 8000
	defaultEnv         = "development"
	defaultFrontendURL = "http://localhost:8080"
	defaultDBDriver    = "mysql"
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBPassword  = "password"
	defaultDBName      = "albedo_support"
	defaultDBCharset   = "utf8mb4"
	defaultDBLoc       = "Local"
	defaultJWTAlg      = "HS256"
	defaultJWTExpire   = 60 * 24
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 587
	defaultFromName    = "Albedo Support"
	defaultSupportTo   = "support@albedoedu.com"
	defaultStorage     = "local"
	defaultUploadDir   = "uploads"
	defaultMaxUploadMB = 100
	defaultCacheTTL    = 30
)

var defaultOrigins = []string{"http://localhost:8080", "http://127.0.0.1:8080"}

// Load reads the YAML config at configPath, then applies .env files and
// environment variables on top. A missing file at the default path is not an
// error so that env-only deployments keep working.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	LoadDotenv(cfg.Env)
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations after all sources are merged.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q, expected mysql or postgres", c.Database.Driver)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("invalid auth.algorithm %q, expected HS256, HS384 or HS512", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpireMinutes < 1 {
		return fmt.Errorf("invalid auth.access_token_expire_minutes %d, expected >= 1", c.Auth.AccessTokenExpireMinutes)
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("invalid mail.port %d, expected 1-65535", c.Mail.Port)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q, expected local or s3", c.Storage.Driver)
	}
	if c.Storage.MaxUploadMB < 1 {
		return fmt.Errorf("invalid storage.max_upload_mb %d, expected >= 1", c.Storage.MaxUploadMB)
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// MailConfigured reports whether outbound email should actually be sent.
func (c *AppConfig) MailConfigured() bool {
	return c.Mail.Enable && c.Mail.Username != ""
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:           defaultPort,
		Env:            defaultEnv,
		AllowedOrigins: append([]string(nil), defaultOrigins...),
		FrontendURL:    defaultFrontendURL,
		Database: DatabaseRuntimeConfig{
			Driver:       defaultDBDriver,
			Host:         defaultDBHost,
			Port:         defaultDBPort,
			User:         defaultDBUser,
			Password:     defaultDBPassword,
			Name:         defaultDBName,
			Charset:      defaultDBCharset,
			Loc:          defaultDBLoc,
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			AutoMigrate:  true,
			LogLevel:     "warn",
		},
		Redis: RedisRuntimeConfig{CacheTTLSeconds: defaultCacheTTL},
		Auth: AuthRuntimeConfig{
			Algorithm:                defaultJWTAlg,
			AccessTokenExpireMinutes: defaultJWTExpire,
		},
		Mail: MailRuntimeConfig{
			Host:      defaultSMTPHost,
			Port:      defaultSMTPPort,
			FromName:  defaultFromName,
			SupportTo: defaultSupportTo,
		},
		Storage: StorageRuntimeConfig{
			Driver:      defaultStorage,
			UploadDir:   defaultUploadDir,
			MaxUploadMB: defaultMaxUploadMB,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSOrigins)
	}
	if v := strings.TrimSpace(raw.FrontendURL); v != "" {
		cfg.FrontendURL = v
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" {
		cfg.Database.URL = v
	}

	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if raw.Redis.CacheTTLSeconds != nil {
		cfg.Redis.CacheTTLSeconds = *raw.Redis.CacheTTLSeconds
	}

	if v := strings.TrimSpace(raw.Auth.SecretKey); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := strings.TrimSpace(raw.Auth.Algorithm); v != "" {
		cfg.Auth.Algorithm = v
	}
	if raw.Auth.AccessTokenExpireMinutes != 0 {
		cfg.Auth.AccessTokenExpireMinutes = raw.Auth.AccessTokenExpireMinutes
	}

	if raw.Mail.Enable != nil {
		cfg.Mail.Enable = *raw.Mail.Enable
	}
	if v := strings.TrimSpace(raw.Mail.Host); v != "" {
		cfg.Mail.Host = v
	}
	if raw.Mail.Port != 0 {
		cfg.Mail.Port = raw.Mail.Port
	}
	if v := strings.TrimSpace(raw.Mail.Username); v != "" {
		cfg.Mail.Username = v
	}
	if v := raw.Mail.Password; v != "" {
		cfg.Mail.Password = v
	}
	if v := strings.TrimSpace(raw.Mail.FromEmail); v != "" {
		cfg.Mail.FromEmail = v
	}
	if v := strings.TrimSpace(raw.Mail.FromName); v != "" {
		cfg.Mail.FromName = v
	}
	if v := strings.TrimSpace(raw.Mail.SupportTo); v != "" {
		cfg.Mail.SupportTo = v
	}

	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.UploadDir); v != "" {
		cfg.Storage.UploadDir = v
	}
	if raw.Storage.MaxUploadMB != 0 {
		cfg.Storage.MaxUploadMB = raw.Storage.MaxUploadMB
	}
	cfg.Storage.S3 = mergeS3Config(cfg.Storage.S3, raw.Storage.S3)

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
}

func applyRawDatabaseConfig(base DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	if v := strings.TrimSpace(raw.Driver); v != "" {
		base.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		base.DSN = v
	}
	if v := strings.TrimSpace(raw.URL); v != "" {
		base.URL = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		base.Host = v
	}
	if raw.Port != 0 {
		base.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		base.User = v
	}
	if raw.Password != "" {
		base.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		base.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		base.Charset = v
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		base.Loc = v
	}
	if raw.Params != nil {
		base.Params = copyStringMap(raw.Params)
	}
	if raw.MaxOpenConns > 0 {
		base.MaxOpenConns = raw.MaxOpenConns
	}
	if raw.MaxIdleConns > 0 {
		base.MaxIdleConns = raw.MaxIdleConns
	}
	if raw.AutoMigrate != nil {
		base.AutoMigrate = *raw.AutoMigrate
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		base.LogLevel = v
	}
	return base
}

func mergeS3Config(base, raw S3RuntimeConfig) S3RuntimeConfig {
	if v := strings.TrimSpace(raw.Bucket); v != "" {
		base.Bucket = v
	}
	if v := strings.TrimSpace(raw.Region); v != "" {
		base.Region = v
	}
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		base.Endpoint = v
	}
	if v := strings.TrimSpace(raw.AccessKeyID); v != "" {
		base.AccessKeyID = v
	}
	if v := strings.TrimSpace(raw.SecretAccessKey); v != "" {
		base.SecretAccessKey = v
	}
	if v := strings.TrimSpace(raw.PublicURL); v != "" {
		base.PublicURL = v
	}
	if v := strings.TrimSpace(raw.Prefix); v != "" {
		base.Prefix = v
	}
	if raw.ForcePathStyle {
		base.ForcePathStyle = true
	}
	return base
}
