package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenv loads .env files for the given environment. Variables already
// present in the process environment win over file values.
func LoadDotenv(env string) {
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		env = v
	}
	env = normalizeEnv(env)
	for _, file := range []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

type lookupFunc func(key string) (string, bool)

func lookupTrimmed(lookup lookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// applyEnv overlays environment variables on cfg. Malformed numeric or
// boolean values are reported rather than silently ignored.
func applyEnv(cfg *AppConfig, lookup lookupFunc) error {
	var errs []string
	setInt := func(key string, dst *int) {
		v, ok := lookupTrimmed(lookup, key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not an integer", key, v))
			return
		}
		*dst = n
	}
	setBool := func(key string, dst *bool) {
		v, ok := lookupTrimmed(lookup, key)
		if !ok {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
			return
		}
		*dst = b
	}
	setString := func(key string, dst *string) {
		if v, ok := lookupTrimmed(lookup, key); ok {
			*dst = v
		}
	}

	setInt("PORT", &cfg.Port)
	setString("APP_ENV", &cfg.Env)
	setString("FRONTEND_URL", &cfg.FrontendURL)

	if v, ok := lookupTrimmed(lookup, "CORS_ORIGINS"); ok {
		cfg.AllowedOrigins = normalizeOrigins(strings.Split(v, ","))
	} else {
		primary, hasPrimary := lookupTrimmed(lookup, "CORS_ORIGIN")
		alt, hasAlt := lookupTrimmed(lookup, "CORS_ORIGIN_ALT")
		if hasPrimary || hasAlt {
			cfg.AllowedOrigins = normalizeOrigins([]string{primary, alt})
		}
	}

	if v, ok := lookupTrimmed(lookup, "DATABASE_URL"); ok {
		cfg.Database.URL = v
		cfg.Database.DSN = ""
		if driver := driverFromURL(v); driver != "" {
			cfg.Database.Driver = driver
		}
	}
	setString("DATABASE_DRIVER", &cfg.Database.Driver)
	setBool("DATABASE_AUTO_MIGRATE", &cfg.Database.AutoMigrate)

	setString("REDIS_URL", &cfg.Redis.URL)

	setString("JWT_SECRET_KEY", &cfg.Auth.SecretKey)
	setString("JWT_ALGORITHM", &cfg.Auth.Algorithm)
	setInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", &cfg.Auth.AccessTokenExpireMinutes)

	setBool("ENABLE_EMAIL", &cfg.Mail.Enable)
	setString("SMTP_HOST", &cfg.Mail.Host)
	setInt("SMTP_PORT", &cfg.Mail.Port)
	setString("SMTP_USERNAME", &cfg.Mail.Username)
	if v, ok := lookup("SMTP_PASSWORD"); ok && v != "" {
		cfg.Mail.Password = v
	}
	setString("SMTP_FROM_EMAIL", &cfg.Mail.FromEmail)
	setString("SMTP_FROM_NAME", &cfg.Mail.FromName)

	setString("STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("UPLOAD_DIR", &cfg.Storage.UploadDir)
	setInt("MAX_UPLOAD_MB", &cfg.Storage.MaxUploadMB)
	setString("S3_BUCKET", &cfg.Storage.S3.Bucket)
	setString("S3_REGION", &cfg.Storage.S3.Region)
	setString("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	setString("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	setString("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	setString("S3_PUBLIC_URL", &cfg.Storage.S3.PublicURL)

	setString("LOG_DIR", &cfg.Paths.Logs)

	if len(errs) > 0 {
		return fmt.Errorf("environment: %s", strings.Join(errs, "; "))
	}
	return nil
}
