package config

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	FrontendURL    string                `yaml:"frontend_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Auth           AuthRuntimeConfig     `yaml:"auth"`
	Mail           MailRuntimeConfig     `yaml:"mail"`
	Storage        StorageRuntimeConfig  `yaml:"storage"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
}

type DatabaseRuntimeConfig struct {
	Driver       string            `yaml:"driver"` // "mysql" | "postgres"
	DSN          string            `yaml:"dsn"`
	URL          string            `yaml:"url"`
	Host         string            `yaml:"host"`
	Port         int               `yaml:"port"`
	User         string            `yaml:"user"`
	Password     string            `yaml:"password"`
	Name         string            `yaml:"name"`
	Charset      string            `yaml:"charset"`
	Loc          string            `yaml:"loc"`
	Params       map[string]string `yaml:"params"`
	MaxOpenConns int               `yaml:"max_open_conns"`
	MaxIdleConns int               `yaml:"max_idle_conns"`
	AutoMigrate  bool              `yaml:"auto_migrate"`
	LogLevel     string            `yaml:"log_level"`
}

type RedisRuntimeConfig struct {
	URL             string `yaml:"url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type AuthRuntimeConfig struct {
	SecretKey                string `yaml:"secret_key"`
	Algorithm                string `yaml:"algorithm"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
}

type MailRuntimeConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	SupportTo string `yaml:"support_contact"`
}

type StorageRuntimeConfig struct {
	Driver      string          `yaml:"driver"` // "local" | "s3"
	UploadDir   string          `yaml:"upload_dir"`
	MaxUploadMB int             `yaml:"max_upload_mb"`
	S3          S3RuntimeConfig `yaml:"s3"`
}

type S3RuntimeConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
	Prefix          string `yaml:"prefix"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	CORSOrigins    []string           `yaml:"cors_origins"`
	FrontendURL    string             `yaml:"frontend_url"`
	DatabaseURL    string             `yaml:"database_url"`
	Database       rawDatabaseConfig  `yaml:"database"`
	RedisURL       string             `yaml:"redis_url"`
	Redis          rawRedisConfig     `yaml:"redis"`
	Auth           rawAuthConfig      `yaml:"auth"`
	Mail           rawMailConfig      `yaml:"mail"`
	Storage        rawStorageConfig   `yaml:"storage"`
	Paths          RuntimePathsConfig `yaml:"paths"`
}

type rawDatabaseConfig struct {
	Driver       string            `yaml:"driver"`
	DSN          string            `yaml:"dsn"`
	URL          string            `yaml:"url"`
	Host         string            `yaml:"host"`
	Port         int               `yaml:"port"`
	User         string            `yaml:"user"`
	Password     string            `yaml:"password"`
	Name         string            `yaml:"name"`
	Charset      string            `yaml:"charset"`
	Loc          string            `yaml:"loc"`
	Params       map[string]string `yaml:"params"`
	MaxOpenConns int               `yaml:"max_open_conns"`
	MaxIdleConns int               `yaml:"max_idle_conns"`
	AutoMigrate  *bool             `yaml:"auto_migrate"`
	LogLevel     string            `yaml:"log_level"`
}

type rawRedisConfig struct {
	URL             string `yaml:"url"`
	CacheTTLSeconds *int   `yaml:"cache_ttl_seconds"`
}

type rawAuthConfig struct {
	SecretKey                string `yaml:"secret_key"`
	Algorithm                string `yaml:"algorithm"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
}

type rawMailConfig struct {
	Enable    *bool  `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	SupportTo string `yaml:"support_contact"`
}

type rawStorageConfig struct {
	Driver      string          `yaml:"driver"`
	UploadDir   string          `yaml:"upload_dir"`
	MaxUploadMB int             `yaml:"max_upload_mb"`
	S3          S3RuntimeConfig `yaml:"s3"`
}
