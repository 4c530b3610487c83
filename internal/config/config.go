package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
	ModeTest        = "test"

	defaultSecretKey = "dev-secret-key-change-in-production"
	minSecretLength  = 32

	// DefaultAdminPassword is the seeded admin password when none is configured
	DefaultAdminPassword = "admin123"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Session struct {
		SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
		Name      string `yaml:"name" env:"SESSION_NAME"`
		// MaxAge is the cookie lifetime in seconds
		MaxAge int `yaml:"max_age" env:"SESSION_MAX_AGE"`
	} `yaml:"session"`

	Database struct {
		URL             string        `yaml:"url" env:"DATABASE_URL"`
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS"`
		MinConns        int           `yaml:"min_conns" env:"DB_MIN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Uploads struct {
		Folder            string   `yaml:"folder" env:"UPLOAD_FOLDER"`
		MaxContentLength  int64    `yaml:"max_content_length" env:"MAX_CONTENT_LENGTH"`
		AllowedExtensions []string `yaml:"allowed_extensions" env:"ALLOWED_EXTENSIONS"`
		// MaxDimension bounds the longest side of stored photos; 0 keeps originals
		MaxDimension int `yaml:"max_dimension" env:"UPLOAD_MAX_DIMENSION"`
	} `yaml:"uploads"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Admin struct {
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		RUT      string `yaml:"rut" env:"ADMIN_RUT"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from defaults, an optional YAML file, an
// optional .env file and finally environment variables.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// optional
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = ModeDevelopment
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Session.SecretKey = defaultSecretKey
	config.Session.Name = "academia_session"
	config.Session.MaxAge = 7 * 24 * 60 * 60

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "academia"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 10
	config.Database.MinConns = 1
	config.Database.ConnMaxLifetime = time.Hour

	config.Uploads.Folder = "static/uploads"
	config.Uploads.MaxContentLength = 16 * 1024 * 1024
	config.Uploads.AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}
	config.Uploads.MaxDimension = 0

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Admin.Username = "admin"
	config.Admin.Password = DefaultAdminPassword
	config.Admin.Email = "admin@lempar.com"
	config.Admin.RUT = "00.000.000-0"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

func normalize(config *Config) {
	config.Server.Mode = strings.ToLower(strings.TrimSpace(config.Server.Mode))

	exts := make([]string, 0, len(config.Uploads.AllowedExtensions))
	for _, ext := range config.Uploads.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	config.Uploads.AllowedExtensions = exts
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Server.Mode {
	case ModeDevelopment, ModeProduction, ModeTest:
	default:
		return fmt.Errorf("unknown server mode %q", config.Server.Mode)
	}

	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.Session.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}

	if config.IsProduction() {
		if config.Session.SecretKey == defaultSecretKey || len(config.Session.SecretKey) < minSecretLength {
			return fmt.Errorf("secret key must be set and at least %d bytes in production", minSecretLength)
		}
	}

	if config.Session.MaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}

	if config.Uploads.Folder == "" {
		return fmt.Errorf("upload folder is required")
	}

	if config.Uploads.MaxContentLength <= 0 {
		return fmt.Errorf("max content length must be positive")
	}

	if len(config.Uploads.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}

	if config.Uploads.MaxDimension < 0 {
		return fmt.Errorf("upload max dimension cannot be negative")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == ModeProduction
}

// GetPostgresConnectionString returns postgres connection string.
// DATABASE_URL wins over the discrete fields.
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
