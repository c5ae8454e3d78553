// Package config loads server settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config keys. Each is also read from the upper-cased environment variable
// of the same name, e.g. jwt_secret from JWT_SECRET.
const (
	KeyPort           = "port"
	KeyDBDriver       = "db_driver"
	KeyDBDSN          = "db_dsn"
	KeyJWTSecret      = "jwt_secret"
	KeyTokenTTL       = "token_ttl"
	KeyBcryptCost     = "bcrypt_cost"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyCORSOrigin     = "cors_origin"
	KeyRateLimitRPS   = "rate_limit_rps"
	KeyRateLimitBurst = "rate_limit_burst"
	KeyAdminEmail     = "admin_email"
	KeyAdminPassword  = "admin_password"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all server settings.
type Config struct {
	Port     int
	DBDriver string
	DBDSN    string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	LogLevel  string
	LogFormat string

	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int

	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration. configFile may be empty; when set, it must
// exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper
// instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetInt(KeyPort),
		DBDriver:       strings.ToLower(v.GetString(KeyDBDriver)),
		DBDSN:          v.GetString(KeyDBDSN),
		JWTSecret:      v.GetString(KeyJWTSecret),
		TokenTTL:       v.GetDuration(KeyTokenTTL),
		BcryptCost:     v.GetInt(KeyBcryptCost),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		CORSOrigin:     v.GetString(KeyCORSOrigin),
		RateLimitRPS:   v.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst: v.GetInt(KeyRateLimitBurst),
		AdminEmail:     v.GetString(KeyAdminEmail),
		AdminPassword:  v.GetString(KeyAdminPassword),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyDBDriver, DriverSQLite)
	v.SetDefault(KeyDBDSN, "./data/recitals.db")
	v.SetDefault(KeyTokenTTL, 24*time.Hour)
	v.SetDefault(KeyBcryptCost, bcrypt.DefaultCost)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCORSOrigin, "*")
	v.SetDefault(KeyRateLimitRPS, 1.0)
	v.SetDefault(KeyRateLimitBurst, 10)

	// AutomaticEnv only consults the environment for keys viper already
	// knows about.
	for _, key := range []string{KeyJWTSecret, KeyAdminEmail, KeyAdminPassword} {
		v.SetDefault(key, "")
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("jwt_secret is required")
	case c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres:
		return fmt.Errorf("db_driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	case c.DBDSN == "":
		return errors.New("db_dsn is required")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port out of range: %d", c.Port)
	case c.TokenTTL <= 0:
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	case c.RateLimitRPS < 0 || c.RateLimitBurst < 0:
		return errors.New("rate limits must not be negative")
	}
	return nil
}

// RateLimitEnabled reports whether login and registration are throttled.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0 && c.RateLimitBurst > 0
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
