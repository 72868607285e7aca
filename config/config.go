package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a file.
const DefaultPath = "./config/config.prod.yml"

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		TrustedProxies []string `yaml:"trustedProxies"`
	} `yaml:"server"`

	Cognito struct {
		AppClientId     string `yaml:"appClientId"`
		AppClientSecret string `yaml:"appClientSecret"`
		UserPoolId      string `yaml:"userPoolId"`
		Region          string `yaml:"region"`
	} `yaml:"cognito"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // minutes
	} `yaml:"jwt"`

	Auth struct {
		TokenCacheTTL time.Duration `yaml:"tokenCacheTTL"`
	} `yaml:"auth"`

	RateLimit struct {
		Submissions int           `yaml:"submissions"`
		Window      time.Duration `yaml:"window"`
	} `yaml:"rateLimit"`

	SMTP struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		SenderEmail     string `yaml:"senderEmail"`
		SenderName      string `yaml:"senderName"`
		ModerationInbox string `yaml:"moderationInbox"`
	} `yaml:"smtp"`

	Screening struct {
		NetworkSeed uint64 `yaml:"networkSeed"`
	} `yaml:"screening"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// ResolvePath picks the config file: explicit path, then CONFIG_PATH, then DefaultPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and environment overrides, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if len(c.Server.TrustedProxies) == 0 {
		c.Server.TrustedProxies = []string{"127.0.0.1"}
	}
	if c.Cognito.Region == "" {
		c.Cognito.Region = "ap-south-1"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.JWT.Expiry == 0 {
		c.JWT.Expiry = 24 * 60
	}
	if c.Auth.TokenCacheTTL == 0 {
		c.Auth.TokenCacheTTL = 5 * time.Minute
	}
	if c.RateLimit.Submissions == 0 {
		c.RateLimit.Submissions = 3
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Hour
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Screening.NetworkSeed == 0 {
		c.Screening.NetworkSeed = 42
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnvOverrides lets secrets come from the environment instead of the file.
func (c *Config) applyEnvOverrides() {
	overrides := map[string]*string{
		"MONGODB_URI":               &c.Database.URI,
		"JWT_SECRET":                &c.JWT.Secret,
		"REDIS_ADDR":                &c.Redis.Addr,
		"REDIS_PASSWORD":            &c.Redis.Password,
		"GEMINI_API_KEY":            &c.Gemini.ApiKey,
		"COGNITO_APP_CLIENT_SECRET": &c.Cognito.AppClientSecret,
		"SMTP_PASSWORD":             &c.SMTP.Password,
	}
	for env, target := range overrides {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URI == "" {
		errs = append(errs, errors.New("database.uri is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.RateLimit.Submissions < 0 {
		errs = append(errs, errors.New("rateLimit.submissions must not be negative"))
	}
	return errors.Join(errs...)
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// SMTPEnabled reports whether moderator notification mail can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.ModerationInbox != ""
}

// JWTExpiry is the admin token lifetime.
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWT.Expiry) * time.Minute
}
