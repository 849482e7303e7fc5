package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text | json
	} `yaml:"log"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Capture struct {
		Timeout            time.Duration `yaml:"timeout"`
		UserAgent          string        `yaml:"userAgent"`
		MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
		ScreenshotEndpoint string        `yaml:"screenshotEndpoint"`
	} `yaml:"capture"`

	Providers struct {
		Audit   Provider `yaml:"audit"`
		Vision  Provider `yaml:"vision"`
		UX      Provider `yaml:"ux"`
		Breaker Breaker  `yaml:"breaker"`
	} `yaml:"providers"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"` // client name -> key
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Provider is the connection block shared by the external providers.
// Model and Provider only apply to the vision model.
type Provider struct {
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseURL"`
	Model    string        `yaml:"model"`
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Breaker struct {
	MaxRequests         uint32        `yaml:"maxRequests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutiveFailures"`
}

// Load baca file config.yaml, ${VAR} diganti dari environment
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML after environment expansion and fills defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default is the configuration used for keys the file leaves out.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.Port, 5000)
	setDur(&c.Server.ReadTimeout, 15*time.Second)
	// an analysis waits on providers with up to 60s timeouts
	setDur(&c.Server.WriteTimeout, 120*time.Second)

	setStr(&c.Log.Level, "info")
	setStr(&c.Log.Format, "text")

	setStr(&c.Database.Driver, "mysql")
	setStr(&c.Database.Host, "localhost")
	if c.Database.Port == 0 {
		c.Database.Port = 3306
		if c.Database.Driver == "postgres" {
			c.Database.Port = 5432
		}
	}
	setStr(&c.Database.SSLMode, "disable")

	setStr(&c.Minio.BucketName, "visiai-screenshots")
	setStr(&c.Minio.Region, "us-east-1")

	setDur(&c.Redis.TTL, 6*time.Hour)

	setDur(&c.Capture.Timeout, 45*time.Second)
	setStr(&c.Capture.UserAgent, "VisiAI/1.0 (+https://visiai.app)")
	if c.Capture.MaxBodyBytes <= 0 {
		c.Capture.MaxBodyBytes = 5 << 20
	}

	setDur(&c.Providers.Audit.Timeout, 60*time.Second)
	setDur(&c.Providers.Vision.Timeout, 30*time.Second)
	setStr(&c.Providers.Vision.Model, "gpt-4o-mini")
	setStr(&c.Providers.Vision.Provider, "OpenAI")
	setDur(&c.Providers.UX.Timeout, 30*time.Second)

	b := &c.Providers.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.ConsecutiveFailures == 0 {
		b.ConsecutiveFailures = 5
	}
	setDur(&b.Timeout, 60*time.Second)

	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 5
	}
	setInt(&c.RateLimit.Burst, 10)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q (allowed: mysql, postgres)", c.Database.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q (allowed: text, json)", c.Log.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// DSN picks the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == "postgres" {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}

func setStr(p *string, v string) {
	if *p == "" {
		*p = v
	}
}

func setInt(p *int, v int) {
	if *p == 0 {
		*p = v
	}
}

func setDur(p *time.Duration, v time.Duration) {
	if *p == 0 {
		*p = v
	}
}
