package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/docchat-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIBaseURL        string `mapstructure:"api_base_url" yaml:"api_base_url"`
	HTTPTimeoutSec    int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	PollIntervalMs    int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	PollMaxAttempts   int    `mapstructure:"poll_max_attempts" yaml:"poll_max_attempts"`
	UploadContentType string `mapstructure:"upload_content_type" yaml:"upload_content_type"`
	IdentityFile      string `mapstructure:"identity_file" yaml:"identity_file"`
	Color             bool   `mapstructure:"color" yaml:"color"`

	DevServer DevServer `mapstructure:"devserver" yaml:"devserver"`
}

// DevServer configures the local backend started by `docchat serve`.
type DevServer struct {
	Addr              string   `mapstructure:"addr" yaml:"addr"`
	PublicURL         string   `mapstructure:"public_url" yaml:"public_url"`
	ProcessingDelayMs int      `mapstructure:"processing_delay_ms" yaml:"processing_delay_ms"`
	RedisURL          string   `mapstructure:"redis_url" yaml:"redis_url"`
	CORSOrigins       []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	Minio             Minio    `mapstructure:"minio" yaml:"minio"`
}

// Minio holds object storage settings. An empty Endpoint keeps uploads in memory.
type Minio struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// HTTPTimeout returns the API client timeout.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// PollInterval returns the delay between status queries.
func (c *Global) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// ProcessingDelay returns the simulated processing time of the devserver.
func (c *DevServer) ProcessingDelay() time.Duration {
	return time.Duration(c.ProcessingDelayMs) * time.Millisecond
}

// Dir returns ~/.docchat.
func Dir() (string, error) { return utils.AppDir() }

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api_base_url", "http://127.0.0.1:8088")
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("poll_interval_ms", 3000)
	v.SetDefault("poll_max_attempts", 40)
	v.SetDefault("upload_content_type", "application/pdf")
	v.SetDefault("identity_file", filepath.Join(dir, "identity.yaml"))
	v.SetDefault("color", true)
	// Devserver defaults
	v.SetDefault("devserver.addr", ":8088")
	v.SetDefault("devserver.public_url", "http://127.0.0.1:8088")
	v.SetDefault("devserver.processing_delay_ms", 2000)
	v.SetDefault("devserver.redis_url", "")
	v.SetDefault("devserver.cors_origins", []string{"*"})
	v.SetDefault("devserver.minio.endpoint", "")
	v.SetDefault("devserver.minio.access_key", "")
	v.SetDefault("devserver.minio.secret_key", "")
	v.SetDefault("devserver.minio.bucket", "docchat-uploads")
	v.SetDefault("devserver.minio.use_ssl", false)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.docchat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix("DOCCHAT")
	// devserver.minio.bucket <- DOCCHAT_DEVSERVER_MINIO_BUCKET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, dir)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"api_base_url",
	"http_timeout_sec",
	"poll_interval_ms",
	"poll_max_attempts",
	"upload_content_type",
	"identity_file",
	"color",
	"devserver.addr",
	"devserver.public_url",
	"devserver.processing_delay_ms",
	"devserver.redis_url",
	"devserver.cors_origins",
	"devserver.minio.endpoint",
	"devserver.minio.access_key",
	"devserver.minio.secret_key",
	"devserver.minio.bucket",
	"devserver.minio.use_ssl",
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "api_base_url":
		return c.APIBaseURL, nil
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), nil
	case "poll_interval_ms":
		return strconv.Itoa(c.PollIntervalMs), nil
	case "poll_max_attempts":
		return strconv.Itoa(c.PollMaxAttempts), nil
	case "upload_content_type":
		return c.UploadContentType, nil
	case "identity_file":
		return c.IdentityFile, nil
	case "color":
		return strconv.FormatBool(c.Color), nil
	case "devserver.addr":
		return c.DevServer.Addr, nil
	case "devserver.public_url":
		return c.DevServer.PublicURL, nil
	case "devserver.processing_delay_ms":
		return strconv.Itoa(c.DevServer.ProcessingDelayMs), nil
	case "devserver.redis_url":
		return c.DevServer.RedisURL, nil
	case "devserver.cors_origins":
		return strings.Join(c.DevServer.CORSOrigins, ","), nil
	case "devserver.minio.endpoint":
		return c.DevServer.Minio.Endpoint, nil
	case "devserver.minio.access_key":
		return c.DevServer.Minio.AccessKey, nil
	case "devserver.minio.secret_key":
		return c.DevServer.Minio.SecretKey, nil
	case "devserver.minio.bucket":
		return c.DevServer.Minio.Bucket, nil
	case "devserver.minio.use_ssl":
		return strconv.FormatBool(c.DevServer.Minio.UseSSL), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set parses value and assigns it to key.
func (c *Global) Set(key, value string) error {
	var err error
	switch key {
	case "api_base_url":
		c.APIBaseURL = strings.TrimRight(value, "/")
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = positiveInt(value)
	case "poll_interval_ms":
		c.PollIntervalMs, err = positiveInt(value)
	case "poll_max_attempts":
		c.PollMaxAttempts, err = positiveInt(value)
	case "upload_content_type":
		c.UploadContentType = value
	case "identity_file":
		c.IdentityFile = value
	case "color":
		c.Color, err = strconv.ParseBool(value)
	case "devserver.addr":
		c.DevServer.Addr = value
	case "devserver.public_url":
		c.DevServer.PublicURL = strings.TrimRight(value, "/")
	case "devserver.processing_delay_ms":
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && n < 0 {
			err = fmt.Errorf("must be >= 0")
		}
		c.DevServer.ProcessingDelayMs = n
	case "devserver.redis_url":
		c.DevServer.RedisURL = value
	case "devserver.cors_origins":
		c.DevServer.CORSOrigins = splitList(value)
	case "devserver.minio.endpoint":
		c.DevServer.Minio.Endpoint = value
	case "devserver.minio.access_key":
		c.DevServer.Minio.AccessKey = value
	case "devserver.minio.secret_key":
		c.DevServer.Minio.SecretKey = value
	case "devserver.minio.bucket":
		c.DevServer.Minio.Bucket = value
	case "devserver.minio.use_ssl":
		c.DevServer.Minio.UseSSL, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// IsSecret reports whether key holds a credential that must be masked on display.
func IsSecret(key string) bool {
	return key == "devserver.minio.secret_key" || key == "devserver.minio.access_key"
}

// Mask hides all but the last four characters of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be > 0")
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
