// Package config loads askit settings from a YAML file, a .env file and
// ASKIT_* environment variables, in increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ASKIT"

// Config holds client, watcher and mock server settings.
type Config struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	DepartmentID int           `mapstructure:"department_id"`
	TopK         int           `mapstructure:"top_k" validate:"gte=0"`
	Output       string        `mapstructure:"output" validate:"oneof=json table"`

	WatchDir          string   `mapstructure:"watch_dir"`
	WatchExtensions   []string `mapstructure:"watch_extensions"`
	UploadConcurrency int      `mapstructure:"upload_concurrency" validate:"gte=1,lte=64"`

	MockAddr     string `mapstructure:"mock_addr" validate:"required"`
	MockStore    string `mapstructure:"mock_store" validate:"oneof=memory sqlite"`
	MockDataPath string `mapstructure:"mock_data_path" validate:"required_if=MockStore sqlite"`
}

var keys = []string{
	"base_url", "token", "timeout", "log_level", "department_id", "top_k", "output",
	"watch_dir", "watch_extensions", "upload_concurrency",
	"mock_addr", "mock_store", "mock_data_path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:8000/api/v1")
	v.SetDefault("timeout", "60s")
	v.SetDefault("log_level", "info")
	v.SetDefault("department_id", 1)
	v.SetDefault("top_k", 0)
	v.SetDefault("output", "table")
	v.SetDefault("watch_extensions", []string{})
	v.SetDefault("upload_concurrency", 4)
	v.SetDefault("mock_addr", ":8000")
	v.SetDefault("mock_store", "memory")
	v.SetDefault("mock_data_path", "askit-mock.db")
}

// Load reads configuration. An empty path searches ./askit.yaml and
// $HOME/.askit/askit.yaml; a missing file is not an error unless path was
// given explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "binding env for %s", key)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("askit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.askit")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}
