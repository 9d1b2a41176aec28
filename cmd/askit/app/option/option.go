package option

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/ZhangYouJie-Major/AskIt/internal/config"
)

// Option holds global command-line flags. Flags that were set override the
// loaded configuration.
type Option struct {
	ConfigPath   string
	BaseURL      string
	Token        string
	Timeout      time.Duration
	LogLevel     string
	Output       string
	DepartmentID int

	flags *pflag.FlagSet
}

func (opt *Option) BindFlags(fs *pflag.FlagSet) {
	opt.flags = fs
	fs.StringVarP(&opt.ConfigPath, "config", "c", "", "config file path (default ./askit.yaml or ~/.askit/askit.yaml)")
	fs.StringVar(&opt.BaseURL, "base-url", "", "AskIt API base URL, including the /api/v1 prefix")
	fs.StringVar(&opt.Token, "token", "", "bearer token")
	fs.DurationVar(&opt.Timeout, "timeout", 0, "request timeout")
	fs.StringVar(&opt.LogLevel, "log-level", "", "one of debug, info, warn, error")
	fs.StringVarP(&opt.Output, "output", "o", "", "output format: table or json")
	fs.IntVarP(&opt.DepartmentID, "department", "d", 0, "department id")
}

// GenerateConfig loads the configuration and applies explicitly set flags.
func (opt *Option) GenerateConfig() (*config.Config, error) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opt.changed("base-url") {
		cfg.BaseURL = opt.BaseURL
	}
	if opt.changed("token") {
		cfg.Token = opt.Token
	}
	if opt.changed("timeout") {
		cfg.Timeout = opt.Timeout
	}
	if opt.changed("log-level") {
		cfg.LogLevel = opt.LogLevel
	}
	if opt.changed("output") {
		cfg.Output = opt.Output
	}
	if opt.changed("department") {
		cfg.DepartmentID = opt.DepartmentID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (opt *Option) changed(name string) bool {
	return opt.flags != nil && opt.flags.Changed(name)
}
