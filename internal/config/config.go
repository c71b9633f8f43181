package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Readwise
		Remarkable
		Sync
		Daemon
		Logging
	}

	Readwise struct {
		Token string
	}
	Remarkable struct {
		RmapiPath string
		Folder    string
	}
	Sync struct {
		Locations  []string
		Tag        string
		LedgerPath string
		TempDir    string
	}
	Daemon struct {
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Logging struct {
		Level string
	}
)

// Load reads configuration from an optional YAML file plus REMSYNC_*
// environment overrides. An empty path makes the file optional and
// searched in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("readwise.token", "")
	v.SetDefault("remarkable.rmapi_path", "rmapi")
	v.SetDefault("remarkable.folder", "Readwise")
	v.SetDefault("sync.locations", []string{"new", "later", "shortlist"})
	v.SetDefault("sync.tag", "remarkable")
	v.SetDefault("sync.ledger_path", "exported_documents.txt")
	v.SetDefault("sync.temp_dir", "temp")
	v.SetDefault("daemon.schedule", "0 */6 * * *")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("REMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("remsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		Readwise: Readwise{
			Token: v.GetString("readwise.token"),
		},
		Remarkable: Remarkable{
			RmapiPath: v.GetString("remarkable.rmapi_path"),
			Folder:    v.GetString("remarkable.folder"),
		},
		Sync: Sync{
			Locations:  v.GetStringSlice("sync.locations"),
			Tag:        v.GetString("sync.tag"),
			LedgerPath: v.GetString("sync.ledger_path"),
			TempDir:    v.GetString("sync.temp_dir"),
		},
		Daemon: Daemon{
			Schedule: v.GetString("daemon.schedule"),
		},
		Logging: Logging{
			Level: v.GetString("log.level"),
		},
	}, nil
}

// Validate checks the values a sync run cannot start without.
func (c *Config) Validate() error {
	if c.Readwise.Token == "" {
		return errors.New("readwise token is not set (config readwise.token or REMSYNC_READWISE_TOKEN)")
	}
	if len(c.Sync.Locations) == 0 {
		return errors.New("at least one source location is required")
	}
	if c.Sync.Tag == "" {
		return errors.New("sync tag is required")
	}
	return nil
}
