package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/capyflow/bibsplit/parse/toml"
	"github.com/capyflow/bibsplit/pkg"
)

const defaultConfigFile = "aq.toml"

// Config 是 aq.toml 解析后的配置
type Config struct {
	LogLevel string
	Bib      BibConfig
}

type BibConfig struct {
	Format string
	Strict bool
	Indent string
}

func defaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Bib:      BibConfig{Format: "json", Indent: "  "},
	}
}

// loadConfig 读取配置文件。默认文件不存在时使用默认值，显式指定的文件必须存在
func loadConfig(path string) (*Config, *toml.Table, error) {
	conf := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	exist, err := pkg.CheckFileExist(path)
	if err != nil {
		return nil, nil, err
	}
	if !exist {
		if explicit {
			return nil, nil, fmt.Errorf("config file %q not exist", path)
		}
		return conf, toml.NewTable(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	root, err := toml.Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v, ok := toml.GetString(root, "log", "level"); ok {
		conf.LogLevel = v
	}
	if v, ok := toml.GetString(root, "bib", "format"); ok {
		conf.Bib.Format = v
	}
	if v, ok := toml.GetBool(root, "bib", "strict"); ok {
		conf.Bib.Strict = v
	}
	if v, ok := toml.GetString(root, "bib", "indent"); ok {
		conf.Bib.Indent = v
	}
	return conf, root, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
