package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPageSize  = 20
	DefaultBatchSize = 100
	DefaultBaseURL   = "https://xkcd.com"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Browse   BrowseConfig   `mapstructure:"browse"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SourceConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	RetryMax    int           `mapstructure:"retry_max"`
	AllowLocal  bool          `mapstructure:"allow_local"`
}

type BrowseConfig struct {
	PageSize  int `mapstructure:"page_size"`
	BatchSize int `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Search    string `mapstructure:"search"`
	NextPage  string `mapstructure:"next_page"`
	PrevPage  string `mapstructure:"prev_page"`
	Favorite  string `mapstructure:"favorite"`
	Favorites string `mapstructure:"favorites"`
	OpenImage string `mapstructure:"open_image"`
	Explain   string `mapstructure:"explain"`
	Retry     string `mapstructure:"retry"`
	Back      string `mapstructure:"back"`
	Help      string `mapstructure:"help"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".panels.db"),
			Timeout: 1 * time.Second,
		},
		Source: SourceConfig{
			BaseURL:     DefaultBaseURL,
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "panels/1.0 (https://github.com/pders01/panels)",
			RetryMax:    2,
		},
		Browse: BrowseConfig{
			PageSize:  DefaultPageSize,
			BatchSize: DefaultBatchSize,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".panels", "panels.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#96A8C8",
				Secondary: "#4ECDC4",
				Accent:    "#FFE66D",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
		Media: MediaConfig{
			Darwin:        []string{"preview", "open"},
			Linux:         []string{"imv", "sxiv", "feh", "eog", "xdg-open"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:      "q",
				Search:    "/",
				NextPage:  "n",
				PrevPage:  "p",
				Favorite:  "f",
				Favorites: "F",
				OpenImage: "o",
				Explain:   "e",
				Retry:     "r",
				Back:      "esc",
				Help:      "?",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("source", cfg.Source)
	v.SetDefault("browse", cfg.Browse)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(homeDir, ".config", "panels"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PANELS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	normalize(&config)

	return &config, nil
}

// normalize expands paths and restores engine constants that were
// configured out of range.
func normalize(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	if cfg.Browse.PageSize <= 0 {
		cfg.Browse.PageSize = DefaultPageSize
	}
	if cfg.Browse.BatchSize <= 0 {
		cfg.Browse.BatchSize = DefaultBatchSize
	}
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = DefaultBaseURL
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Sections are written as maps so TOML keys match the mapstructure tags
	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	sourceCfg := map[string]interface{}{
		"base_url":     config.Source.BaseURL,
		"http_timeout": config.Source.HTTPTimeout.String(),
		"user_agent":   config.Source.UserAgent,
		"retry_max":    config.Source.RetryMax,
		"allow_local":  config.Source.AllowLocal,
	}

	browseCfg := map[string]interface{}{
		"page_size":  config.Browse.PageSize,
		"batch_size": config.Browse.BatchSize,
	}

	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	colors := config.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":   colors.Primary,
			"secondary": colors.Secondary,
			"accent":    colors.Accent,
			"text":      colors.Text,
			"muted":     colors.Muted,
			"error":     colors.Error,
			"success":   colors.Success,
		},
	}

	mediaCfg := map[string]interface{}{
		"darwin":         config.Media.Darwin,
		"linux":          config.Media.Linux,
		"windows":        config.Media.Windows,
		"default_opener": config.Media.DefaultOpener,
	}

	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"bindings": map[string]interface{}{
			"quit":       b.Quit,
			"search":     b.Search,
			"next_page":  b.NextPage,
			"prev_page":  b.PrevPage,
			"favorite":   b.Favorite,
			"favorites":  b.Favorites,
			"open_image": b.OpenImage,
			"explain":    b.Explain,
			"retry":      b.Retry,
			"back":       b.Back,
			"help":       b.Help,
		},
	}

	v.Set("database", dbCfg)
	v.Set("source", sourceCfg)
	v.Set("browse", browseCfg)
	v.Set("log", logCfg)
	v.Set("ui", uiCfg)
	v.Set("media", mediaCfg)
	v.Set("keys", keysCfg)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
