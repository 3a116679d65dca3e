package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Source: SourceConfig{
			BaseURL:     "http://127.0.0.1",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "panels-test/1.0",
			RetryMax:    0,
			AllowLocal:  true,
		},
		Browse: BrowseConfig{
			PageSize:  DefaultPageSize,
			BatchSize: DefaultBatchSize,
		},
		Log:   LogConfig{Level: "off"},
		UI:    defaultConfig().UI,
		Media: defaultConfig().Media,
		Keys:  defaultConfig().Keys,
	}
}
