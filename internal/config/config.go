package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Tracker struct {
		Strategy   string `yaml:"strategy"` // api | scraper | auto
		SearchTerm string `yaml:"search_term"`
		Limit      int    `yaml:"limit"`
	} `yaml:"tracker"`

	API struct {
		Endpoint       string `yaml:"endpoint"`
		TopicSlug      string `yaml:"topic_slug"`
		RecentDays     int    `yaml:"recent_days"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`

	Scraper struct {
		BaseURL        string  `yaml:"base_url"`
		ListingPath    string  `yaml:"listing_path"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		SkipEnrich     bool    `yaml:"skip_enrich"`
		MaxEnrich      int     `yaml:"max_enrich"`
		HostRPS        float64 `yaml:"host_rps"`
	} `yaml:"scraper"`

	Retry struct {
		MaxAttempts    int `yaml:"max_attempts"`
		BackoffSeconds int `yaml:"backoff_seconds"`
	} `yaml:"retry"`

	Polling struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		RetentionDays   int `yaml:"retention_days"`
	} `yaml:"polling"`

	Tagging struct {
		Enabled bool   `yaml:"enabled"`
		APIURL  string `yaml:"api_url"`
		Model   string `yaml:"model"`
	} `yaml:"tagging"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
