package config

import (
	"fmt"
	"time"
)

type Config struct {
	NewsSites     map[string]SiteConfig `yaml:"news_sites"`
	HTTP          HttpConfig            `yaml:"http"`
	Concurrency   ConcurrencyConfig     `yaml:"concurrency"`
	Rod           RodConfig             `yaml:"rod"`
	Output        OutputConfig          `yaml:"output"`
	Transform     TransformConfig       `yaml:"transform"`
	Storage       StorageConfig         `yaml:"storage"`
	Scheduler     SchedulerConfig       `yaml:"scheduler"`
	Observability ObservabilityConfig   `yaml:"observability"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	ConnectTimeoutMS          int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
}

// ConcurrencyConfig bounds how many fetches run at once. Zero means unbounded.
type ConcurrencyConfig struct {
	MaxInFlight          int `yaml:"max_in_flight"`
	MaxConcurrentPerHost int `yaml:"max_concurrent_per_host"`
}

const (
	FilenameStyleArticles  = "articles"
	FilenameStyleAggregate = "aggregate"
)

type OutputConfig struct {
	Dir           string `yaml:"dir"`
	FilenameStyle string `yaml:"filename_style"`
}

type TransformConfig struct {
	OutputDir     string `yaml:"output_dir"`
	InputEncoding string `yaml:"input_encoding"`
	StopWords     string `yaml:"stop_words"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type SchedulerConfig struct {
	Mode      string `yaml:"mode"`
	IntervalS int    `yaml:"interval_s"`
	CronExpr  string `yaml:"cron_expr"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	MetricsPath   string `yaml:"metrics_path"`
}

// SetDefaults fills optional fields left empty in the YAML file.
func (c *Config) SetDefaults() {
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "newsetl/1.0"
	}
	if c.HTTP.TotalTimeoutMS == 0 {
		c.HTTP.TotalTimeoutMS = 30000
	}
	if c.HTTP.ConnectTimeoutMS == 0 {
		c.HTTP.ConnectTimeoutMS = 10000
	}
	if c.HTTP.MaxIdleConnections == 0 {
		c.HTTP.MaxIdleConnections = 100
	}
	if c.HTTP.MaxIdleConnectionsPerHost == 0 {
		c.HTTP.MaxIdleConnectionsPerHost = 10
	}
	if c.HTTP.IdleConnectionTimeoutS == 0 {
		c.HTTP.IdleConnectionTimeoutS = 90
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.FilenameStyle == "" {
		c.Output.FilenameStyle = FilenameStyleArticles
	}
	if c.Transform.OutputDir == "" {
		c.Transform.OutputDir = "."
	}
	if c.Transform.InputEncoding == "" {
		c.Transform.InputEncoding = "utf-8"
	}
	if c.Transform.StopWords == "" {
		c.Transform.StopWords = "spanish"
	}
	if c.Storage.CommandTimeoutMS == 0 {
		c.Storage.CommandTimeoutMS = 30000
	}
	if c.Scheduler.Mode == "" {
		c.Scheduler.Mode = "oneshot"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Rod.PageTimeoutS == 0 {
		c.Rod.PageTimeoutS = 30
	}
	if c.Rod.WaitLoadTimeoutS == 0 {
		c.Rod.WaitLoadTimeoutS = 15
	}
}

// Validation
func (c *Config) Validate() error {
	if len(c.NewsSites) == 0 {
		return fmt.Errorf("news_sites must contain at least one site")
	}
	for uid, site := range c.NewsSites {
		if err := site.validate(uid); err != nil {
			return err
		}
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.Concurrency.MaxInFlight < 0 {
		return fmt.Errorf("concurrency.max_in_flight must be >= 0")
	}
	if c.Concurrency.MaxConcurrentPerHost < 0 {
		return fmt.Errorf("concurrency.max_concurrent_per_host must be >= 0")
	}
	if c.Output.FilenameStyle != FilenameStyleArticles && c.Output.FilenameStyle != FilenameStyleAggregate {
		return fmt.Errorf("output.filename_style must be 'articles' or 'aggregate'")
	}
	switch c.Transform.InputEncoding {
	case "utf-8", "iso-8859-1":
	default:
		return fmt.Errorf("transform.input_encoding must be 'utf-8' or 'iso-8859-1'")
	}
	if c.Storage.Driver != "" {
		switch c.Storage.Driver {
		case "mssql", "postgres", "sqlite3":
		default:
			return fmt.Errorf("storage.driver must be 'mssql', 'postgres' or 'sqlite3'")
		}
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	}
	if c.Scheduler.Mode != "interval" && c.Scheduler.Mode != "cron" && c.Scheduler.Mode != "oneshot" {
		return fmt.Errorf("scheduler.mode must be 'interval', 'cron' or 'oneshot'")
	}
	if c.Scheduler.Mode == "interval" && c.Scheduler.IntervalS <= 0 {
		return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
	}
	if c.Scheduler.Mode == "cron" && c.Scheduler.CronExpr == "" {
		return fmt.Errorf("scheduler.cron_expr must be set when mode is 'cron'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Rod.Enabled {
		if c.Rod.ChromePath == "" {
			return fmt.Errorf("rod.chrome_path is required when rod.enabled is true")
		}
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalS) * time.Second
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}

// NeedsBrowser reports whether any configured site must be rendered by rod.
func (c *Config) NeedsBrowser() bool {
	if !c.Rod.Enabled {
		return false
	}
	for _, site := range c.NewsSites {
		if site.Render {
			return true
		}
	}
	return false
}
