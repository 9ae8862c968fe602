package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"workdays/internal/calendar"
	"workdays/internal/holidays"
)

// DefaultHolidaysURL is the fixed business holiday source.
const DefaultHolidaysURL = "https://content.capta.co/Recruitment/WorkingDays.json"

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Calendar struct {
		Timezone   string `yaml:"timezone"`
		WorkStart  int    `yaml:"work_start"`
		WorkEnd    int    `yaml:"work_end"`
		LunchStart int    `yaml:"lunch_start"`
		LunchEnd   int    `yaml:"lunch_end"`
		Weekdays   []int  `yaml:"weekdays"`
	} `yaml:"calendar"`

	Holidays struct {
		URL                 string `yaml:"url"`
		FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
		RefreshCron         string `yaml:"refresh_cron"`
		StartupPolicy       string `yaml:"startup_policy"`
		SnapshotPath        string `yaml:"snapshot_path"`
	} `yaml:"holidays"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

// Load reads the YAML config at path (default configs/config.yaml). A
// missing file is not an error: defaults and environment overrides apply
// either way, and ${ENV_VAR} placeholders in the file are expanded.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// Run on defaults.
	default:
		return nil, err
	}

	cfg.applyDefaults()

	switch cfg.Holidays.StartupPolicy {
	case holidays.PolicyStrict, holidays.PolicyDegraded:
	default:
		return nil, fmt.Errorf("holidays.startup_policy must be %q or %q, got %q",
			holidays.PolicyStrict, holidays.PolicyDegraded, cfg.Holidays.StartupPolicy)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}

	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = "America/Bogota"
	}
	if env := os.Getenv("WORKDAYS_TIMEZONE"); env != "" {
		c.Calendar.Timezone = env
	}
	if c.Calendar.WorkStart == 0 && c.Calendar.WorkEnd == 0 {
		c.Calendar.WorkStart = 8
		c.Calendar.LunchStart = 12
		c.Calendar.LunchEnd = 13
		c.Calendar.WorkEnd = 17
	}
	if len(c.Calendar.Weekdays) == 0 {
		c.Calendar.Weekdays = []int{1, 2, 3, 4, 5} // Monday to Friday
	}

	if c.Holidays.URL == "" {
		c.Holidays.URL = DefaultHolidaysURL
	}
	if env := os.Getenv("WORKDAYS_HOLIDAYS_URL"); env != "" {
		c.Holidays.URL = env
	}
	if c.Holidays.FetchTimeoutSeconds <= 0 {
		c.Holidays.FetchTimeoutSeconds = 10
	}
	if c.Holidays.RefreshCron == "" {
		c.Holidays.RefreshCron = "0 5 * * *" // daily, early morning
	}
	if c.Holidays.StartupPolicy == "" {
		c.Holidays.StartupPolicy = holidays.PolicyStrict
	}
	if c.Holidays.SnapshotPath == "" {
		c.Holidays.SnapshotPath = "data/holidays.db"
	}

	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// FetchTimeout returns the holiday fetch budget.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Holidays.FetchTimeoutSeconds) * time.Second
}

// CacheTTL returns the Redis payload cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// CalendarConfig builds the validated working-calendar value, loading the
// configured timezone.
func (c *Config) CalendarConfig() (calendar.Config, error) {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return calendar.Config{}, fmt.Errorf("load timezone %q: %w", c.Calendar.Timezone, err)
	}

	weekdays := make([]time.Weekday, 0, len(c.Calendar.Weekdays))
	for _, d := range c.Calendar.Weekdays {
		weekdays = append(weekdays, time.Weekday(d))
	}

	return calendar.NewConfig(loc,
		c.Calendar.WorkStart, c.Calendar.LunchStart, c.Calendar.LunchEnd, c.Calendar.WorkEnd,
		weekdays)
}
