// Package config handles application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config defines the structure for all application configuration.
type Config struct {
	RegistryPath string         `yaml:"registry_path"` // maps bot name -> bot config path
	Exchange     ExchangeConf   `yaml:"exchange"`
	Schedule     ScheduleConf   `yaml:"schedule"`
	Database     DatabaseConfig `yaml:"database"`
	DBWriter     DBWriterConfig `yaml:"dbwriter"`
	LogLevel     string         `yaml:"-"` // Loaded from env or defaults
	Token        string         `yaml:"-"` // Loaded from env
	AccountID    string         `yaml:"-"` // Loaded from env
}

// ExchangeConf holds brokerage-level settings shared by all bots.
type ExchangeConf struct {
	BaseURL        string  `yaml:"base_url"`
	CommissionRate float64 `yaml:"commission_rate"`
}

// ScheduleConf holds the control loop timing settings.
type ScheduleConf struct {
	Sessions            []SessionWindow `yaml:"sessions"`
	TriggerSecond       int             `yaml:"trigger_second"`
	RetrainAt           ClockTime       `yaml:"retrain_at"`
	SafetyMarginSeconds int             `yaml:"safety_margin_seconds"`
}

// DatabaseConfig holds the optional TimescaleDB connection settings.
// The writer is disabled when Host is empty.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // Loaded from env
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DBWriterConfig holds batching settings for the DB writer.
type DBWriterConfig struct {
	BatchSize            int `yaml:"batch_size"`
	WriteIntervalSeconds int `yaml:"write_interval_seconds"`
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		// Default values
		LogLevel: "info",
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	// Load sensitive data and overrides from environment variables
	if token := os.Getenv("TINKOFF_TOKEN"); token != "" {
		cfg.Token = token
	}
	if accountID := os.Getenv("TINKOFF_ACCOUNT_ID"); accountID != "" {
		cfg.AccountID = accountID
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		cfg.Database.Password = dbPassword
	}

	if cfg.RegistryPath == "" {
		return nil, fmt.Errorf("registry_path is required")
	}
	if cfg.Schedule.TriggerSecond < 0 || cfg.Schedule.TriggerSecond > 59 {
		return nil, fmt.Errorf("trigger_second %d out of range", cfg.Schedule.TriggerSecond)
	}
	return cfg, nil
}

// applyDefaults fills in the schedule defaults: Moscow Exchange equity
// sessions, a 23:59 retraining instant, and the historical trigger second.
func (c *Config) applyDefaults() {
	if len(c.Schedule.Sessions) == 0 {
		c.Schedule.Sessions = []SessionWindow{
			{Open: ClockTime{10, 10}, Close: ClockTime{14, 0}},
			{Open: ClockTime{14, 10}, Close: ClockTime{18, 45}},
			{Open: ClockTime{19, 10}, Close: ClockTime{23, 50}},
		}
	}
	if c.Schedule.RetrainAt == (ClockTime{}) {
		c.Schedule.RetrainAt = ClockTime{23, 59}
	}
	if c.Schedule.TriggerSecond == 0 {
		c.Schedule.TriggerSecond = 4
	}
	if c.Schedule.SafetyMarginSeconds == 0 {
		c.Schedule.SafetyMarginSeconds = 15
	}
	if c.Exchange.CommissionRate == 0 {
		c.Exchange.CommissionRate = 0.0005
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.DBWriter.BatchSize == 0 {
		c.DBWriter.BatchSize = 100
	}
	if c.DBWriter.WriteIntervalSeconds == 0 {
		c.DBWriter.WriteIntervalSeconds = 1
	}
}
