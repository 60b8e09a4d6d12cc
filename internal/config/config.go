package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	SMT            SMTConfig  `yaml:"smt"`
	YNAB           YNABConfig `yaml:"ynab"`
	KWhRate        float64    `yaml:"kwh_rate,omitempty"`        // Cost per kWh used for the budget target
	HealthcheckURL string     `yaml:"healthcheck_url,omitempty"` // Optional healthchecks.io-style ping URL
	MQTT           MQTTConfig `yaml:"mqtt,omitempty"`
	Database       string     `yaml:"database,omitempty"` // SQLite archive path (default: data.db)
}

// SMTConfig holds Smart Meter Texas account settings
type SMTConfig struct {
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	ESIID       string `yaml:"esiid,omitempty"`         // Optional; default is the account's first meter
	DaysToFetch int    `yaml:"days_to_fetch,omitempty"` // Fetch window (fallback: 730)
}

// YNABConfig holds YNAB API settings
type YNABConfig struct {
	AccessToken string `yaml:"access_token,omitempty"`
	BudgetID    string `yaml:"budget_id,omitempty"`
	CategoryID  string `yaml:"category_id,omitempty"`
}

// MQTTConfig holds MQTT broker settings for Home Assistant publishing
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker,omitempty"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default: smtbudget
}

// Load reads the config file and applies environment overrides. A missing
// file is not an error; secrets can come entirely from the environment.
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overlays environment variables onto the config. A .env file in the
// working directory is loaded first if present; explicit environment always
// wins over the config file.
func (c *Config) applyEnv() error {
	// Ignore a missing .env; godotenv never overrides variables already set
	_ = godotenv.Load()

	setString(&c.SMT.Username, "SMT_USERNAME")
	setString(&c.SMT.Password, "SMT_PASSWORD")
	setString(&c.SMT.ESIID, "SMT_ESIID")
	setString(&c.YNAB.AccessToken, "YNAB_ACCESS_TOKEN")
	setString(&c.YNAB.BudgetID, "YNAB_BUDGET_ID")
	setString(&c.YNAB.CategoryID, "YNAB_CATEGORY_ID")
	setString(&c.HealthcheckURL, "HEALTHCHECK_URL")

	if v := os.Getenv("KWH_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing KWH_RATE %q: %w", v, err)
		}
		c.KWhRate = rate
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetDaysToFetch returns the fetch window with a default of 730 days, wide
// enough for a full 12-month trailing window plus the partial edge months
func (c *Config) GetDaysToFetch() int {
	if c.SMT.DaysToFetch <= 0 {
		return 730
	}
	return c.SMT.DaysToFetch
}

// GetDatabasePath returns the SQLite archive path with a default of data.db
func (c *Config) GetDatabasePath() string {
	if c.Database == "" {
		return "data.db"
	}
	return c.Database
}

// GetTopicPrefix returns the MQTT topic prefix with a default of smtbudget
func (c *MQTTConfig) GetTopicPrefix() string {
	if c.TopicPrefix == "" {
		return "smtbudget"
	}
	return c.TopicPrefix
}

// ValidateFetch checks the settings needed to fetch billing data
func (c *Config) ValidateFetch() error {
	var errors []string

	if c.SMT.Username == "" {
		errors = append(errors, "SMT username is required (config smt.username or SMT_USERNAME)")
	}
	if c.SMT.Password == "" {
		errors = append(errors, "SMT password is required (config smt.password or SMT_PASSWORD)")
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errors, "; "))
	}
	return nil
}

// ValidateRun checks the settings needed for the full scheduled workflow
func (c *Config) ValidateRun() error {
	var errors []string

	if c.SMT.Username == "" {
		errors = append(errors, "SMT username is required (config smt.username or SMT_USERNAME)")
	}
	if c.SMT.Password == "" {
		errors = append(errors, "SMT password is required (config smt.password or SMT_PASSWORD)")
	}
	if c.YNAB.AccessToken == "" {
		errors = append(errors, "YNAB access token is required (config ynab.access_token or YNAB_ACCESS_TOKEN)")
	}
	if c.YNAB.BudgetID == "" {
		errors = append(errors, "YNAB budget ID is required (config ynab.budget_id or YNAB_BUDGET_ID)")
	}
	if c.YNAB.CategoryID == "" {
		errors = append(errors, "YNAB category ID is required (config ynab.category_id or YNAB_CATEGORY_ID)")
	}
	if c.KWhRate <= 0 {
		errors = append(errors, fmt.Sprintf("kwh_rate must be positive, got %v", c.KWhRate))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errors = append(errors, "MQTT broker address is required when enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errors, "; "))
	}
	return nil
}

// ValidateMQTT checks MQTT settings when publishing is enabled
func (c *Config) ValidateMQTT() error {
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("MQTT broker address is required when enabled")
	}
	return nil
}
