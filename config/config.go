package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// BillingConfig controls the session engine behavior.
type BillingConfig struct {
	// Customers is the fixed set of concurrent tab labels.
	Customers []string `yaml:"customers" json:"customers"`
	// AllowEmptyCommit permits committing a session with no lines.
	AllowEmptyCommit bool `yaml:"allow_empty_commit" json:"allow_empty_commit"`
	// StrictResolve fails a commit when a line name has no catalog match
	// instead of silently skipping the line.
	StrictResolve bool `yaml:"strict_resolve" json:"strict_resolve"`
	// Receipt column layout, in characters.
	ReceiptWidth      int `yaml:"receipt_width" json:"receipt_width"`
	ReceiptNameWidth  int `yaml:"receipt_name_width" json:"receipt_name_width"`
	ReceiptPriceWidth int `yaml:"receipt_price_width" json:"receipt_price_width"`
	ReceiptQtyWidth   int `yaml:"receipt_qty_width" json:"receipt_qty_width"`
	ReceiptAmtWidth   int `yaml:"receipt_amt_width" json:"receipt_amt_width"`
}

type ScaleConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	IntervalMs int  `yaml:"interval_ms" json:"interval_ms"`
}

// Interval returns the poll interval as a duration.
func (c ScaleConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Database DBConfig      `yaml:"database" json:"database"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
	Billing  BillingConfig `yaml:"billing" json:"billing"`
	Scale    ScaleConfig   `yaml:"scale" json:"scale"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Workdir:  "/var/poscore",
		Location: "Asia/Kolkata",
		Debug:    true,
	},
	Database: DBConfig{
		Type:     "sqlite",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "poscore",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/poscore/poscore.log",
	},
	Billing: BillingConfig{
		Customers:         []string{"C1", "C2", "C3"},
		AllowEmptyCommit:  false,
		StrictResolve:     false,
		ReceiptWidth:      48,
		ReceiptNameWidth:  22,
		ReceiptPriceWidth: 7,
		ReceiptQtyWidth:   7,
		ReceiptAmtWidth:   7,
	},
	Scale: ScaleConfig{
		Enabled:    false,
		IntervalMs: 500,
	},
}

// LoadConfig reads a yaml config file, falling back to defaults for the
// zero-valued sections.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	cfg := *DefaultAppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	if len(cfg.Billing.Customers) == 0 {
		cfg.Billing.Customers = DefaultAppConfig.Billing.Customers
	}
	if cfg.Scale.IntervalMs <= 0 {
		cfg.Scale.IntervalMs = DefaultAppConfig.Scale.IntervalMs
	}
	return &cfg, nil
}
