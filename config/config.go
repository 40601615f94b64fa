package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the application configuration.
type Config struct {
	BatchSize   int    `hcl:"batch_size,optional"`
	Mode        string `hcl:"mode,optional"`
	ServerURL   string `hcl:"server_url,optional"`
	ScanTimeout string `hcl:"scan_timeout,optional"`
	CatalogDir  string `hcl:"catalog_dir,optional"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:   1000,
		Mode:        "local",
		ScanTimeout: "0s",
	}
}

// ScanTimeoutDuration parses the scan_timeout value. An empty value means
// no timeout.
func (c *Config) ScanTimeoutDuration() (time.Duration, error) {
	if c.ScanTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ScanTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid scan_timeout %q: %w", c.ScanTimeout, err)
	}
	return d, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.Mode {
	case "local", "remote":
	default:
		return fmt.Errorf("invalid mode %q (want local or remote)", c.Mode)
	}
	if c.Mode == "remote" && c.ServerURL == "" {
		return fmt.Errorf("remote mode requires server_url")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if _, err := c.ScanTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// Load reads the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.SetAttributeValue("mode", cty.StringVal(cfg.Mode))
	if cfg.ServerURL != "" {
		root.SetAttributeValue("server_url", cty.StringVal(cfg.ServerURL))
	}
	root.SetAttributeValue("scan_timeout", cty.StringVal(cfg.ScanTimeout))
	if cfg.CatalogDir != "" {
		root.SetAttributeValue("catalog_dir", cty.StringVal(cfg.CatalogDir))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
