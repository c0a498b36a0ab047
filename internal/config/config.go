package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// DefaultPath is the config file looked up when neither --config nor CONFIG_PATH is set.
const DefaultPath = "platform-cli.yaml"

// Config contains application configuration
type Config struct {
	// Owner identity written to and checked against the CreatedBy tag
	Owner string `yaml:"owner"`

	// AWS connection parameters
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`

	// Compute policy
	MaxRunningInstances int               `yaml:"max_running_instances"`
	Images              map[string]string `yaml:"images"` // image choice -> AMI id
	InstanceTypes       []string          `yaml:"instance_types"`

	// DNS record TTL in seconds
	RecordTTL int64 `yaml:"record_ttl"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Owner:               "lirchen",
		MaxRunningInstances: 2,
		Images: map[string]string{
			"ubuntu":       "ami-020cba7c55df1f615",
			"amazon-linux": "ami-00ca32bbc84273381",
		},
		InstanceTypes: []string{"t3.micro", "t2.small"},
		RecordTTL:     300,
	}
}

// Load loads configuration from a YAML file and the environment.
// An empty path falls back to CONFIG_PATH and then DefaultPath; a missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Expand environment variables in string fields
	config.Owner = os.ExpandEnv(config.Owner)
	config.AccessKeyID = os.ExpandEnv(config.AccessKeyID)
	config.SecretAccessKey = os.ExpandEnv(config.SecretAccessKey)
	config.Region = os.ExpandEnv(config.Region)

	// Override with environment variables if set
	if owner := os.Getenv("PLATFORM_CLI_OWNER"); owner != "" {
		config.Owner = owner
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.SecretAccessKey = secret
	}
	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		config.Region = region
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the local policy values. Credentials are left to the provider.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is required (set owner in config file or PLATFORM_CLI_OWNER environment variable)")
	}
	if c.MaxRunningInstances <= 0 {
		return fmt.Errorf("max_running_instances must be positive, got %d", c.MaxRunningInstances)
	}
	if c.RecordTTL <= 0 {
		return fmt.Errorf("record_ttl must be positive, got %d", c.RecordTTL)
	}
	if len(c.Images) == 0 {
		return fmt.Errorf("at least one image must be configured")
	}
	if len(c.InstanceTypes) == 0 {
		return fmt.Errorf("at least one instance type must be configured")
	}
	return nil
}

// ImageChoices returns the configured image names in a stable order
func (c *Config) ImageChoices() []string {
	choices := make([]string, 0, len(c.Images))
	for name := range c.Images {
		choices = append(choices, name)
	}
	sort.Strings(choices)
	return choices
}
