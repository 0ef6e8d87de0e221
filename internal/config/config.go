package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Databox    DataboxConfig   `yaml:"databox"`
	HubSpot    HubSpotConfig   `yaml:"hubspot"`
	Slack      SlackConfig     `yaml:"slack"`
	Email      EmailConfig     `yaml:"email"`
	Pages      PagesConfig     `yaml:"pages"`
	Storage    StorageConfig   `yaml:"storage"`
	Report     ReportConfig    `yaml:"report"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Server     ServerConfig    `yaml:"server"`
}

// DataboxConfig holds the ad-spend aggregation API configuration
type DataboxConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
	PageSize       int    `yaml:"page_size"`
}

// Timeout returns the configured timeout as a duration
func (c DataboxConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HubSpotConfig holds the CRM search API configuration
type HubSpotConfig struct {
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageLimit      int    `yaml:"page_limit"`
	MaxPages       int    `yaml:"max_pages"`
	PageDelayMs    int    `yaml:"page_delay_ms"`
}

// Timeout returns the configured timeout as a duration
func (c HubSpotConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PageDelay returns the inter-page delay as a duration
func (c HubSpotConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

// SlackConfig holds the chat webhook configuration
type SlackConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SlackConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmailConfig holds AWS SES report email configuration
type EmailConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
	To             string `yaml:"to"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether email delivery can be attempted
func (c EmailConfig) Configured() bool {
	return c.From != "" && c.To != ""
}

// Recipients splits the comma-separated To list into addresses.
func (c EmailConfig) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(c.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// PagesConfig holds the static-site publish configuration
// (GitHub contents API behind a Pages site)
type PagesConfig struct {
	Owner          string `yaml:"owner"`
	Repo           string `yaml:"repo"`
	Token          string `yaml:"token"`
	Branch         string `yaml:"branch"`
	Path           string `yaml:"path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c PagesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether publishing can be attempted
func (c PagesConfig) Configured() bool {
	return c.Owner != "" && c.Repo != "" && c.Token != ""
}

// StorageConfig holds report persistence configuration
type StorageConfig struct {
	LocalPath  string `yaml:"local_path"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses the default credential chain
}

// ReportConfig holds report shaping configuration
type ReportConfig struct {
	PrimaryChannel string  `yaml:"primary_channel"`
	MonthlyBudget  float64 `yaml:"monthly_budget"`
}

// ThresholdConfig holds the rule-engine thresholds. It is passed into the
// intelligence and recommendation engines as an explicit value so tests can
// vary thresholds without process-wide state.
type ThresholdConfig struct {
	TargetCostPerDemo float64 `yaml:"target_cost_per_demo"`
	CTRWarning        float64 `yaml:"ctr_warning"`
	CTRWin            float64 `yaml:"ctr_win"`
	CPMAlert          float64 `yaml:"cpm_alert"`
	CPMWarning        float64 `yaml:"cpm_warning"`
	DisqualAlert      float64 `yaml:"disqual_alert"`
	DisqualWarning    float64 `yaml:"disqual_warning"`
}

// ServerConfig holds the local dashboard server configuration (-serve mode)
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Databox.BaseURL == "" {
		cfg.Databox.BaseURL = "https://push.databox.com"
	}
	if cfg.Databox.TimeoutSeconds == 0 {
		cfg.Databox.TimeoutSeconds = 30
	}
	if cfg.Databox.MaxAttempts == 0 {
		cfg.Databox.MaxAttempts = 3
	}
	if cfg.Databox.PageSize == 0 {
		cfg.Databox.PageSize = 500
	}
	if cfg.HubSpot.BaseURL == "" {
		cfg.HubSpot.BaseURL = "https://api.hubapi.com"
	}
	if cfg.HubSpot.TimeoutSeconds == 0 {
		cfg.HubSpot.TimeoutSeconds = 30
	}
	if cfg.HubSpot.PageLimit == 0 {
		cfg.HubSpot.PageLimit = 100
	}
	if cfg.HubSpot.MaxPages == 0 {
		cfg.HubSpot.MaxPages = 50
	}
	if cfg.HubSpot.PageDelayMs == 0 {
		cfg.HubSpot.PageDelayMs = 250
	}
	if cfg.Slack.TimeoutSeconds == 0 {
		cfg.Slack.TimeoutSeconds = 15
	}
	if cfg.Email.Region == "" {
		cfg.Email.Region = "us-west-2"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 30
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "Marketing Pulse"
	}
	if cfg.Pages.Branch == "" {
		cfg.Pages.Branch = "main"
	}
	if cfg.Pages.Path == "" {
		cfg.Pages.Path = "index.html"
	}
	if cfg.Pages.TimeoutSeconds == 0 {
		cfg.Pages.TimeoutSeconds = 30
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "reports"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-west-2"
	}
	if cfg.Report.PrimaryChannel == "" {
		cfg.Report.PrimaryChannel = "linkedin_ads"
	}
	if cfg.Report.MonthlyBudget == 0 {
		cfg.Report.MonthlyBudget = 10000
	}
	if cfg.Thresholds.TargetCostPerDemo == 0 {
		cfg.Thresholds.TargetCostPerDemo = 150
	}
	if cfg.Thresholds.CTRWarning == 0 {
		cfg.Thresholds.CTRWarning = 0.005
	}
	if cfg.Thresholds.CTRWin == 0 {
		cfg.Thresholds.CTRWin = 0.012
	}
	if cfg.Thresholds.CPMAlert == 0 {
		cfg.Thresholds.CPMAlert = 120
	}
	if cfg.Thresholds.CPMWarning == 0 {
		cfg.Thresholds.CPMWarning = 80
	}
	if cfg.Thresholds.DisqualAlert == 0 {
		cfg.Thresholds.DisqualAlert = 0.5
	}
	if cfg.Thresholds.DisqualWarning == 0 {
		cfg.Thresholds.DisqualWarning = 0.35
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in CI.
// A missing config file is not an error: defaults plus env vars suffice.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
		cfg.applyDefaults()
	}

	if v := os.Getenv("DATABOX_API_KEY"); v != "" {
		cfg.Databox.APIKey = v
	}
	if v := os.Getenv("DATABOX_BASE_URL"); v != "" {
		cfg.Databox.BaseURL = v
	}
	if v := os.Getenv("HUBSPOT_TOKEN"); v != "" {
		cfg.HubSpot.Token = v
	}
	if v := os.Getenv("HUBSPOT_BASE_URL"); v != "" {
		cfg.HubSpot.BaseURL = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Email.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Email.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Email.Region = v
	}
	if v := os.Getenv("REPORT_EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("REPORT_EMAIL_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("PAGES_REPO_OWNER"); v != "" {
		cfg.Pages.Owner = v
	}
	if v := os.Getenv("PAGES_REPO_NAME"); v != "" {
		cfg.Pages.Repo = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Pages.Token = v
	}
	if v := os.Getenv("REPORTS_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}

	return cfg, nil
}

// Validate checks that the mandatory credentials are present. Delivery
// channel credentials are optional; the two data-source credentials are not.
func (cfg *Config) Validate() error {
	if cfg.Databox.APIKey == "" {
		return fmt.Errorf("missing Databox API key (set DATABOX_API_KEY or databox.api_key)")
	}
	if cfg.HubSpot.Token == "" {
		return fmt.Errorf("missing HubSpot token (set HUBSPOT_TOKEN or hubspot.token)")
	}
	return nil
}
