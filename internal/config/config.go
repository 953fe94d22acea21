package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Registry RegistryConfig
	POS      POSConfig
	Sync     SyncConfig
	Export   ExportConfig
	Database DatabaseConfig
	UI       UIConfig
}

// RegistryConfig holds upstream Registry API settings.
type RegistryConfig struct {
	URL  string
	User string
	Pass string
}

// POSConfig holds point-of-sale API credentials and endpoints.
type POSConfig struct {
	APIURL       string `mapstructure:"api_url"`
	TokenURL     string `mapstructure:"token_url"`
	AccountID    string `mapstructure:"account_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// SyncConfig holds reconciliation settings.
type SyncConfig struct {
	CustomFieldPersonID string `mapstructure:"customfield_person_id"`
	CustomFieldSyncTime string `mapstructure:"customfield_sync_time"`
	CreditLimit         string `mapstructure:"credit_limit"`
	SimulateDelete      bool   `mapstructure:"simulate_delete"`
	Force               bool   `mapstructure:"force"`
}

// ExportConfig holds charge/balance export defaults.
type ExportConfig struct {
	CatalogItemFK     string `mapstructure:"catalog_item_fk"`
	SchoolYear        string `mapstructure:"school_year"`
	TransactionType   string `mapstructure:"transaction_type"`
	TransactionSource string `mapstructure:"transaction_source"`
	Shop              string
	EmployeeID        int `mapstructure:"employee_id"`
	Dir               string
	Format            string
	DebugFields       bool `mapstructure:"debug_fields"`
	ClearCharges      bool `mapstructure:"clear_charges"`
}

// DatabaseConfig holds sqlite settings for the run journal.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Timezone string
	Workers  int
}

// Load reads configuration from file and env. Env var overrides use prefix REGPOS_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("registry.url", "")
	v.SetDefault("registry.user", "")
	v.SetDefault("registry.pass", "")
	v.SetDefault("pos.api_url", "https://api.lightspeedapp.com")
	v.SetDefault("pos.token_url", "https://cloud.lightspeedapp.com/oauth/access_token.php")
	v.SetDefault("pos.account_id", "")
	v.SetDefault("pos.client_id", "")
	v.SetDefault("pos.client_secret", "")
	v.SetDefault("pos.refresh_token", "")
	v.SetDefault("sync.customfield_person_id", "")
	v.SetDefault("sync.customfield_sync_time", "")
	v.SetDefault("sync.credit_limit", "5000.00")
	v.SetDefault("sync.simulate_delete", false)
	v.SetDefault("sync.force", false)
	v.SetDefault("export.catalog_item_fk", "")
	v.SetDefault("export.school_year", "")
	v.SetDefault("export.transaction_type", "")
	v.SetDefault("export.transaction_source", "")
	v.SetDefault("export.shop", "")
	v.SetDefault("export.employee_id", 1)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.debug_fields", false)
	v.SetDefault("export.clear_charges", false)
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "regpos", "regpos.db"))
	v.SetDefault("ui.timezone", "America/New_York")
	v.SetDefault("ui.workers", 4)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("REGPOS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "regpos"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("REGPOS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Credential fields are written as-is; the secret store is preferred
// for them and Load lets non-empty config values win over stored secrets.
func Save(cfg Config) error {
	path := os.Getenv("REGPOS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "regpos", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("registry.url", cfg.Registry.URL)
	v.Set("registry.user", cfg.Registry.User)
	v.Set("registry.pass", cfg.Registry.Pass)
	v.Set("pos.api_url", cfg.POS.APIURL)
	v.Set("pos.token_url", cfg.POS.TokenURL)
	v.Set("pos.account_id", cfg.POS.AccountID)
	v.Set("pos.client_id", cfg.POS.ClientID)
	v.Set("pos.client_secret", cfg.POS.ClientSecret)
	v.Set("pos.refresh_token", cfg.POS.RefreshToken)
	v.Set("sync.customfield_person_id", cfg.Sync.CustomFieldPersonID)
	v.Set("sync.customfield_sync_time", cfg.Sync.CustomFieldSyncTime)
	v.Set("sync.credit_limit", cfg.Sync.CreditLimit)
	v.Set("sync.simulate_delete", cfg.Sync.SimulateDelete)
	v.Set("sync.force", cfg.Sync.Force)
	v.Set("export.catalog_item_fk", cfg.Export.CatalogItemFK)
	v.Set("export.school_year", cfg.Export.SchoolYear)
	v.Set("export.transaction_type", cfg.Export.TransactionType)
	v.Set("export.transaction_source", cfg.Export.TransactionSource)
	v.Set("export.shop", cfg.Export.Shop)
	v.Set("export.employee_id", cfg.Export.EmployeeID)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("export.format", cfg.Export.Format)
	v.Set("export.debug_fields", cfg.Export.DebugFields)
	v.Set("export.clear_charges", cfg.Export.ClearCharges)
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.workers", cfg.UI.Workers)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
