package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Data      DataConfig      `mapstructure:"data"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DirectoryConfig points the provider client at the directory tenant.
// BaseURL and LoginURL are overridable so tests can target a local server.
type DirectoryConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	LoginURL     string        `mapstructure:"login_url"`
	TenantID     string        `mapstructure:"tenant_id"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type DataConfig struct {
	Dir          string `mapstructure:"dir"`
	SettingsFile string `mapstructure:"settings_file"`
	LedgerPath   string `mapstructure:"ledger_path"`
}

type RefreshConfig struct {
	RunOnStart   bool   `mapstructure:"run_on_start"`
	RecentDays   int    `mapstructure:"recent_days"`
	TopUserEmail string `mapstructure:"top_user_email"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("directory.base_url", "https://graph.microsoft.com/v1.0")
	viper.SetDefault("directory.login_url", "https://login.microsoftonline.com")
	viper.SetDefault("directory.timeout", 15*time.Second)
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.settings_file", "data/app_settings.json")
	viper.SetDefault("data.ledger_path", "data/disabled_ledger.db")
	viper.SetDefault("refresh.run_on_start", true)
	viper.SetDefault("refresh.recent_days", 365)
	viper.SetDefault("jwt.access_token_ttl", time.Hour)
	viper.SetDefault("logging.level", "info")
}
