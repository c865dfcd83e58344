package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"groom/constants/lipgloss"
)

// Config represents the structure of the configuration file. Credentials are
// held only in volatile memory: they bind from flags and environment
// variables and are never written back to disk.
type Config struct {
	Repository      string `mapstructure:"repository"`
	Model           string `mapstructure:"model"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	DatabasePath    string `mapstructure:"database_path"`
	GitHubBaseURL   string `mapstructure:"github_base_url"`
	GeminiBaseURL   string `mapstructure:"gemini_base_url"`
	GitHubToken     string `mapstructure:"github_token"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Model:           "gemini-2.5-flash",
	IntervalSeconds: 40,
	DatabasePath:    "groom.db",
	GitHubBaseURL:   "https://api.github.com",
	GeminiBaseURL:   "https://generativelanguage.googleapis.com/v1beta",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment
// variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("groom-config")
		viper.AddConfigPath(cwd)

		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			_ = viper.ReadInConfig()
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	config.Repository = NormalizeRepository(config.Repository)

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("repository", DefaultConfig.Repository)
	viper.SetDefault("model", DefaultConfig.Model)
	viper.SetDefault("interval_seconds", DefaultConfig.IntervalSeconds)
	viper.SetDefault("database_path", DefaultConfig.DatabasePath)
	viper.SetDefault("github_base_url", DefaultConfig.GitHubBaseURL)
	viper.SetDefault("gemini_base_url", DefaultConfig.GeminiBaseURL)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("repository", "GROOM_REPOSITORY")
	_ = viper.BindEnv("model", "GROOM_MODEL")
	_ = viper.BindEnv("interval_seconds", "GROOM_INTERVAL_SECONDS")
	_ = viper.BindEnv("database_path", "GROOM_DATABASE_PATH")
	_ = viper.BindEnv("github_base_url", "GROOM_GITHUB_BASE_URL")
	_ = viper.BindEnv("gemini_base_url", "GROOM_GEMINI_BASE_URL")
	_ = viper.BindEnv("github_token", "GITHUB_TOKEN")
	_ = viper.BindEnv("gemini_api_key", "GEMINI_API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("repository", rootCmd.PersistentFlags().Lookup("repository"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("interval_seconds", rootCmd.PersistentFlags().Lookup("interval_seconds"))
	_ = viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database_path"))
	_ = viper.BindPFlag("github_token", rootCmd.PersistentFlags().Lookup("github_token"))
	_ = viper.BindPFlag("gemini_api_key", rootCmd.PersistentFlags().Lookup("gemini_api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("repository", DefaultConfig.Repository, "Repository coordinates as 'owner/name' (a full URL is accepted and normalized).")
	rootCmd.PersistentFlags().String("model", DefaultConfig.Model, "The model identifier used for content generation.")
	rootCmd.PersistentFlags().Int("interval_seconds", DefaultConfig.IntervalSeconds, "Seconds between processing cycles while the loop is live.")
	rootCmd.PersistentFlags().String("database_path", DefaultConfig.DatabasePath, "Path of the local state database.")
	rootCmd.PersistentFlags().String("github_token", "", "The code host credential. Prefer the GITHUB_TOKEN environment variable.")
	rootCmd.PersistentFlags().String("gemini_api_key", "", "The inference credential. Prefer the GEMINI_API_KEY environment variable.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// NormalizeRepository reduces a repository reference to 'owner/name',
// accepting a full URL and stripping scheme, host, trailing slash, and a
// '.git' suffix.
func NormalizeRepository(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "/")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	parts := strings.Split(s, "/")
	if len(parts) > 2 {
		s = strings.Join(parts[len(parts)-2:], "/")
	}
	return strings.TrimSuffix(s, ".git")
}
