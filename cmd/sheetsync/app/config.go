package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Layout, relative paths resolve against Workspace
	Workspace         string
	DataDir           string
	ExportDir         string
	WorkbookDir       string
	WorkbookOutputDir string
	DiffFile          string
	ManifestFile      string
	ChangesDir        string
	DiffDataDir       string // as named in diff headers; empty derives it from DataDir

	// Records
	ExcludedSheets []string
	KeyField       string
	IDSections     []string
	PairSections   []string

	Git GitConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// GitConfig configures publishing.
type GitConfig struct {
	Token          string
	Repository     string
	Branch         string
	Remote         string
	AuthorName     string
	AuthorEmail    string
	PushAttempts   int
	PushBackoff    time.Duration
	ForcePush      bool
	RebaseOnReject bool
}

// envBindings maps config keys to the environment variables CI sets.
var envBindings = map[string][]string{
	"workspace":        {"SHEETSYNC_WORKSPACE", "GITHUB_WORKSPACE"},
	"git.token":        {"SHEETSYNC_GIT_TOKEN", "GITHUB_TOKEN"},
	"git.repository":   {"SHEETSYNC_GIT_REPOSITORY", "GITHUB_REPOSITORY"},
	"git.branch":       {"SHEETSYNC_GIT_BRANCH", "BRANCH_NAME"},
	"git.author_name":  {"GIT_AUTHOR_NAME"},
	"git.author_email": {"GIT_AUTHOR_EMAIL"},
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (./.sheetsync.yaml or ~/.sheetsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile(os.Getenv("SHEETSYNC_CONFIG"))
}

// LoadConfigFile is LoadConfig with an explicit config file. A named file
// that cannot be read is an error; the default locations are optional.
func LoadConfigFile(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.NewConfigError("env", "failed to bind "+key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", "failed to read "+configFile, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".sheetsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Workspace:         v.GetString("workspace"),
		DataDir:           v.GetString("data_dir"),
		ExportDir:         v.GetString("export_dir"),
		WorkbookDir:       v.GetString("workbook_dir"),
		WorkbookOutputDir: v.GetString("workbook_output_dir"),
		DiffFile:          v.GetString("diff_file"),
		ManifestFile:      v.GetString("manifest_file"),
		ChangesDir:        v.GetString("changes_dir"),
		DiffDataDir:       v.GetString("diff_data_dir"),

		ExcludedSheets: v.GetStringSlice("excluded_sheets"),
		KeyField:       v.GetString("key_field"),
		IDSections:     v.GetStringSlice("id_sections"),
		PairSections:   v.GetStringSlice("pair_sections"),

		Git: GitConfig{
			Token:          v.GetString("git.token"),
			Repository:     v.GetString("git.repository"),
			Branch:         v.GetString("git.branch"),
			Remote:         v.GetString("git.remote"),
			AuthorName:     v.GetString("git.author_name"),
			AuthorEmail:    v.GetString("git.author_email"),
			PushAttempts:   v.GetInt("git.push_attempts"),
			PushBackoff:    v.GetDuration("git.push_backoff"),
			ForcePush:      v.GetBool("git.force_push"),
			RebaseOnReject: v.GetBool("git.rebase_on_reject"),
		},

		LogLevel:  v.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("export_dir", constants.DefaultExportDir)
	v.SetDefault("workbook_dir", constants.DefaultWorkbookDir)
	v.SetDefault("workbook_output_dir", constants.DefaultWorkbookOutputDir)
	v.SetDefault("diff_file", constants.DefaultDiffFile)
	v.SetDefault("manifest_file", constants.DefaultManifestFile)
	v.SetDefault("changes_dir", constants.DefaultChangesDir)
	v.SetDefault("excluded_sheets", constants.ExcludedSheets)
	v.SetDefault("key_field", constants.FieldHandle)
	v.SetDefault("id_sections", constants.IDSections)
	v.SetDefault("git.branch", constants.DefaultBranch)
	v.SetDefault("git.remote", constants.DefaultRemote)
	v.SetDefault("git.push_attempts", constants.DefaultPushAttempts)
	v.SetDefault("git.push_backoff", constants.DefaultPushBackoff)
	v.SetDefault("git.rebase_on_reject", true)
}

// applyFlags copies the flags the user set over c.
func (c *Config) applyFlags(f rootFlags, changed func(name string) bool) {
	if changed("verbose") {
		c.Verbose = f.verbose
	}
	if changed("quiet") {
		c.Quiet = f.quiet
	}
	if changed("no-color") {
		c.NoColor = f.noColor
	}
	if changed("format") {
		c.Format = f.format
	}
	if changed("log-level") {
		c.LogLevel = f.logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded last but godotenv never overrides, so values
// already in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
