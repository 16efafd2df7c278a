// Package config handles credentials and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in
// ~/.config/zotpdb/config.yml. Environment variables override every
// field.
type GlobalConfig struct {
	APIKey            string `yaml:"api_key,omitempty"`
	LibraryID         string `yaml:"library_id,omitempty"`
	LibraryType       string `yaml:"library_type,omitempty"`
	DefaultCollection string `yaml:"default_collection,omitempty"`
	ListenAddr        string `yaml:"listen_addr,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "zotpdb"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultListenAddr is the tool server's default listen address.
	DefaultListenAddr = ":8321"
)

// Environment variables consulted before the config file.
const (
	EnvAPIKey            = "ZOTERO_API_KEY"
	EnvLibraryID         = "ZOTERO_LIBRARY_ID"
	EnvLibraryType       = "ZOTERO_LIBRARY_TYPE"
	EnvDefaultCollection = "ZOTPDB_COLLECTION"
	EnvListenAddr        = "ZOTPDB_ADDR"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/zotpdb/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetAPIKey returns the Zotero API key, environment over file.
func GetAPIKey() string {
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.APIKey
}

// GetLibraryID returns the Zotero library ID, environment over file.
func GetLibraryID() string {
	if v := os.Getenv(EnvLibraryID); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.LibraryID
}

// GetLibraryType returns the library type, defaulting to a user library.
func GetLibraryType() string {
	if v := os.Getenv(EnvLibraryType); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	if cfg.LibraryType != "" {
		return cfg.LibraryType
	}
	return "user"
}

// GetDefaultCollection returns the collection new article citations join
// when no collection is named. Empty means none.
func GetDefaultCollection() string {
	if v := os.Getenv(EnvDefaultCollection); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.DefaultCollection
}

// GetListenAddr returns the tool server listen address.
func GetListenAddr() string {
	if v := os.Getenv(EnvListenAddr); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	if cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return DefaultListenAddr
}

// ErrMissingCredentials is returned when the API key or library ID is
// not configured anywhere.
var ErrMissingCredentials = errors.New("Zotero credentials not configured")

// Credentials returns the API key and library ID after validation.
// The error carries a setup hint for CLI surfaces to print verbatim.
func Credentials() (apiKey, libraryID string, err error) {
	apiKey = GetAPIKey()
	libraryID = GetLibraryID()
	if apiKey == "" || libraryID == "" {
		return "", "", fmt.Errorf("%w\n\n%s", ErrMissingCredentials, HelpfulConfigMessage())
	}
	return apiKey, libraryID, nil
}

// HelpfulConfigMessage returns a setup hint for missing credentials.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Set ZOTERO_API_KEY and ZOTERO_LIBRARY_ID in the environment or a .env file.

Tip: Create %s to store them instead:
  mkdir -p %s
  echo 'api_key: your-zotero-api-key' > %s
  echo 'library_id: "1234567"' >> %s

Create an API key at https://www.zotero.org/settings/keys`,
		configPath,
		filepath.Dir(configPath),
		configPath,
		configPath)
}
