package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "OmniGovernance"

	// KeyringUser is the user identifier for credentials
	KeyringUser = "default"

	// KeyringDatabaseDSNItem is the key for the canonical database DSN
	KeyringDatabaseDSNItem = "database-dsn"

	// KeyringGitHubTokenItem is the key for GitHub token
	KeyringGitHubTokenItem = "github-token"
)

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SaveAPIKey stores the GitHub token securely in the OS keychain. Named
// SaveAPIKey/GetAPIKey for symmetry with the config loader's "the access
// token that unlocks GitHub enrichment" slot.
func (km *KeyringManager) SaveAPIKey(token string) error {
	return km.SetGitHubToken(token)
}

// GetAPIKey retrieves the GitHub token from the OS keychain.
func (km *KeyringManager) GetAPIKey() (string, error) {
	return km.GetGitHubToken()
}

// GetDatabaseDSN retrieves the canonical database DSN from the OS keychain.
func (km *KeyringManager) GetDatabaseDSN() (string, error) {
	dsn, err := keyring.Get(KeyringService, KeyringDatabaseDSNItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to get database dsn from keychain", "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	km.logger.Debug("database dsn retrieved from keychain")
	return dsn, nil
}

// SaveDatabaseDSN stores the canonical database DSN in the OS keychain.
func (km *KeyringManager) SaveDatabaseDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database dsn cannot be empty")
	}
	if err := keyring.Set(KeyringService, KeyringDatabaseDSNItem, dsn); err != nil {
		km.logger.Error("failed to save database dsn to keychain", "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("database dsn saved to keychain", "service", KeyringService)
	return nil
}

// GetGitHubToken retrieves GitHub token from OS keychain
func (km *KeyringManager) GetGitHubToken() (string, error) {
	token, err := keyring.Get(KeyringService, KeyringGitHubTokenItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to get github token from keychain", "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	km.logger.Debug("github token retrieved from keychain")
	return token, nil
}

// SetGitHubToken stores GitHub token securely in OS keychain
func (km *KeyringManager) SetGitHubToken(token string) error {
	if token == "" {
		return fmt.Errorf("github token cannot be empty")
	}
	if err := keyring.Set(KeyringService, KeyringGitHubTokenItem, token); err != nil {
		km.logger.Error("failed to save github token to keychain", "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("github token saved to keychain", "service", KeyringService)
	return nil
}

// DeleteGitHubToken removes GitHub token from OS keychain
func (km *KeyringManager) DeleteGitHubToken() error {
	err := keyring.Delete(KeyringService, KeyringGitHubTokenItem)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete github token from keychain", "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	km.logger.Info("github token deleted from keychain")
	return nil
}

// IsAvailable checks if OS keychain is available. Returns false on headless
// systems (CI) where no Secret Service / Keychain backend is registered.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.Debug("keychain not available", "error", err)
		return false
	}
	return true
}

// KeySourceInfo describes where a credential value came from.
type KeySourceInfo struct {
	Source      string // "keychain", "config", "env", "env_file", "none"
	Secure      bool
	Recommended string
}

// GetGitHubTokenSource determines where the GitHub token is coming from.
func (km *KeyringManager) GetGitHubTokenSource(cfg *Config) KeySourceInfo {
	if os.Getenv("GITHUB_TOKEN") != "" {
		return KeySourceInfo{Source: "env", Secure: true, Recommended: "using environment variable"}
	}
	if tok, _ := km.GetGitHubToken(); tok != "" {
		return KeySourceInfo{Source: "keychain", Secure: true, Recommended: "stored securely in OS keychain"}
	}
	if cfg.GitHub.Token != "" {
		return KeySourceInfo{Source: "config", Secure: false, Recommended: "plaintext config value; consider the keychain"}
	}
	if _, err := os.Stat(".env"); err == nil {
		return KeySourceInfo{Source: "env_file", Secure: false, Recommended: "using .env file"}
	}
	return KeySourceInfo{Source: "none", Secure: false, Recommended: "no github token configured"}
}

// MaskAPIKey masks a secret for display: first 7 chars and last 4 chars.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:7], apiKey[len(apiKey)-4:])
}
