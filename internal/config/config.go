package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the governance instrument.
type Config struct {
	// Sandbox, when true, redirects scan and audit artifacts to the
	// omni/artifacts-sandbox scratch directory instead of ArtifactsDir.
	Sandbox bool `yaml:"sandbox"`

	Cartography CartographyConfig `yaml:"cartography"`
	Database    DatabaseConfig    `yaml:"database"`
	GitHub      GitHubConfig      `yaml:"github"`
	Cache       CacheConfig       `yaml:"cache"`
	Identity    IdentityConfig    `yaml:"identity"`
	Guard       GuardConfig       `yaml:"guard"`
	Aggregation AggregationConfig `yaml:"aggregation"`
}

// CartographyConfig locates the federation's infrastructure root when the
// cartography pillar itself is unavailable.
type CartographyConfig struct {
	InfrastructureRoot string `yaml:"infrastructure_root"`
}

// DatabaseConfig configures the canonical projects/agents database (CMP).
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	HealthCheckOnly bool          `yaml:"health_check_only"`
}

// GitHubConfig configures the GitHub inventory enrichment source.
type GitHubConfig struct {
	Token     string `yaml:"token"`
	Org       string `yaml:"org"`
	RateLimit int    `yaml:"rate_limit"` // requests per second
	UseGHCli  bool   `yaml:"use_gh_cli"` // fall back to `gh` CLI when no token
}

// CacheConfig configures the cold-fallback JSON mirror tier of the data
// access layer.
type CacheConfig struct {
	Directory string        `yaml:"directory"`
	TTL       time.Duration `yaml:"ttl"`
	MaxSize   int64         `yaml:"max_size"`
}

// IdentityConfig configures the C4 identity reconciliation engine.
type IdentityConfig struct {
	OverridesPath     string   `yaml:"overrides_path"`
	ExclusionsPath    string   `yaml:"exclusions_path"`
	LegacyRegistryDir string   `yaml:"legacy_registry_dir"`
	ProvenanceRules   []string `yaml:"provenance_rules"`
}

// GuardConfig configures the C5 degradation guard.
type GuardConfig struct {
	MaxDropRatio float64 `yaml:"max_drop_ratio"` // refusal threshold, e.g. 0.5 == refuse when new count < 50% of old
	Force        bool    `yaml:"force"`          // bypass the guard entirely
}

// AggregationConfig configures the C5 fan-out pipeline.
type AggregationConfig struct {
	MaxWorkers   int           `yaml:"max_workers"`
	ScannerTimeout time.Duration `yaml:"scanner_timeout"`
	ArtifactsDir string        `yaml:"artifacts_dir"`
}

// Default returns default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Sandbox: false,
		Cartography: CartographyConfig{
			InfrastructureRoot: "",
		},
		Database: DatabaseConfig{
			ConnectTimeout: 5 * time.Second,
		},
		GitHub: GitHubConfig{
			RateLimit: 10,
			UseGHCli:  true,
		},
		Cache: CacheConfig{
			Directory: filepath.Join(homeDir, ".omni", "cache"),
			TTL:       24 * time.Hour,
			MaxSize:   512 * 1024 * 1024,
		},
		Identity: IdentityConfig{
			OverridesPath:     "governance/registry/uuid/overrides.yaml",
			ExclusionsPath:    "governance/registry/EXCLUSION_LIST_V1.yaml",
			LegacyRegistryDir: "governance/registry/uuid",
			ProvenanceRules:   DefaultProvenanceRules(),
		},
		Guard: GuardConfig{
			MaxDropRatio: 0.5,
			Force:        false,
		},
		Aggregation: AggregationConfig{
			MaxWorkers:     0, // 0 == NumCPU()*2, resolved at construction
			ScannerTimeout: 2 * time.Minute,
			ArtifactsDir:   "omni/artifacts",
		},
	}
}

// DefaultProvenanceRules returns the built-in, portable path substrings used
// to classify a file's provenance when auditing registry drift. These are
// deliberately generic rather than tied to any one federation's directory
// naming.
func DefaultProvenanceRules() []string {
	return []string{
		"governance/registry/",
		"omni/artifacts/",
		".cache/",
	}
}

// Load loads configuration from file, then environment, matching the
// teacher's viper+godotenv cascade.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("sandbox", cfg.Sandbox)
	v.SetDefault("cartography", cfg.Cartography)
	v.SetDefault("database", cfg.Database)
	v.SetDefault("github", cfg.GitHub)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("identity", cfg.Identity)
	v.SetDefault("guard", cfg.Guard)
	v.SetDefault("aggregation", cfg.Aggregation)

	v.SetEnvPrefix("OMNI")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("omni")
		v.AddConfigPath(".omni")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".omni"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadEnvFiles() {
	envFiles := []string{".env.local", ".env", ".env.example"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err == nil {
				continue
			}
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".omni", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config. Two
// env vars are load-bearing for the whole instrument: OMNI_INFRASTRUCTURE_ROOT
// (cartography fallback) and OMNI_SANDBOX (artifact redirection).
func applyEnvOverrides(cfg *Config) {
	if root := os.Getenv("OMNI_INFRASTRUCTURE_ROOT"); root != "" {
		cfg.Cartography.InfrastructureRoot = expandPath(root)
	}
	if sandbox := os.Getenv("OMNI_SANDBOX"); sandbox != "" {
		cfg.Sandbox = sandbox == "true" || sandbox == "1"
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	} else if cfg.GitHub.Token == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if tok, err := km.GetAPIKey(); err == nil && tok != "" {
				cfg.GitHub.Token = tok
			}
		}
	}
	if org := os.Getenv("GITHUB_ORG"); org != "" {
		cfg.GitHub.Org = org
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rate, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = rate
		}
	}

	if dsn := os.Getenv("OMNI_DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	} else if cfg.Database.DSN == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if dsn, err := km.GetDatabaseDSN(); err == nil && dsn != "" {
				cfg.Database.DSN = dsn
			}
		}
	}

	if dir := os.Getenv("OMNI_CACHE_DIRECTORY"); dir != "" {
		cfg.Cache.Directory = expandPath(dir)
	}
	if size := os.Getenv("OMNI_CACHE_MAX_SIZE"); size != "" {
		if sizeInt, err := strconv.ParseInt(size, 10, 64); err == nil {
			cfg.Cache.MaxSize = sizeInt
		}
	}

	if force := os.Getenv("OMNI_GUARD_FORCE"); force != "" {
		cfg.Guard.Force = force == "true" || force == "1"
	}
	if ratio := os.Getenv("OMNI_GUARD_MAX_DROP_RATIO"); ratio != "" {
		if r, err := strconv.ParseFloat(ratio, 64); err == nil {
			cfg.Guard.MaxDropRatio = r
		}
	}

	if workers := os.Getenv("OMNI_AGGREGATION_MAX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			cfg.Aggregation.MaxWorkers = w
		}
	}
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("sandbox", c.Sandbox)
	v.Set("cartography", c.Cartography)
	v.Set("database", c.Database)
	v.Set("github", c.GitHub)
	v.Set("cache", c.Cache)
	v.Set("identity", c.Identity)
	v.Set("guard", c.Guard)
	v.Set("aggregation", c.Aggregation)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
