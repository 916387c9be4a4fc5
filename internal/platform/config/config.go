package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config captures process-level configuration for the vault. Each store gets
// its own database file so the separation between PII and PHI is physical,
// not just logical.
type Config struct {
	DataDir string

	// IdentityPath, ClinicalPath, and AuditPath are derived from DataDir.
	IdentityPath string
	ClinicalPath string
	AuditPath    string

	// PseudonymRetries bounds collision retries when minting a pseudonym.
	PseudonymRetries int

	// AuditQueryLimit caps unfiltered audit queries.
	AuditQueryLimit int

	LogLevel string
}

const (
	defaultDataDir          = "./data"
	defaultPseudonymRetries = 5
	defaultAuditQueryLimit  = 1000
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	dataDir := os.Getenv("MEDVAULT_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	retries := intFromEnv("MEDVAULT_PSEUDONYM_RETRIES", defaultPseudonymRetries)
	limit := intFromEnv("MEDVAULT_AUDIT_QUERY_LIMIT", defaultAuditQueryLimit)

	logLevel := os.Getenv("MEDVAULT_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := Config{
		PseudonymRetries: retries,
		AuditQueryLimit:  limit,
		LogLevel:         logLevel,
	}
	return cfg.WithDataDir(dataDir)
}

// WithDataDir rederives the per-store paths under a new directory.
func (c Config) WithDataDir(dir string) Config {
	c.DataDir = dir
	c.IdentityPath = filepath.Join(dir, "identity.db")
	c.ClinicalPath = filepath.Join(dir, "clinical.db")
	c.AuditPath = filepath.Join(dir, "audit.db")
	return c
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
