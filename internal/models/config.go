package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Vault    VaultConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// VaultConfig holds vault-level settings
type VaultConfig struct {
	Admin    string // initial admin identity, used only when the store has none yet
	SeedFile string // optional YAML file of records to create at setup
}
