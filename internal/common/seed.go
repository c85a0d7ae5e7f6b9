package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// SeedRecord describes one inheritance record to create at setup time.
type SeedRecord struct {
	Beneficiary  string `yaml:"beneficiary"`
	Amount       string `yaml:"amount"`
	LockDuration string `yaml:"lock_duration"` // Go duration string, e.g. "8760h"
	Description  string `yaml:"description"`
}

// SeedConfig is the YAML layout of a vault seed file.
type SeedConfig struct {
	Records []SeedRecord `yaml:"records"`
}

// LoadSeedConfig reads and validates a vault seed file.
func LoadSeedConfig(seedFile string) ([]SeedRecord, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, record := range config.Records {
		if record.Beneficiary == "" {
			return nil, fmt.Errorf("seed record at index %d missing beneficiary", i)
		}
		if record.Amount == "" {
			return nil, fmt.Errorf("seed record at index %d missing amount", i)
		}
		if _, err := time.ParseDuration(record.LockDuration); err != nil {
			return nil, fmt.Errorf("seed record at index %d has invalid lock_duration %q: %w", i, record.LockDuration, err)
		}
	}

	return config.Records, nil
}
