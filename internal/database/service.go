/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"
	"inheritance-vault-go/internal/treasury"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.VaultStore.
var _ store.VaultStore = (*Service)(nil)

type Service struct {
	db    *sql.DB
	payer treasury.Payer
	now   func() time.Time
}

// NewService opens (or creates) the vault database. The admin identity is used
// only when the store has never been initialized; an existing admin slot wins.
func NewService(ctx context.Context, cfg models.DatabaseConfig, admin string, payer treasury.Payer) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if payer == nil {
		return nil, fmt.Errorf("treasury payer is required")
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db, payer: payer, now: time.Now}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if err := service.initAdmin(ctx, admin); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, err
	}

	zap.L().Info("Vault database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Inheritance records, identified 0..N-1 in creation order
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY,
		beneficiary TEXT NOT NULL,
		amount TEXT NOT NULL,
		unlock_time INTEGER NOT NULL,
		claimed INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Create index on beneficiary for record lookups
	CREATE INDEX IF NOT EXISTS idx_records_beneficiary ON records(beneficiary);
	-- Create index on unclaimed records
	CREATE INDEX IF NOT EXISTS idx_records_claimed ON records(claimed);

	-- Append-only per-beneficiary index: one entry per record, in creation order
	CREATE TABLE IF NOT EXISTS beneficiary_index (
		beneficiary TEXT NOT NULL,
		position INTEGER NOT NULL,
		record_id INTEGER NOT NULL UNIQUE REFERENCES records(id),
		PRIMARY KEY (beneficiary, position)
	);

	-- Custody accounting for value held by the store, credited and debited
	-- in the same transaction as the operation that moves the value
	CREATE TABLE IF NOT EXISTS treasury (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		balance TEXT NOT NULL DEFAULT '0',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO treasury (id, balance) VALUES (1, '0');

	-- Single admin identity slot, never empty once initialized
	CREATE TABLE IF NOT EXISTS vault_admin (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		identity TEXT NOT NULL CHECK (identity != ''),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Append-only event log, written atomically with its operation
	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		record_id INTEGER NOT NULL DEFAULT -1,
		beneficiary TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '0',
		unlock_time INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		previous_admin TEXT NOT NULL DEFAULT '',
		new_admin TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Create index for event lookups by kind and record
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_record_id ON events(record_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// initAdmin seeds the admin slot on first initialization. An already
// initialized store keeps its current admin regardless of the argument.
func (s *Service) initAdmin(ctx context.Context, admin string) error {
	var current string
	err := s.db.QueryRowContext(ctx, queryGetAdmin).Scan(&current)
	if err == nil {
		if admin != "" && admin != current {
			zap.L().Info("Admin slot already initialized, keeping current admin",
				zap.String("admin", current))
		}
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to read admin slot: %w", err)
	}

	if admin == "" {
		return fmt.Errorf("%w: initial admin identity is required", store.ErrInvalidArgument)
	}
	if _, err := s.db.ExecContext(ctx, queryInitAdmin, admin); err != nil {
		return fmt.Errorf("failed to initialize admin slot: %w", err)
	}

	zap.L().Info("Admin slot initialized", zap.String("admin", admin))
	return nil
}
