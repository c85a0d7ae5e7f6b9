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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"inheritance-vault-go/internal/common"
	"inheritance-vault-go/internal/config"
	"inheritance-vault-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func seedRecords(ctx context.Context, services *common.Services, admin, seedFile string, logger *zap.Logger) (int, error) {
	records, err := common.LoadSeedConfig(seedFile)
	if err != nil {
		return 0, fmt.Errorf("failed to load seed file: %w", err)
	}

	created := 0
	for _, seed := range records {
		amount, err := decimal.NewFromString(seed.Amount)
		if err != nil {
			return created, fmt.Errorf("invalid seed amount %q: %w", seed.Amount, err)
		}
		lockDuration, err := time.ParseDuration(seed.LockDuration)
		if err != nil {
			return created, fmt.Errorf("invalid seed lock_duration %q: %w", seed.LockDuration, err)
		}

		recordId, err := services.Vault.Create(ctx, store.CreateParams{
			Caller:       admin,
			Beneficiary:  seed.Beneficiary,
			Amount:       amount,
			LockDuration: lockDuration,
			Description:  seed.Description,
		})
		if err != nil {
			return created, fmt.Errorf("failed to create seed record for %s: %w", seed.Beneficiary, err)
		}

		logger.Info("Seed record created",
			zap.Int64("record_id", recordId),
			zap.String("beneficiary", seed.Beneficiary),
			zap.String("amount", amount.String()))
		created++
	}

	return created, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	adminFlag := flag.String("admin", "", "Initial admin identity (overrides VAULT_ADMIN)")
	seedFlag := flag.String("seed", "", "YAML seed file of records to create (overrides VAULT_SEED_FILE)")
	flag.Parse()

	logger.Info("Starting vault setup")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *adminFlag != "" {
		cfg.Vault.Admin = *adminFlag
	}
	if *seedFlag != "" {
		cfg.Vault.SeedFile = *seedFlag
	}

	logger.Info("Initializing vault database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize vault", zap.Error(err))
	}
	defer services.Close()

	admin, err := services.Vault.Admin(ctx)
	if err != nil {
		logger.Fatal("Failed to read admin identity", zap.Error(err))
	}

	seeded := 0
	if cfg.Vault.SeedFile != "" {
		seeded, err = seedRecords(ctx, services, admin, cfg.Vault.SeedFile, logger)
		if err != nil {
			logger.Fatal("Failed to seed records", zap.Error(err))
		}
	}

	total, err := services.Vault.TotalRecords(ctx)
	if err != nil {
		logger.Fatal("Failed to count records", zap.Error(err))
	}

	common.PrintHeader("VAULT SETUP", common.DefaultWidth)
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Printf("Admin:    %s\n", admin)
	fmt.Printf("Records:  %d total (%d seeded this run)\n", total, seeded)
	common.PrintFooter("Vault ready", common.DefaultWidth)

	logger.Info("Vault setup completed",
		zap.String("admin", admin),
		zap.Int64("total_records", total),
		zap.Int("seeded", seeded))
}
