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
	"inheritance-vault-go/internal/database"
	"inheritance-vault-go/internal/models"

	"go.uber.org/zap"
)

type recordStats struct {
	beneficiaries int
	totalRecords  int
	claimed       int
}

func listBeneficiaries(ctx context.Context, vault *database.Service, filter string) ([]string, error) {
	if filter != "" {
		return []string{filter}, nil
	}

	// The Created events carry every beneficiary in first-seen order.
	events, err := vault.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	seen := make(map[string]bool)
	var beneficiaries []string
	for _, event := range events {
		if event.Kind != models.EventCreated || seen[event.Beneficiary] {
			continue
		}
		seen[event.Beneficiary] = true
		beneficiaries = append(beneficiaries, event.Beneficiary)
	}
	return beneficiaries, nil
}

func printRecord(details *models.RecordDetails, isLast bool) {
	status := "locked"
	if details.Claimed {
		status = "claimed"
	} else if details.TimeRemaining == 0 {
		status = "claimable"
	}

	fmt.Printf("%s #%-4d %12s  %-9s unlocks %s",
		common.BoxPrefix(isLast),
		details.Id,
		details.Amount.String(),
		status,
		time.Unix(details.UnlockTime, 0).UTC().Format("2006-01-02 15:04:05"))
	if details.Description != "" {
		fmt.Printf("  (%s)", details.Description)
	}
	fmt.Println()
}

func processBeneficiary(ctx context.Context, vault *database.Service, beneficiary string, stats *recordStats) error {
	recordIds, err := vault.ListByBeneficiary(ctx, beneficiary)
	if err != nil {
		return err
	}
	if len(recordIds) == 0 {
		return nil
	}

	stats.beneficiaries++
	fmt.Printf("\n┌─ Beneficiary: %s\n", beneficiary)
	fmt.Printf("│  Records: %d\n", len(recordIds))
	common.PrintBoxSeparator(78)

	for i, recordId := range recordIds {
		details, err := vault.GetDetails(ctx, recordId)
		if err != nil {
			return err
		}
		stats.totalRecords++
		if details.Claimed {
			stats.claimed++
		}
		printRecord(details, i == len(recordIds)-1)
	}
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	beneficiaryFlag := flag.String("beneficiary", "", "Filter by specific beneficiary (optional)")
	flag.Parse()

	logger.Info("Starting record report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize vault", zap.Error(err))
	}
	defer services.Close()

	beneficiaries, err := listBeneficiaries(ctx, services.Vault, *beneficiaryFlag)
	if err != nil {
		logger.Fatal("Failed to list beneficiaries", zap.Error(err))
	}

	common.PrintHeader("INHERITANCE RECORD REPORT", common.DefaultWidth)

	stats := recordStats{}
	for _, beneficiary := range beneficiaries {
		if err := processBeneficiary(ctx, services.Vault, beneficiary, &stats); err != nil {
			logger.Error("Failed to process beneficiary",
				zap.String("beneficiary", beneficiary),
				zap.Error(err))
		}
	}

	balance, err := services.Vault.StoreBalance(ctx)
	if err != nil {
		logger.Fatal("Failed to read store balance", zap.Error(err))
	}

	summary := fmt.Sprintf("SUMMARY: %d records across %d beneficiaries (%d claimed), store balance %s",
		stats.totalRecords, stats.beneficiaries, stats.claimed, balance.String())
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Record report completed",
		zap.Int("beneficiaries", stats.beneficiaries),
		zap.Int("records", stats.totalRecords),
		zap.Int("claimed", stats.claimed))
}
