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

	"inheritance-vault-go/internal/common"
	"inheritance-vault-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	idFlag := flag.Int64("id", -1, "Record identifier (required)")
	callerFlag := flag.String("caller", "", "Claiming beneficiary identity (required)")
	flag.Parse()

	if *idFlag < 0 || *callerFlag == "" {
		logger.Fatal("Flags -id and -caller are required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize vault", zap.Error(err))
	}
	defer services.Close()

	ready, err := services.Vault.IsReadyToClaim(ctx, *idFlag)
	if err != nil {
		logger.Fatal("Failed to check record", zap.Int64("record_id", *idFlag), zap.Error(err))
	}
	if !ready {
		details, err := services.Vault.GetDetails(ctx, *idFlag)
		if err != nil {
			logger.Fatal("Failed to read record", zap.Int64("record_id", *idFlag), zap.Error(err))
		}
		logger.Fatal("Record is not ready to claim",
			zap.Int64("record_id", *idFlag),
			zap.Bool("claimed", details.Claimed),
			zap.Int64("time_remaining_seconds", details.TimeRemaining))
	}

	amount, err := services.Vault.Claim(ctx, *idFlag, *callerFlag)
	if err != nil {
		logger.Fatal("Claim failed", zap.Int64("record_id", *idFlag), zap.Error(err))
	}

	common.PrintHeader("RECORD CLAIMED", common.DefaultWidth)
	fmt.Printf("Record ID:   %d\n", *idFlag)
	fmt.Printf("Claimed by:  %s\n", *callerFlag)
	fmt.Printf("Amount:      %s\n", amount.String())
	common.PrintFooter("Transfer completed", common.DefaultWidth)

	logger.Info("Claim completed",
		zap.Int64("record_id", *idFlag),
		zap.String("caller", *callerFlag),
		zap.String("amount", amount.String()))
}
