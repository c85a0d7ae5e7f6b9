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
	callerFlag := flag.String("caller", "", "Admin identity (defaults to the configured admin)")
	flag.Parse()

	if *idFlag < 0 {
		logger.Fatal("Flag -id is required")
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

	caller := *callerFlag
	if caller == "" {
		caller, err = services.Vault.Admin(ctx)
		if err != nil {
			logger.Fatal("Failed to read admin identity", zap.Error(err))
		}
	}

	amount, err := services.Vault.EmergencyWithdraw(ctx, *idFlag, caller)
	if err != nil {
		logger.Fatal("Emergency withdrawal failed", zap.Int64("record_id", *idFlag), zap.Error(err))
	}

	common.PrintHeader("EMERGENCY WITHDRAWAL", common.DefaultWidth)
	fmt.Printf("Record ID:  %d\n", *idFlag)
	fmt.Printf("Recipient:  %s\n", caller)
	fmt.Printf("Amount:     %s\n", amount.String())
	common.PrintFooter("Transfer completed", common.DefaultWidth)

	logger.Info("Emergency withdrawal completed",
		zap.Int64("record_id", *idFlag),
		zap.String("caller", caller),
		zap.String("amount", amount.String()))
}
