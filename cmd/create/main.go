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

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	beneficiaryFlag := flag.String("beneficiary", "", "Beneficiary identity (required)")
	amountFlag := flag.String("amount", "", "Deposit amount (required)")
	durationFlag := flag.String("duration", "", "Lock duration, e.g. 8760h (required)")
	descriptionFlag := flag.String("description", "", "Free-form record description")
	callerFlag := flag.String("caller", "", "Caller identity (defaults to the configured admin)")
	flag.Parse()

	if *beneficiaryFlag == "" || *amountFlag == "" || *durationFlag == "" {
		logger.Fatal("Flags -beneficiary, -amount and -duration are required")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}
	lockDuration, err := time.ParseDuration(*durationFlag)
	if err != nil {
		logger.Fatal("Invalid duration", zap.String("duration", *durationFlag), zap.Error(err))
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

	recordId, err := services.Vault.Create(ctx, store.CreateParams{
		Caller:       caller,
		Beneficiary:  *beneficiaryFlag,
		Amount:       amount,
		LockDuration: lockDuration,
		Description:  *descriptionFlag,
	})
	if err != nil {
		logger.Fatal("Failed to create record", zap.Error(err))
	}

	details, err := services.Vault.GetDetails(ctx, recordId)
	if err != nil {
		logger.Fatal("Failed to read back record", zap.Error(err))
	}

	common.PrintHeader("RECORD CREATED", common.DefaultWidth)
	fmt.Printf("Record ID:    %d\n", details.Id)
	fmt.Printf("Beneficiary:  %s\n", details.Beneficiary)
	fmt.Printf("Amount:       %s\n", details.Amount.String())
	fmt.Printf("Unlocks at:   %s\n", time.Unix(details.UnlockTime, 0).UTC().Format(time.RFC3339))
	if details.Description != "" {
		fmt.Printf("Description:  %s\n", details.Description)
	}
	common.PrintFooter(fmt.Sprintf("Locked for %s", lockDuration), common.DefaultWidth)

	logger.Info("Record created",
		zap.Int64("record_id", recordId),
		zap.String("beneficiary", details.Beneficiary),
		zap.String("amount", details.Amount.String()),
		zap.Int64("unlock_time", details.UnlockTime))
}
