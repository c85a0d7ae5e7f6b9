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

	newAdminFlag := flag.String("new", "", "New admin identity (required)")
	callerFlag := flag.String("caller", "", "Current admin identity (defaults to the configured admin)")
	flag.Parse()

	if *newAdminFlag == "" {
		logger.Fatal("Flag -new is required")
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

	if err := services.Vault.TransferAdmin(ctx, *newAdminFlag, caller); err != nil {
		logger.Fatal("Admin transfer failed", zap.Error(err))
	}

	common.PrintHeader("ADMIN TRANSFERRED", common.DefaultWidth)
	fmt.Printf("Previous:  %s\n", caller)
	fmt.Printf("New:       %s\n", *newAdminFlag)
	common.PrintFooter("Authority handed over", common.DefaultWidth)

	logger.Info("Admin transfer completed",
		zap.String("previous_admin", caller),
		zap.String("new_admin", *newAdminFlag))
}
