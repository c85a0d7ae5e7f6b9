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

const (
	// Record queries
	queryNextRecordId = `
		SELECT COALESCE(MAX(id) + 1, 0) FROM records`

	queryInsertRecord = `
		INSERT INTO records (id, beneficiary, amount, unlock_time, claimed, description, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`

	queryGetRecord = `
		SELECT id, beneficiary, amount, unlock_time, claimed, description, created_at
		FROM records
		WHERE id = ?`

	queryMarkClaimed = `
		UPDATE records
		SET claimed = 1
		WHERE id = ? AND claimed = 0`

	queryCountRecords = `
		SELECT COUNT(*) FROM records`

	// Beneficiary index queries
	queryAppendIndexEntry = `
		INSERT INTO beneficiary_index (beneficiary, position, record_id)
		VALUES (?, (SELECT COALESCE(MAX(position) + 1, 0) FROM beneficiary_index WHERE beneficiary = ?), ?)`

	queryListByBeneficiary = `
		SELECT record_id
		FROM beneficiary_index
		WHERE beneficiary = ?
		ORDER BY position`

	// Treasury queries
	queryGetTreasuryBalance = `
		SELECT balance FROM treasury WHERE id = 1`

	queryUpdateTreasuryBalance = `
		UPDATE treasury
		SET balance = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`

	// Admin slot queries
	queryGetAdmin = `
		SELECT identity FROM vault_admin WHERE id = 1`

	queryInitAdmin = `
		INSERT OR IGNORE INTO vault_admin (id, identity) VALUES (1, ?)`

	queryUpdateAdmin = `
		UPDATE vault_admin
		SET identity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND identity = ?`

	// Event log queries
	queryInsertEvent = `
		INSERT INTO events (
			id, kind, record_id, beneficiary, amount, unlock_time,
			description, previous_admin, new_admin, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetEvents = `
		SELECT seq, id, kind, record_id, beneficiary, amount, unlock_time,
		       description, previous_admin, new_admin, created_at
		FROM events
		ORDER BY seq`
)
