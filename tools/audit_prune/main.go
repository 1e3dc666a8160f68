// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// This is a housekeeping utility that trims old entries from a vault's audit
// log. The log grows without bound; pruning keeps the history to a retention
// window without touching credentials or vault metadata.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/toeirei/vaultmaster/internal/db"
	"github.com/uptrace/bun"
)

const defaultRetentionDays = 90

func main() {
	retention := defaultRetentionDays
	if len(os.Args) > 1 {
		days, err := strconv.Atoi(os.Args[1])
		if err != nil || days < 1 {
			log.Fatalf("Usage: audit_prune [days]; got %q", os.Args[1])
		}
		retention = days
	}

	store, err := db.New("sqlite", "vaultmaster.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()
	bdb := store.(*db.BunStore).BunDB()
	ctx := context.Background()

	cutoff := time.Now().UTC().AddDate(0, 0, -retention).Format("2006-01-02 15:04:05")
	pruned, remaining, err := pruneBefore(ctx, bdb, cutoff)
	if err != nil {
		log.Fatalf("Failed to prune audit log: %v", err)
	}

	if pruned == 0 {
		fmt.Printf("✓ No audit entries older than %d day(s). Nothing to prune.\n", retention)
		return
	}
	fmt.Printf("✓ Removed %d audit entry(s) older than %d day(s); %d remain.\n", pruned, retention, remaining)
}

// pruneBefore deletes audit entries with a timestamp before cutoff and
// returns how many were removed and how many remain. The cutoff uses the
// same "2006-01-02 15:04:05" shape SQLite stores, so string comparison
// orders correctly.
func pruneBefore(ctx context.Context, bdb *bun.DB, cutoff string) (int64, int, error) {
	res, err := db.ExecRaw(ctx, bdb, "DELETE FROM audit_log WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, 0, err
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	var remaining int
	if err := db.QueryRawInto(ctx, bdb, &remaining, "SELECT COUNT(*) FROM audit_log"); err != nil {
		return pruned, 0, err
	}
	return pruned, remaining, nil
}
