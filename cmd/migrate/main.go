// One-time schema migration from the legacy single-ticker database
// (tables tqqq_prices / crossover_signals without a ticker column) to the
// current multi-ticker schema. Existing rows are stamped with the ticker
// given by -ticker, since legacy databases only ever held one symbol.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"CrossWatch/internal/config"
	"CrossWatch/internal/store"

	_ "modernc.org/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags)

	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	dbPath := flag.String("db", "", "database path (overrides config)")
	ticker := flag.String("ticker", "TQQQ", "ticker to stamp legacy rows with")
	dryRun := flag.Bool("dry-run", false, "preview changes without modifying the database")
	rollback := flag.Bool("rollback", false, "restore the most recent pre-migration backup")
	flag.Parse()

	path := *dbPath
	if path == "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("[FATAL] load config: %v", err)
		}
		path = cfg.Database.SQLitePath
	}

	if *rollback {
		if err := restoreBackup(path); err != nil {
			log.Fatalf("[FATAL] rollback: %v", err)
		}
		log.Println("[INFO] rollback complete")
		return
	}

	if err := migrate(path, strings.ToUpper(*ticker), *dryRun); err != nil {
		log.Fatalf("[FATAL] migration: %v", err)
	}
}

func migrate(path, ticker string, dryRun bool) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	legacyPrices, err := tableExists(db, "tqqq_prices")
	if err != nil {
		return err
	}
	legacySignals, longCol, err := legacySignalsInfo(db)
	if err != nil {
		return err
	}
	if !legacyPrices && !legacySignals {
		log.Println("[INFO] migration not needed - no legacy tables found")
		return nil
	}

	var priceCount, signalCount int
	if legacyPrices {
		if err := db.QueryRow(`SELECT COUNT(*) FROM tqqq_prices`).Scan(&priceCount); err != nil {
			return fmt.Errorf("count legacy prices: %w", err)
		}
	}
	if legacySignals {
		if err := db.QueryRow(`SELECT COUNT(*) FROM crossover_signals`).Scan(&signalCount); err != nil {
			return fmt.Errorf("count legacy signals: %w", err)
		}
	}
	log.Printf("[INFO] found %d legacy price records and %d legacy signal records", priceCount, signalCount)

	if dryRun {
		log.Println("[INFO] DRY RUN - no changes will be made")
		log.Printf("[INFO] would migrate %d price records with ticker=%s", priceCount, ticker)
		log.Printf("[INFO] would migrate %d signal records with ticker=%s", signalCount, ticker)
		return nil
	}

	backup, err := backupDatabase(path)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	log.Printf("[INFO] backup created: %s", backup)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Move legacy tables out of the way so the current schema can be
	// created under its canonical names.
	if legacyPrices {
		if _, err := tx.Exec(`ALTER TABLE tqqq_prices RENAME TO prices_legacy`); err != nil {
			return fmt.Errorf("rename legacy prices: %w", err)
		}
	}
	if legacySignals {
		if _, err := tx.Exec(`ALTER TABLE crossover_signals RENAME TO signals_legacy`); err != nil {
			return fmt.Errorf("rename legacy signals: %w", err)
		}
	}

	for _, stmt := range store.SchemaStmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if legacyPrices {
		if _, err := tx.Exec(`INSERT INTO prices (ticker, date, open, high, low, close, adj_close, volume)
			SELECT ?, date, open, high, low, close, adj_close, volume FROM prices_legacy`, ticker); err != nil {
			return fmt.Errorf("copy prices: %w", err)
		}
		if _, err := tx.Exec(`DROP TABLE prices_legacy`); err != nil {
			return fmt.Errorf("drop legacy prices: %w", err)
		}
	}
	if legacySignals {
		copyStmt := fmt.Sprintf(`INSERT INTO crossover_signals (ticker, date, signal_type, close_price, ma_short, ma_long, created_at)
			SELECT ?, date, signal_type, close_price, ma5, %s, created_at FROM signals_legacy`, longCol)
		if _, err := tx.Exec(copyStmt, ticker); err != nil {
			return fmt.Errorf("copy signals: %w", err)
		}
		if _, err := tx.Exec(`DROP TABLE signals_legacy`); err != nil {
			return fmt.Errorf("drop legacy signals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Printf("[INFO] migrated %d price records and %d signal records with ticker=%s", priceCount, signalCount, ticker)
	return nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// legacySignalsInfo reports whether a crossover_signals table exists in its
// pre-migration shape (no ticker column), and which long-MA column spelling
// it carries: old databases named it ma20, later single-ticker ones ma30.
func legacySignalsInfo(db *sql.DB) (bool, string, error) {
	exists, err := tableExists(db, "crossover_signals")
	if err != nil || !exists {
		return false, "", err
	}
	cols, err := columnNames(db, "crossover_signals")
	if err != nil {
		return false, "", err
	}

	longCol := "ma20"
	for _, c := range cols {
		switch c {
		case "ticker":
			return false, "", nil
		case "ma30":
			longCol = "ma30"
		}
	}
	return true, longCol, nil
}

func columnNames(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func backupDatabase(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(path)
	backup := fmt.Sprintf("%s_backup_%s%s", strings.TrimSuffix(path, ext), time.Now().Format("20060102_150405"), ext)
	dst, err := os.Create(backup)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return backup, nil
}

func restoreBackup(path string) error {
	ext := filepath.Ext(path)
	pattern := fmt.Sprintf("%s_backup_*%s", strings.TrimSuffix(path, ext), ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup found matching %s", pattern)
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	data, err := os.ReadFile(latest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Printf("[INFO] restored %s from %s", path, latest)
	return nil
}
