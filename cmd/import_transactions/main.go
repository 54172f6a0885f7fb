// Command import_transactions loads historical sales, and optionally a stock
// sheet, from Excel workbooks into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fabricstore/internal/config"
	"fabricstore/internal/db"
	"fabricstore/internal/domain"
	"fabricstore/internal/excel"
	"fabricstore/internal/repository"
	"fabricstore/internal/service"
)

type options struct {
	transactionsPath string
	stockPath        string
	dryRun           bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var stockRows []domain.FabricImportRow
	if opts.stockPath != "" {
		stockRows, err = readStockRows(opts.stockPath)
		if err != nil {
			log.Fatalf("read stock file: %v", err)
		}
	}
	records, err := readTransactions(opts.transactionsPath, cfg.Location)
	if err != nil {
		log.Fatalf("read transactions file: %v", err)
	}
	summarize(records)

	if opts.dryRun {
		log.Printf("dry run: stock=%d transactions=%d, nothing written", len(stockRows), len(records))
		return
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.Location)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	svc := service.New(repository.New(pool), service.Options{Location: cfg.Location, Locale: cfg.MonthLocale})
	if len(stockRows) > 0 {
		created, updated, err := svc.ImportFabrics(ctx, stockRows)
		if err != nil {
			log.Fatalf("import stock: %v", err)
		}
		log.Printf("stock import complete: created=%d updated=%d", created, updated)
	}

	inserted, err := svc.ImportTransactions(ctx, records)
	if err != nil {
		log.Fatalf("import transactions: %v", err)
	}
	log.Printf("import complete: transactions=%d inserted=%d skipped=%d", len(records), inserted, len(records)-inserted)
}

func parseFlags() options {
	var opts options
	flag.StringVar(
		&opts.transactionsPath,
		"transactions",
		"transactions.xlsx",
		"path to the sales workbook (one line item per row)",
	)
	flag.StringVar(
		&opts.stockPath,
		"stock",
		"",
		"optional path to a fabric stock workbook imported first",
	)
	flag.BoolVar(
		&opts.dryRun,
		"dry-run",
		false,
		"parse and summarize the files without touching the database",
	)
	flag.Parse()
	return opts
}

func readStockRows(path string) ([]domain.FabricImportRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := excel.ParseFabricRows(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func readTransactions(path string, loc *time.Location) ([]domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	records, err := excel.ParseTransactionRows(file, loc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func summarize(records []domain.Transaction) {
	if len(records) == 0 {
		return
	}
	first, last := records[0].CreatedAt, records[0].CreatedAt
	items := 0
	for _, record := range records {
		if record.CreatedAt.Before(first) {
			first = record.CreatedAt
		}
		if record.CreatedAt.After(last) {
			last = record.CreatedAt
		}
		items += len(record.LineItems)
	}
	log.Printf(
		"parsed %d transactions with %d line items from %s to %s",
		len(records),
		items,
		first.Format("2006-01-02"),
		last.Format("2006-01-02"),
	)
}
