package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fabricstore/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionCreateInput struct {
	CustomerName  string
	AdminUsername *string
	CreatedAt     *time.Time
	Lines         []domain.TransactionLineInput
}

type TransactionListFilter struct {
	Customer string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

const transactionColumns = `
	id::text,
	customer_name,
	created_at,
	total_transaction::double precision,
	admin_username
`

// CreateTransaction records a sale and takes the sold weight out of stock in
// one database transaction. A line without a price uses the fabric's price.
func (r *Repository) CreateTransaction(ctx context.Context, input TransactionCreateInput) (domain.Transaction, error) {
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return domain.Transaction{}, fmt.Errorf("customer_name is required")
	}
	if len(input.Lines) == 0 {
		return domain.Transaction{}, fmt.Errorf("line_items cannot be empty")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("begin transaction tx: %w", err)
	}
	defer tx.Rollback(ctx)

	record := domain.Transaction{
		ID:            uuid.NewString(),
		CustomerName:  customer,
		AdminUsername: input.AdminUsername,
		LineItems:     make([]domain.LineItem, 0, len(input.Lines)),
	}
	total := 0.0
	for _, line := range input.Lines {
		name := strings.TrimSpace(line.FabricName)
		if name == "" {
			return domain.Transaction{}, fmt.Errorf("fabric_name is required")
		}
		weight := domain.ParseWeight(line.Weight)
		if weight <= 0 {
			return domain.Transaction{}, fmt.Errorf("%q: %w", name, ErrBadWeight)
		}

		var (
			fabricID   int64
			fabricName string
			price      float64
		)
		err := tx.QueryRow(ctx, `
			SELECT id, fabric_name, price_per_kg::double precision
			FROM fabrics
			WHERE LOWER(TRIM(fabric_name)) = $1
			FOR UPDATE
		`, normalizeName(name)).Scan(&fabricID, &fabricName, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, fmt.Errorf("%s: %w", name, ErrNoFabric)
		}
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("load fabric %q for sale: %w", name, err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE fabrics
			SET stock_kg = stock_kg - $2, updated_at = NOW()
			WHERE id = $1
		`, fabricID, weight); err != nil {
			return domain.Transaction{}, fmt.Errorf("update stock for %q: %w", name, err)
		}

		if line.PricePerKg > 0 {
			price = line.PricePerKg
		}
		lineTotal := domain.Round2(weight * price)
		record.LineItems = append(record.LineItems, domain.LineItem{
			FabricName: fabricName,
			Weight:     strings.TrimSpace(line.Weight),
			PricePerKg: price,
			TotalPrice: lineTotal,
		})
		total += lineTotal
	}
	record.TotalTransaction = domain.Round2(total)

	if err := insertTransactionTx(ctx, tx, &record, input.CreatedAt); err != nil {
		return domain.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Transaction{}, fmt.Errorf("commit transaction tx: %w", err)
	}
	return record, nil
}

// ImportTransactions stores historical records as they are, without touching
// stock. Records whose id already exists are skipped.
func (r *Repository) ImportTransactions(ctx context.Context, records []domain.Transaction) (int, error) {
	inserted := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range records {
			record := records[i]
			if _, err := uuid.Parse(record.ID); err != nil {
				record.ID = uuid.NewString()
			}
			created := record.CreatedAt
			cmd, err := tx.Exec(ctx, `
				INSERT INTO transactions (id, customer_name, created_at, total_transaction, admin_username)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, record.ID, strings.TrimSpace(record.CustomerName), created, record.TotalTransaction, record.AdminUsername)
			if err != nil {
				return fmt.Errorf("insert imported transaction %s: %w", record.ID, err)
			}
			if cmd.RowsAffected() == 0 {
				continue
			}
			if err := insertItemsTx(ctx, tx, record.ID, record.LineItems); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertTransactionTx(ctx context.Context, tx pgx.Tx, record *domain.Transaction, createdAt *time.Time) error {
	if err := tx.QueryRow(ctx, `
		INSERT INTO transactions (id, customer_name, created_at, total_transaction, admin_username)
		VALUES ($1, $2, COALESCE($3, NOW()), $4, $5)
		RETURNING created_at
	`, record.ID, record.CustomerName, createdAt, record.TotalTransaction, record.AdminUsername).Scan(&record.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return insertItemsTx(ctx, tx, record.ID, record.LineItems)
}

func insertItemsTx(ctx context.Context, tx pgx.Tx, transactionID string, items []domain.LineItem) error {
	for position, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transaction_items (
				transaction_id,
				position,
				fabric_name,
				weight,
				price_per_kg,
				total_price
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, transactionID, position, strings.TrimSpace(item.FabricName), item.Weight, item.PricePerKg, item.TotalPrice); err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]domain.Transaction, error) {
	limit := normalizeLimit(filter.Limit)
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ($1 = '' OR customer_name ILIKE '%' || $1 || '%')
	`
	args := []any{strings.TrimSpace(filter.Customer)}
	idx := 2
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filter.From)
		idx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filter.To)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, normalizeOffset(filter.Offset))

	records, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := r.attachItems(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListTransactionsBetween loads every transaction created inside [start, end]
// together with its line items, oldest first.
func (r *Repository) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	records, err := r.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, id ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions between: %w", err)
	}
	if err := r.attachItems(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	records, err := r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	if err := r.attachItems(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// DeleteTransaction removes a sale and puts its weight back into stock.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT fabric_name, weight
			FROM transaction_items
			WHERE transaction_id = $1
			ORDER BY position ASC
		`, id)
		if err != nil {
			return fmt.Errorf("load items of %s: %w", id, err)
		}
		items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LineItem, error) {
			var item domain.LineItem
			err := row.Scan(&item.FabricName, &item.Weight)
			return item, err
		})
		if err != nil {
			return fmt.Errorf("scan items of %s: %w", id, err)
		}

		for _, item := range items {
			if _, err := tx.Exec(ctx, `
				UPDATE fabrics
				SET stock_kg = stock_kg + $2, updated_at = NOW()
				WHERE LOWER(TRIM(fabric_name)) = $1
			`, normalizeName(item.FabricName), item.WeightKg()); err != nil {
				return fmt.Errorf("restore stock for %q: %w", item.FabricName, err)
			}
		}

		cmd, err := tx.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			record domain.Transaction
			admin  sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&record.CustomerName,
			&record.CreatedAt,
			&record.TotalTransaction,
			&admin,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if admin.Valid {
			value := admin.String
			record.AdminUsername = &value
		}
		record.LineItems = []domain.LineItem{}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

func (r *Repository) attachItems(ctx context.Context, records []domain.Transaction) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, 0, len(records))
	index := make(map[string]int, len(records))
	for i, record := range records {
		ids = append(ids, record.ID)
		index[record.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			transaction_id::text,
			fabric_name,
			weight,
			price_per_kg::double precision,
			total_price::double precision
		FROM transaction_items
		WHERE transaction_id = ANY($1::uuid[])
		ORDER BY transaction_id, position ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			transactionID string
			item          domain.LineItem
		)
		if err := rows.Scan(&transactionID, &item.FabricName, &item.Weight, &item.PricePerKg, &item.TotalPrice); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		if i, ok := index[transactionID]; ok {
			records[i].LineItems = append(records[i].LineItems, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transaction items: %w", err)
	}
	return nil
}
