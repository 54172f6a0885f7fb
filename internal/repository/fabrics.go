package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fabricstore/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type FabricListFilter struct {
	Search string
	Limit  int
	Offset int
}

type FabricCreateInput struct {
	FabricName string
	Color      *string
	PricePerKg float64
	StockKg    float64
	AlarmKg    *float64
}

type FabricPatchInput struct {
	FabricName *string
	Color      *string
	PricePerKg *float64
	StockKg    *float64
	AlarmKg    *float64
}

const fabricColumns = `
	id,
	fabric_name,
	color,
	price_per_kg::double precision,
	stock_kg::double precision,
	alarm_kg::double precision,
	created_at,
	updated_at
`

func (r *Repository) ListFabrics(ctx context.Context, filter FabricListFilter) ([]domain.Fabric, error) {
	limit := normalizeLimit(filter.Limit)
	rows, err := r.pool.Query(ctx, `
		SELECT `+fabricColumns+`
		FROM fabrics
		WHERE ($1 = '' OR fabric_name ILIKE '%' || $1 || '%' OR COALESCE(color, '') ILIKE '%' || $1 || '%')
		ORDER BY fabric_name ASC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(filter.Search), limit, normalizeOffset(filter.Offset))
	if err != nil {
		return nil, fmt.Errorf("list fabrics: %w", err)
	}
	defer rows.Close()

	fabrics := make([]domain.Fabric, 0, limit)
	for rows.Next() {
		fabric, err := scanFabricRow(rows)
		if err != nil {
			return nil, err
		}
		fabrics = append(fabrics, fabric)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fabrics: %w", err)
	}
	return fabrics, nil
}

func (r *Repository) GetFabric(ctx context.Context, id int64) (*domain.Fabric, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fabricColumns+` FROM fabrics WHERE id = $1`, id)
	fabric, err := scanFabricRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get fabric %d: %w", id, err)
	}
	return &fabric, nil
}

func (r *Repository) CreateFabric(ctx context.Context, input FabricCreateInput) (domain.Fabric, error) {
	name := strings.TrimSpace(input.FabricName)
	if name == "" {
		return domain.Fabric{}, fmt.Errorf("fabric_name is required")
	}
	if input.PricePerKg < 0 || input.StockKg < 0 {
		return domain.Fabric{}, fmt.Errorf("price_per_kg and stock_kg cannot be negative")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO fabrics (fabric_name, color, price_per_kg, stock_kg, alarm_kg)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+fabricColumns,
		name, input.Color, input.PricePerKg, input.StockKg, input.AlarmKg,
	)
	fabric, err := scanFabricRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Fabric{}, fmt.Errorf("fabric %q: %w", name, ErrConflict)
		}
		return domain.Fabric{}, fmt.Errorf("create fabric: %w", err)
	}
	return fabric, nil
}

func (r *Repository) PatchFabric(ctx context.Context, id int64, input FabricPatchInput) (*domain.Fabric, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin patch fabric tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fabric, err := scanFabricRow(tx.QueryRow(ctx, `SELECT `+fabricColumns+` FROM fabrics WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load fabric for patch: %w", err)
	}

	if input.FabricName != nil {
		name := strings.TrimSpace(*input.FabricName)
		if name == "" {
			return nil, fmt.Errorf("fabric_name cannot be empty")
		}
		fabric.FabricName = name
	}
	if input.Color != nil {
		fabric.Color = input.Color
	}
	if input.PricePerKg != nil {
		if *input.PricePerKg < 0 {
			return nil, fmt.Errorf("price_per_kg cannot be negative")
		}
		fabric.PricePerKg = *input.PricePerKg
	}
	if input.StockKg != nil {
		if *input.StockKg < 0 {
			return nil, fmt.Errorf("stock_kg cannot be negative")
		}
		fabric.StockKg = *input.StockKg
	}
	if input.AlarmKg != nil {
		fabric.AlarmKg = input.AlarmKg
	}

	updated, err := scanFabricRow(tx.QueryRow(ctx, `
		UPDATE fabrics
		SET
			fabric_name = $2,
			color = $3,
			price_per_kg = $4,
			stock_kg = $5,
			alarm_kg = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+fabricColumns,
		id, fabric.FabricName, fabric.Color, fabric.PricePerKg, fabric.StockKg, fabric.AlarmKg,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("fabric %q: %w", fabric.FabricName, ErrConflict)
		}
		return nil, fmt.Errorf("update fabric: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit patch fabric tx: %w", err)
	}
	return &updated, nil
}

func (r *Repository) DeleteFabric(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM fabrics WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete fabric %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertFabricRows matches imported rows to existing fabrics by normalized
// name and reports how many were created and updated.
func (r *Repository) UpsertFabricRows(ctx context.Context, rows []domain.FabricImportRow) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin fabric import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created := 0
	updated := 0
	for _, line := range rows {
		name := strings.TrimSpace(line.FabricName)
		if name == "" {
			continue
		}

		var existingID int64
		err := tx.QueryRow(ctx,
			"SELECT id FROM fabrics WHERE LOWER(TRIM(fabric_name)) = $1",
			normalizeName(name),
		).Scan(&existingID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, fmt.Errorf("query existing fabric %q: %w", name, err)
		}

		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := tx.Exec(ctx, `
				INSERT INTO fabrics (fabric_name, color, price_per_kg, stock_kg, alarm_kg)
				VALUES ($1, $2, $3, $4, $5)
			`, name, line.Color, line.PricePerKg, line.StockKg, line.AlarmKg); err != nil {
				return 0, 0, fmt.Errorf("insert imported fabric %q: %w", name, err)
			}
			created++
			continue
		}

		if _, err := tx.Exec(ctx, `
			UPDATE fabrics
			SET
				fabric_name = $2,
				color = COALESCE($3, color),
				price_per_kg = $4,
				stock_kg = $5,
				alarm_kg = COALESCE($6, alarm_kg),
				updated_at = NOW()
			WHERE id = $1
		`, existingID, name, line.Color, line.PricePerKg, line.StockKg, line.AlarmKg); err != nil {
			return 0, 0, fmt.Errorf("update imported fabric %q: %w", name, err)
		}
		updated++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit fabric import tx: %w", err)
	}
	return created, updated, nil
}

func (r *Repository) GetLowStock(ctx context.Context, thresholdKg float64) ([]domain.LowStockRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			fabric_name,
			stock_kg::double precision,
			COALESCE(alarm_kg, $1)::double precision AS alarm,
			(COALESCE(alarm_kg, $1) - stock_kg)::double precision AS needed,
			price_per_kg::double precision
		FROM fabrics
		WHERE stock_kg < COALESCE(alarm_kg, $1)
		ORDER BY needed DESC, fabric_name ASC
	`, thresholdKg)
	if err != nil {
		return nil, fmt.Errorf("get low stock: %w", err)
	}
	defer rows.Close()

	result := make([]domain.LowStockRow, 0)
	for rows.Next() {
		var row domain.LowStockRow
		if err := rows.Scan(&row.FabricName, &row.StockKg, &row.AlarmKg, &row.NeededKg, &row.PricePerKg); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock rows: %w", err)
	}
	return result, nil
}

func scanFabricRow(row pgx.Row) (domain.Fabric, error) {
	var (
		fabric domain.Fabric
		color  sql.NullString
		alarm  sql.NullFloat64
	)
	if err := row.Scan(
		&fabric.ID,
		&fabric.FabricName,
		&color,
		&fabric.PricePerKg,
		&fabric.StockKg,
		&alarm,
		&fabric.CreatedAt,
		&fabric.UpdatedAt,
	); err != nil {
		return domain.Fabric{}, err
	}
	if color.Valid {
		value := color.String
		fabric.Color = &value
	}
	if alarm.Valid {
		value := alarm.Float64
		fabric.AlarmKg = &value
	}
	return fabric, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
