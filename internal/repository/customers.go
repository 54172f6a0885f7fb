package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fabricstore/internal/domain"

	"github.com/jackc/pgx/v5"
)

type CustomerInput struct {
	Name    string
	Phone   *string
	Address *string
}

const customerColumns = `id, name, phone, address, created_at, updated_at`

func (r *Repository) ListCustomers(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	limit = normalizeLimit(limit)
	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR COALESCE(phone, '') ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(search), limit, normalizeOffset(offset))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Customer, 0, limit)
	for rows.Next() {
		customer, err := scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return items, nil
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := scanCustomerRow(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &customer, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, input CustomerInput) (domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("name is required")
	}
	customer, err := scanCustomerRow(r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address)
		VALUES ($1, $2, $3)
		RETURNING `+customerColumns,
		name, input.Phone, input.Address,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, fmt.Errorf("customer %q: %w", name, ErrConflict)
		}
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	customer, err := scanCustomerRow(r.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+customerColumns,
		id, name, input.Phone, input.Address,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("customer %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	return &customer, nil
}

func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomerRow(row pgx.Row) (domain.Customer, error) {
	var (
		customer domain.Customer
		phone    sql.NullString
		address  sql.NullString
	)
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&phone,
		&address,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return domain.Customer{}, err
	}
	if phone.Valid {
		value := phone.String
		customer.Phone = &value
	}
	if address.Valid {
		value := address.String
		customer.Address = &value
	}
	return customer, nil
}
