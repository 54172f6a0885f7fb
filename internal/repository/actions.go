package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fabricstore/internal/domain"
)

const actionSearch = `($1 = '' OR title ILIKE '%' || $1 || '%' OR details ILIKE '%' || $1 || '%' OR COALESCE(admin_username, '') ILIKE '%' || $1 || '%')`

func (r *Repository) LogAction(
	ctx context.Context,
	actionType, title, details string,
	adminUsername *string,
) error {
	actionType = strings.TrimSpace(actionType)
	title = strings.TrimSpace(title)
	if actionType == "" || title == "" {
		return fmt.Errorf("action_type and title are required")
	}
	if details == "" {
		details = "-"
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO actions (admin_username, action_type, title, details)
		VALUES ($1, $2, $3, $4)
	`, adminUsername, actionType, title, details); err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}

func (r *Repository) ListActions(ctx context.Context, limit, offset int, search string) ([]domain.ActionEntry, error) {
	limit = normalizeLimit(limit)
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, admin_username, action_type, title, details
		FROM actions
		WHERE `+actionSearch+`
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(search), limit, normalizeOffset(offset))
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ActionEntry, 0, limit)
	for rows.Next() {
		var (
			row   domain.ActionEntry
			admin sql.NullString
		)
		if err := rows.Scan(&row.ActionID, &row.CreatedAt, &admin, &row.ActionType, &row.Title, &row.Details); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if admin.Valid {
			value := admin.String
			row.AdminUsername = &value
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return items, nil
}

func (r *Repository) CountActions(ctx context.Context, search string) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM actions WHERE `+actionSearch,
		strings.TrimSpace(search),
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return count, nil
}
