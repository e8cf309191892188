package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. Document counts come from the
// documents_entities association table.
type PGRepo struct {
	DB *sql.DB
}

const selectEntity = `
SELECT e.id, e.name, e.type, e.date,
       (SELECT count(*) FROM documents_entities de WHERE de.entity_id = e.id) AS document_count
FROM entities e`

// List returns a page of entities ordered by name.
func (r *PGRepo) List(ctx context.Context, page, limit int) ([]Entity, int, error) {
	return r.pageQuery(ctx, page, limit, "", nil)
}

// Search returns a page of entities whose name contains query, case-insensitive.
func (r *PGRepo) Search(ctx context.Context, query string, page, limit int) ([]Entity, int, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	return r.pageQuery(ctx, page, limit, "WHERE e.name ILIKE $1", []any{pattern})
}

// ByType returns a page of entities of one type.
func (r *PGRepo) ByType(ctx context.Context, entityType string, page, limit int) ([]Entity, int, error) {
	return r.pageQuery(ctx, page, limit, "WHERE e.type = $1", []any{entityType})
}

// GetByID returns a single entity.
func (r *PGRepo) GetByID(ctx context.Context, entityID string) (Entity, error) {
	row := r.DB.QueryRowContext(ctx, selectEntity+" WHERE e.id = $1 LIMIT 1", entityID)
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, ErrNotFound
		}
		return Entity{}, err
	}
	return entity, nil
}

// Update applies the non-nil fields and returns the updated entity.
func (r *PGRepo) Update(ctx context.Context, entityID string, params UpdateParams) (Entity, error) {
	sets := []string{}
	args := []any{entityID}
	idx := 2
	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", idx))
		args = append(args, *params.Name)
		idx++
	}
	if params.Type != nil {
		sets = append(sets, fmt.Sprintf("type = $%d", idx))
		args = append(args, *params.Type)
		idx++
	}
	if params.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", idx))
		args = append(args, nullable(*params.Date))
		idx++
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, entityID)
	}

	query := fmt.Sprintf("UPDATE entities SET %s WHERE id = $1", strings.Join(sets, ", "))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return Entity{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Entity{}, ErrNotFound
	}
	return r.GetByID(ctx, entityID)
}

// Delete removes the entity; the association rows go with it via cascade.
func (r *PGRepo) Delete(ctx context.Context, entityID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entities WHERE id = $1`, entityID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountsByType returns entity counts grouped by type.
func (r *PGRepo) CountsByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT type, count(*) FROM entities GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var entityType string
		var count int
		if err := rows.Scan(&entityType, &count); err != nil {
			return nil, err
		}
		counts[entityType] = count
	}
	return counts, rows.Err()
}

func (r *PGRepo) pageQuery(ctx context.Context, page, limit int, where string, args []any) ([]Entity, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	countQuery := "SELECT count(*) FROM entities e " + where
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("%s %s ORDER BY e.name ASC LIMIT $%d OFFSET $%d",
		selectEntity, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Entity{}
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, entity)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (Entity, error) {
	var entity Entity
	var date sql.NullString
	if err := row.Scan(&entity.ID, &entity.Name, &entity.Type, &date, &entity.DocumentCount); err != nil {
		return Entity{}, err
	}
	if date.Valid {
		entity.Date = date.String
	}
	return entity, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
