package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"archive-backend/internal/entities"
	"archive-backend/internal/query"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB  *sql.DB
	Now Clock
}

// NewPGRepo constructs a PGRepo with a real clock.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db, Now: time.Now}
}

const selectDocument = `
SELECT id, title, file_name, content, image_url, document_type,
       file_id, file_path, mime_type, file_size, created_at, updated_at
FROM documents`

// Create inserts the document and resolves its entity specs in one
// transaction. Resolution matches archive-wide on lower(name) and type;
// a miss creates the entity inside the same transaction.
func (r *PGRepo) Create(ctx context.Context, doc Document, specs []entities.Spec) (Document, error) {
	now := r.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, err
	}
	defer tx.Rollback()

	const insertDoc = `
INSERT INTO documents (
    id, title, file_name, content, image_url, document_type,
    file_id, file_path, mime_type, file_size, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := tx.ExecContext(ctx, insertDoc,
		doc.ID,
		doc.Title,
		doc.FileName,
		doc.Content,
		nullable(doc.ImageURL),
		doc.DocumentType,
		nullable(doc.FileID),
		nullable(doc.FilePath),
		nullable(doc.MimeType),
		doc.FileSize,
		doc.CreatedAt,
		doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}

	const upsertEntity = `
INSERT INTO entities (id, name, type, date)
VALUES ($1, $2, $3, $4)
ON CONFLICT ((lower(name)), type) DO UPDATE SET name = entities.name
RETURNING id, name, type, date`
	const linkEntity = `
INSERT INTO documents_entities (document_id, entity_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	linked := make([]entities.Entity, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" || !entities.ValidType(spec.Type) {
			return Document{}, ErrInvalidInput
		}
		key := strings.ToLower(name) + "|" + spec.Type
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var ent entities.Entity
		var date sql.NullString
		err := tx.QueryRowContext(ctx, upsertEntity, uuid.NewString(), name, spec.Type, nullable(spec.Date)).
			Scan(&ent.ID, &ent.Name, &ent.Type, &date)
		if err != nil {
			return Document{}, err
		}
		if date.Valid {
			ent.Date = date.String
		}
		if _, err := tx.ExecContext(ctx, linkEntity, doc.ID, ent.ID); err != nil {
			return Document{}, err
		}
		ent.DocumentCount = 1
		linked = append(linked, ent)
	}

	if err := tx.Commit(); err != nil {
		return Document{}, err
	}
	doc.Entities = linked
	return doc, nil
}

// GetByID fetches one document with its entities.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, selectDocument+" WHERE id = $1", documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.Entities, err = r.entitiesFor(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// List returns a filtered page of documents, newest first unless SortBy says
// otherwise.
func (r *PGRepo) List(ctx context.Context, filters query.Filters, page, limit int) ([]Document, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.DocumentType != "" {
		where = append(where, "document_type = "+arg(filters.DocumentType))
	}
	if filters.Keyword != "" {
		p := arg("%" + filters.Keyword + "%")
		where = append(where, "(title ILIKE "+p+" OR content ILIKE "+p+")")
	}
	if filters.EntityName != "" {
		p := arg(strings.ToLower(strings.TrimSpace(filters.EntityName)))
		where = append(where, `EXISTS (
    SELECT 1 FROM documents_entities de
    JOIN entities e ON e.id = de.entity_id
    WHERE de.document_id = documents.id AND lower(e.name) = `+p+")")
	}
	if filters.StartDate != "" {
		where = append(where, "created_at >= "+arg(filters.StartDate))
	}
	if filters.EndDate != "" {
		where = append(where, "created_at <= "+arg(filters.EndDate))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM documents"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY created_at DESC"
	switch filters.SortBy {
	case "title":
		order = " ORDER BY title ASC"
	case "oldest":
		order = " ORDER BY created_at ASC"
	}
	pageArgs := append(args, limit, (page-1)*limit)
	rows, err := r.DB.QueryContext(ctx,
		selectDocument+clause+order+fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2),
		pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	docs, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Search matches a text fragment against title, content, file name and the
// names of linked entities.
func (r *PGRepo) Search(ctx context.Context, q string, page, limit int) ([]Document, int, error) {
	pattern := "%" + strings.TrimSpace(q) + "%"
	const match = ` WHERE title ILIKE $1 OR content ILIKE $1 OR file_name ILIKE $1
   OR EXISTS (
    SELECT 1 FROM documents_entities de
    JOIN entities e ON e.id = de.entity_id
    WHERE de.document_id = documents.id AND e.name ILIKE $1)`

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM documents"+match, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		selectDocument+match+" ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	docs, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListByEntity returns the documents linked to one entity.
func (r *PGRepo) ListByEntity(ctx context.Context, entityID string, page, limit int) ([]Document, int, error) {
	const join = `
JOIN documents_entities de ON de.document_id = documents.id
WHERE de.entity_id = $1`

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM documents"+join, entityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		selectDocument+join+" ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		entityID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	docs, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Update applies the non-nil fields and returns the updated document.
func (r *PGRepo) Update(ctx context.Context, documentID string, params UpdateParams) (Document, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.Title != nil {
		set("title", *params.Title)
	}
	if params.Content != nil {
		set("content", *params.Content)
	}
	if params.ImageURL != nil {
		set("image_url", nullable(*params.ImageURL))
	}
	if params.DocumentType != nil {
		set("document_type", *params.DocumentType)
	}
	if len(sets) == 0 {
		return Document{}, ErrInvalidInput
	}
	set("updated_at", r.now())
	args = append(args, documentID)

	q := fmt.Sprintf(`
UPDATE documents SET %s WHERE id = $%d
RETURNING id, title, file_name, content, image_url, document_type,
          file_id, file_path, mime_type, file_size, created_at, updated_at`,
		strings.Join(sets, ", "), len(args))

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.Entities, err = r.entitiesFor(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the document; association rows go with it via cascade, the
// entities stay.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", documentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns total, per-type counts and the most recent documents.
func (r *PGRepo) Stats(ctx context.Context, recent int) (Stats, error) {
	stats := Stats{ByType: []StatsRow{}, MostRecent: []Document{}}

	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM documents").Scan(&stats.Total); err != nil {
		return Stats{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT document_type, count(*) FROM documents GROUP BY document_type ORDER BY count(*) DESC")
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.DocumentType, &row.Count); err != nil {
			return Stats{}, err
		}
		stats.ByType = append(stats.ByType, row)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	recentRows, err := r.DB.QueryContext(ctx,
		selectDocument+" ORDER BY created_at DESC LIMIT $1", recent)
	if err != nil {
		return Stats{}, err
	}
	stats.MostRecent, err = r.collect(ctx, recentRows)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) entitiesFor(ctx context.Context, documentID string) ([]entities.Entity, error) {
	const q = `
SELECT e.id, e.name, e.type, e.date,
       (SELECT count(*) FROM documents_entities dc WHERE dc.entity_id = e.id) AS document_count
FROM entities e
JOIN documents_entities de ON de.entity_id = e.id
WHERE de.document_id = $1
ORDER BY e.name ASC`
	rows, err := r.DB.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entities.Entity{}
	for rows.Next() {
		var ent entities.Entity
		var date sql.NullString
		if err := rows.Scan(&ent.ID, &ent.Name, &ent.Type, &date, &ent.DocumentCount); err != nil {
			return nil, err
		}
		if date.Valid {
			ent.Date = date.String
		}
		out = append(out, ent)
	}
	return out, rows.Err()
}

func (r *PGRepo) collect(ctx context.Context, rows *sql.Rows) ([]Document, error) {
	defer rows.Close()
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		ents, err := r.entitiesFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Entities = ents
	}
	return out, nil
}

func (r *PGRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var imageURL, fileID, filePath, mimeType sql.NullString
	var fileSize sql.NullInt64
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.FileName,
		&doc.Content,
		&imageURL,
		&doc.DocumentType,
		&fileID,
		&filePath,
		&mimeType,
		&fileSize,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if imageURL.Valid {
		doc.ImageURL = imageURL.String
	}
	if fileID.Valid {
		doc.FileID = fileID.String
	}
	if filePath.Valid {
		doc.FilePath = filePath.String
	}
	if mimeType.Valid {
		doc.MimeType = mimeType.String
	}
	if fileSize.Valid {
		doc.FileSize = fileSize.Int64
	}
	return doc, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
