package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"storeplan/internal/domain"

	_ "modernc.org/sqlite"
)

const framedViewKey = "framed_view"

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0,
		width REAL NOT NULL,
		height REAL NOT NULL,
		status TEXT,
		label TEXT,
		category TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS graphic_elements (
		id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0,
		width REAL NOT NULL DEFAULT 0,
		height REAL NOT NULL DEFAULT 0,
		rotation REAL NOT NULL DEFAULT 0,
		z_index INTEGER NOT NULL DEFAULT 0,
		stroke TEXT,
		fill TEXT,
		opacity REAL NOT NULL DEFAULT 1,
		text TEXT,
		style JSON,
		visible INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
	CREATE INDEX IF NOT EXISTS idx_graphic_elements_z ON graphic_elements(z_index);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	// Brand was added after the first release
	return r.addColumnIfNotExists("entities", "brand", "TEXT")
}

// addColumnIfNotExists adds a column to an existing table
func (r *Repository) addColumnIfNotExists(table, column, decl string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// GetLayout loads the complete layout from the database
func (r *Repository) GetLayout(ctx context.Context) (*domain.Layout, error) {
	layout := domain.NewLayout()

	entities, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	layout.Entities = entities

	elements, err := r.ListElements(ctx)
	if err != nil {
		return nil, err
	}
	layout.Elements = elements

	framed, err := r.GetFramedView(ctx)
	if err != nil {
		return nil, err
	}
	layout.FramedView = framed

	return layout, nil
}

// ListEntities returns all entities ordered by id
func (r *Repository) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entityColumns+` FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	entities := make([]domain.Entity, 0)
	for rows.Next() {
		var row entityRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}
	return entities, nil
}

// GetEntity retrieves a single entity by ID
func (r *Repository) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	var row entityRow
	err := r.db.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = ?`, id).
		Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entity: %w", err)
	}

	e := row.toDomain()
	return &e, nil
}

// UpsertEntity inserts or replaces an entity
func (r *Repository) UpsertEntity(ctx context.Context, e *domain.Entity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entities (`+entityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			x = excluded.x,
			y = excluded.y,
			width = excluded.width,
			height = excluded.height,
			status = excluded.status,
			label = excluded.label,
			category = excluded.category,
			brand = excluded.brand,
			updated_at = CURRENT_TIMESTAMP
	`, entityInsertArgs(e)...)

	if err != nil {
		return fmt.Errorf("failed to upsert entity: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity
func (r *Repository) DeleteEntity(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// ListElements returns all graphic elements ordered by z-index then id
func (r *Repository) ListElements(ctx context.Context) ([]domain.GraphicElement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+elementColumns+` FROM graphic_elements ORDER BY z_index, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphic elements: %w", err)
	}
	defer rows.Close()

	elements := make([]domain.GraphicElement, 0)
	for rows.Next() {
		var row elementRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan graphic element: %w", err)
		}
		el, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode graphic element %s: %w", row.ID, err)
		}
		elements = append(elements, el)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating graphic elements: %w", err)
	}
	return elements, nil
}

// GetElement retrieves a single graphic element by ID
func (r *Repository) GetElement(ctx context.Context, id string) (*domain.GraphicElement, error) {
	var row elementRow
	err := r.db.QueryRowContext(ctx, `SELECT `+elementColumns+` FROM graphic_elements WHERE id = ?`, id).
		Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query graphic element: %w", err)
	}

	el, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode graphic element %s: %w", id, err)
	}
	return &el, nil
}

// UpsertElement inserts or replaces a graphic element
func (r *Repository) UpsertElement(ctx context.Context, el *domain.GraphicElement) error {
	args, err := elementInsertArgs(el)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO graphic_elements (`+elementColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			variant = excluded.variant,
			x = excluded.x,
			y = excluded.y,
			width = excluded.width,
			height = excluded.height,
			rotation = excluded.rotation,
			z_index = excluded.z_index,
			stroke = excluded.stroke,
			fill = excluded.fill,
			opacity = excluded.opacity,
			text = excluded.text,
			style = excluded.style,
			visible = excluded.visible,
			updated_at = CURRENT_TIMESTAMP
	`, args...)

	if err != nil {
		return fmt.Errorf("failed to upsert graphic element: %w", err)
	}
	return nil
}

// DeleteElement removes a graphic element
func (r *Repository) DeleteElement(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM graphic_elements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete graphic element: %w", err)
	}
	return nil
}

// GetFramedView returns the stored framed view, or nil when none is set
func (r *Repository) GetFramedView(ctx context.Context) (*domain.Rect, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, framedViewKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query framed view: %w", err)
	}

	var rect domain.Rect
	if err := json.Unmarshal(value, &rect); err != nil {
		return nil, fmt.Errorf("failed to unmarshal framed view: %w", err)
	}
	return &rect, nil
}

// SetFramedView stores or clears the framed view
func (r *Repository) SetFramedView(ctx context.Context, rect *domain.Rect) error {
	return setFramedView(ctx, r.db, rect)
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func setFramedView(ctx context.Context, db execer, rect *domain.Rect) error {
	if rect == nil {
		if _, err := db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, framedViewKey); err != nil {
			return fmt.Errorf("failed to clear framed view: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(rect)
	if err != nil {
		return fmt.Errorf("failed to marshal framed view: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, framedViewKey, string(data)); err != nil {
		return fmt.Errorf("failed to store framed view: %w", err)
	}
	return nil
}

// ImportLayout replaces all data with the provided layout
func (r *Repository) ImportLayout(ctx context.Context, layout *domain.Layout) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}

	entityStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (`+entityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entity statement: %w", err)
	}
	defer entityStmt.Close()

	for i := range layout.Entities {
		e := &layout.Entities[i]
		if _, err := entityStmt.ExecContext(ctx, entityInsertArgs(e)...); err != nil {
			return fmt.Errorf("failed to insert entity %s: %w", e.ID, err)
		}
	}

	elementStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO graphic_elements (`+elementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare graphic element statement: %w", err)
	}
	defer elementStmt.Close()

	for i := range layout.Elements {
		el := &layout.Elements[i]
		args, err := elementInsertArgs(el)
		if err != nil {
			return fmt.Errorf("failed to encode graphic element %s: %w", el.ID, err)
		}
		if _, err := elementStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert graphic element %s: %w", el.ID, err)
		}
	}

	if err := setFramedView(ctx, tx, layout.FramedView); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearLayout removes every entity, graphic element and the framed view
func (r *Repository) ClearLayout(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func clearTables(ctx context.Context, tx execer) error {
	for _, table := range []string{"entities", "graphic_elements"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, framedViewKey); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
