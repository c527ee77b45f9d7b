package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"companion-recall/internal/adapters/storage/sqlite/migrations"
	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/platform/storage/sqlitemigrate"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implementa companions.Store sobre un archivo SQLite.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base y aplica migraciones.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// un solo escritor (el persister)
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), db, migrations.FS, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveZone(ctx context.Context, zoneID string, recs []companions.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	zoneID = strings.TrimSpace(zoneID)
	if zoneID == "" {
		return errors.New("zone id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM companion_records WHERE zone_id = ?`, zoneID); err != nil {
		return fmt.Errorf("clear zone %s: %w", zoneID, err)
	}
	for _, rec := range recs {
		var name any
		if rec.Name != nil {
			name = *rec.Name
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO companion_records (
	zone_id,
	id,
	owner_id,
	category,
	name,
	x, y, z,
	state,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			zoneID,
			rec.ID.String(),
			rec.OwnerID.String(),
			string(rec.Category),
			name,
			rec.Position.X, rec.Position.Y, rec.Position.Z,
			rec.State,
			rec.UpdatedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit zone %s: %w", zoneID, err)
	}
	return nil
}

// LoadZone devuelve los registros de la zona ordenados por id; las filas
// inválidas se saltean.
func (s *Store) LoadZone(ctx context.Context, zoneID string) ([]companions.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, owner_id, category, name, x, y, z, state, updated_at
FROM companion_records
WHERE zone_id = ?
ORDER BY id ASC
`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("load zone %s: %w", zoneID, err)
	}
	defer rows.Close()

	out := make([]companions.Record, 0)
	for rows.Next() {
		var (
			id, owner, cat string
			name           sql.NullString
			rec            companions.Record
			updated        int64
		)
		if err := rows.Scan(&id, &owner, &cat, &name,
			&rec.Position.X, &rec.Position.Y, &rec.Position.Z,
			&rec.State, &updated,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		var perr error
		if rec.ID, perr = uuid.Parse(id); perr != nil || rec.ID == uuid.Nil {
			continue
		}
		if rec.OwnerID, perr = uuid.Parse(owner); perr != nil || rec.OwnerID == uuid.Nil {
			continue
		}
		var ok bool
		if rec.Category, ok = eligibility.ParseCategory(cat); !ok {
			continue
		}
		if name.Valid {
			n := name.String
			rec.Name = &n
		}
		rec.ZoneID = zoneID
		rec.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
