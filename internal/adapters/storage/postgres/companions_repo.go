package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// CompanionsRepo implementa companions.Store. Cada zona se guarda entera:
// SaveZone reemplaza las filas de la zona en una transacción.
type CompanionsRepo struct {
	db *sql.DB
}

func NewCompanionsRepo(db *sql.DB) *CompanionsRepo {
	return &CompanionsRepo{db: db}
}

func (r *CompanionsRepo) SaveZone(ctx context.Context, zoneID string, recs []companions.Record) error {
	zoneID = strings.TrimSpace(zoneID)
	if zoneID == "" {
		return fmt.Errorf("zone id required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM companion_records WHERE zone_id = $1`, zoneID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companion_records (
			zone_id, id, owner_id,
			category, name,
			x, y, z,
			state, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			zoneID,
			rec.ID.String(),
			rec.OwnerID.String(),
			string(rec.Category),
			toNullString(rec.Name),
			rec.Position.X,
			rec.Position.Y,
			rec.Position.Z,
			rec.State,
			rec.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// LoadZone devuelve los registros de la zona. Las filas con ids o categoría
// inválidos se saltean.
func (r *CompanionsRepo) LoadZone(ctx context.Context, zoneID string) ([]companions.Record, error) {
	zoneID = strings.TrimSpace(zoneID)
	if zoneID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_id,
			category, name,
			x, y, z,
			state, updated_at
		FROM companion_records
		WHERE zone_id = $1
		ORDER BY id ASC
	`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]companions.Record, 0)
	for rows.Next() {
		var (
			id, owner, cat string
			name           sql.NullString
			pos            world.Vec3
			rec            companions.Record
		)
		if err := rows.Scan(
			&id,
			&owner,
			&cat,
			&name,
			&pos.X,
			&pos.Y,
			&pos.Z,
			&rec.State,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}

		var ok bool
		if rec.ID, ok = parseID(id); !ok {
			continue
		}
		if rec.OwnerID, ok = parseID(owner); !ok {
			continue
		}
		if rec.Category, ok = eligibility.ParseCategory(cat); !ok {
			continue
		}
		if name.Valid {
			n := name.String
			rec.Name = &n
		}
		rec.ZoneID = zoneID
		rec.Position = pos

		out = append(out, rec)
	}

	return out, rows.Err()
}

func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// name es opcional; NULL distingue "sin nombre" de "".
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
