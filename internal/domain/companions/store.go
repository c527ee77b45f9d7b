package companions

import "context"

// Store persiste los registros de cada zona como una unidad.
type Store interface {
	LoadZone(ctx context.Context, zoneID string) ([]Record, error)
	SaveZone(ctx context.Context, zoneID string, recs []Record) error
}
