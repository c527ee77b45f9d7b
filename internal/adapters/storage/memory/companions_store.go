package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"companion-recall/internal/domain/companions"
)

// CompanionsStore guarda cada zona como el JSON del codec, igual que lo haría
// un archivo por zona. Sirve para dev y tests.
type CompanionsStore struct {
	mu     sync.RWMutex
	byZone map[string][]byte
}

func NewCompanionsStore() *CompanionsStore {
	return &CompanionsStore{
		byZone: make(map[string][]byte),
	}
}

func (s *CompanionsStore) SaveZone(ctx context.Context, zoneID string, recs []companions.Record) error {
	if strings.TrimSpace(zoneID) == "" {
		return errors.New("zone id required")
	}
	data, err := companions.MarshalZone(zoneID, recs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byZone[zoneID] = data
	return nil
}

func (s *CompanionsStore) LoadZone(ctx context.Context, zoneID string) ([]companions.Record, error) {
	s.mu.RLock()
	data, ok := s.byZone[zoneID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	recs, _, err := companions.UnmarshalZone(data)
	return recs, err
}

// Raw devuelve el documento guardado de la zona.
func (s *CompanionsStore) Raw(zoneID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.byZone[zoneID]
	return append([]byte(nil), data...), ok
}

// PutRaw reemplaza el documento de la zona sin validarlo (tests de datos corruptos).
func (s *CompanionsStore) PutRaw(zoneID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byZone[zoneID] = append([]byte(nil), data...)
}
