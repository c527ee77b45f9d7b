package cooldowns

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// buckMinGap es el tiempo mínimo entre dos derribos de la misma montura.
	buckMinGap = 2 * time.Second
	// buckWarnGap limita el aviso al jinete.
	buckWarnGap = 10 * time.Second
	// buckRetention y whistleGrace definen qué entradas borra Prune.
	buckRetention = 30 * time.Second
	whistleGrace  = 60 * time.Second
)

// Service guarda el último whistle por jugador y el último derribo por montura.
// Se comparte entre las zonas, por eso lleva lock.
type Service struct {
	mu      sync.Mutex
	now     func() time.Time
	whistle map[uuid.UUID]time.Time
	buck    map[uuid.UUID]time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		now:     time.Now,
		whistle: map[uuid.UUID]time.Time{},
		buck:    map[uuid.UUID]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remaining devuelve cuánto falta para que el jugador pueda silbar.
// Con d <= 0 nunca hay espera.
func (s *Service) Remaining(player uuid.UUID, d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.whistle[player]
	if !ok {
		return 0
	}
	left := d - s.now().Sub(last)
	if left < 0 {
		return 0
	}
	return left
}

// Mark registra un whistle ahora.
func (s *Service) Mark(player uuid.UUID) {
	s.mu.Lock()
	s.whistle[player] = s.now()
	s.mu.Unlock()
}

// TryWhistle verifica y registra el whistle bajo el mismo lock: de dos
// llamadas simultáneas del mismo jugador pasa una sola. Si no pasa,
// devuelve lo que falta.
func (s *Service) TryWhistle(player uuid.UUID, d time.Duration) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.whistle[player]; ok && d > 0 {
		if left := d - now.Sub(last); left > 0 {
			return left, false
		}
	}
	s.whistle[player] = now
	return 0, true
}

// Buck decide si la montura puede derribar a sus jinetes ahora. Si puede,
// registra el derribo; warn indica si corresponde avisar al jinete.
func (s *Service) Buck(mount uuid.UUID) (allowed, warn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	last, ok := s.buck[mount]
	if ok && now.Sub(last) < buckMinGap {
		return false, false
	}
	warn = !ok || now.Sub(last) > buckWarnGap
	s.buck[mount] = now
	return true, warn
}

// Prune borra whistles más viejos que d+60s y derribos de más de 30s.
// Devuelve cuántas entradas se borraron.
func (s *Service) Prune(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	keepWhistle := d + whistleGrace
	if d < 0 {
		keepWhistle = whistleGrace
	}
	for id, at := range s.whistle {
		if now.Sub(at) > keepWhistle {
			delete(s.whistle, id)
			removed++
		}
	}
	for id, at := range s.buck {
		if now.Sub(at) > buckRetention {
			delete(s.buck, id)
			removed++
		}
	}
	return removed
}

// Len devuelve (whistles, derribos) registrados.
func (s *Service) Len() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.whistle), len(s.buck)
}
