package companions

import (
	"context"
	"sort"
	"sync"
	"time"

	"companion-recall/internal/platform/logger"
	"companion-recall/internal/platform/metrics"
)

const retryEvery = 2 * time.Second

// Persister guarda las zonas en segundo plano. Si una zona se encola varias
// veces antes de guardarse, solo se escribe la última copia.
type Persister struct {
	store Store
	log   logger.Logger

	mu      sync.Mutex
	pending map[string][]Record
	wake    chan struct{}

	saveMu sync.Mutex
}

func NewPersister(store Store, log logger.Logger) *Persister {
	if log == nil {
		log = logger.Nop()
	}
	return &Persister{
		store:   store,
		log:     log,
		pending: map[string][]Record{},
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue es un FlushFunc: no bloquea, se puede llamar desde el hilo de una zona.
func (p *Persister) Enqueue(zoneID string, recs []Record) {
	p.mu.Lock()
	p.pending[zoneID] = recs
	p.mu.Unlock()

	metrics.SetRegistrySize(zoneID, len(recs))

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run guarda lo pendiente hasta que ctx se cancela; al salir hace un último guardado.
func (p *Persister) Run(ctx context.Context) error {
	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return p.Sync(final)
		case <-p.wake:
		case <-retry:
		}

		retry = nil
		if err := p.Sync(ctx); err != nil && ctx.Err() == nil {
			retry = time.After(retryEvery)
		}
	}
}

// Sync guarda ahora todo lo pendiente. Devuelve el último error.
func (p *Persister) Sync(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	batch := p.pending
	p.pending = map[string][]Record{}
	p.mu.Unlock()

	zones := make([]string, 0, len(batch))
	for z := range batch {
		zones = append(zones, z)
	}
	sort.Strings(zones)

	var lastErr error
	for _, z := range zones {
		start := time.Now()
		err := p.store.SaveZone(ctx, z, batch[z])
		metrics.RecordPersist(time.Since(start), err == nil)
		if err == nil {
			continue
		}

		lastErr = err
		p.log.Error("save zone failed", map[string]any{"zone": z, "error": err.Error()})

		// reintenta en la próxima vuelta salvo que ya haya una copia más nueva
		p.mu.Lock()
		if _, newer := p.pending[z]; !newer {
			p.pending[z] = batch[z]
		}
		p.mu.Unlock()
	}
	return lastErr
}

// Pending devuelve cuántas zonas esperan ser guardadas.
func (p *Persister) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
