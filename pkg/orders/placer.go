package orders

import (
	"math/rand/v2"
	"sync"
	"time"

	"shop-demo/pkg/models"

	"github.com/google/uuid"
)

// Placer accepts mock orders. Nothing is stored; every call yields a fresh id.
type Placer struct {
	limit int
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlacer creates a Placer drawing ids from [0, limit).
func NewPlacer(limit int) *Placer {
	return &Placer{limit: limit, now: time.Now}
}

// NewSeededPlacer is NewPlacer with a deterministic id sequence.
func NewSeededPlacer(limit int, seed uint64) *Placer {
	p := NewPlacer(limit)
	p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return p
}

// Place accepts req unconditionally
func (p *Placer) Place(req models.OrderRequest) models.Order {
	return models.Order{
		ID:         p.nextID(),
		Reference:  uuid.NewString(),
		UserID:     req.UserID,
		ProductIDs: req.ProductIDs,
		PlacedAt:   p.now(),
	}
}

func (p *Placer) nextID() int {
	if p.rng == nil {
		return rand.IntN(p.limit)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(p.limit)
}
