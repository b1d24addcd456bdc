package session

import (
	"sync"
	"time"

	"liveshop/entities"

	"github.com/google/uuid"
)

// Snapshot is the per-show projection written by the reconciliation tasks
// and read by the presentation layer. Consumers only ever get copies.
type Snapshot struct {
	ShowID uuid.UUID `json:"show_id"`

	State entities.SessionState `json:"state"`

	DisplayedViewers int `json:"displayed_viewers"`
	MaxViewers       int `json:"max_viewers"`

	Products          []entities.VisibleProduct `json:"products"`
	FeaturedProductID *uuid.UUID                `json:"featured_product_id,omitempty"`

	RefreshedAt time.Time `json:"refreshed_at"`
}

type SnapshotStore struct {
	mu     sync.RWMutex
	byShow map[uuid.UUID]Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		byShow: map[uuid.UUID]Snapshot{},
	}
}

func (s *SnapshotStore) Get(showID uuid.UUID) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.byShow[showID]
	if !ok {
		return Snapshot{}, false
	}

	snap.Products = append([]entities.VisibleProduct(nil), snap.Products...)
	return snap, true
}

func (s *SnapshotStore) SetSession(showID uuid.UUID, state entities.SessionState, displayed, max int) {
	s.update(showID, func(snap *Snapshot) {
		snap.State = state
		snap.DisplayedViewers = displayed
		snap.MaxViewers = max
	})
}

func (s *SnapshotStore) SetProducts(showID uuid.UUID, products []entities.VisibleProduct) {
	s.update(showID, func(snap *Snapshot) {
		snap.Products = products
	})
}

func (s *SnapshotStore) SetFeaturedProduct(showID uuid.UUID, productID *uuid.UUID) {
	s.update(showID, func(snap *Snapshot) {
		snap.FeaturedProductID = productID
	})
}

func (s *SnapshotStore) Drop(showID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byShow, showID)
}

func (s *SnapshotStore) update(showID uuid.UUID, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.byShow[showID]
	snap.ShowID = showID

	fn(&snap)

	snap.RefreshedAt = time.Now().UTC()
	s.byShow[showID] = snap
}
