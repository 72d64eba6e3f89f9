// Package session holds each visitor's in-memory state: menu and gallery
// filters, liked photos, loyalty account and chat. Nothing here survives
// a restart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/cafe-bot/internal/catalog"
	"github.com/xaenox/cafe-bot/internal/chat"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/schedule"
	"github.com/xaenox/cafe-bot/internal/storage"
	"go.uber.org/zap"
)

type Options struct {
	TypingDelay    time.Duration
	StartingPoints int
	IdleTimeout    time.Duration
	// MaxVisitors caps live visitors; the least recently seen one is
	// evicted to make room. Zero means no cap.
	MaxVisitors int
}

// Visitor is one visitor's state. Its scheduler is closed with the
// visitor, cancelling pending chat replies and spins.
type Visitor struct {
	ID      string
	Loyalty *loyalty.Account
	Chat    *chat.Conversation

	sched *schedule.Scheduler

	mu              sync.Mutex
	menuFilter      models.FilterState
	galleryCategory models.Category
	likes           catalog.LikeSet
	lastSeen        time.Time
}

// MenuFilter returns the current menu filter state.
func (v *Visitor) MenuFilter() models.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menuFilter
}

// UpdateMenuFilter replaces the menu filter with update(current).
func (v *Visitor) UpdateMenuFilter(update func(models.FilterState) models.FilterState) models.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.menuFilter = update(v.menuFilter)
	return v.menuFilter
}

// VisibleMenu is the menu filtered by the visitor's current state.
func (v *Visitor) VisibleMenu() []models.CatalogEntry {
	return catalog.Filter(catalog.Menu(), v.MenuFilter())
}

func (v *Visitor) GalleryCategory() models.Category {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.galleryCategory
}

func (v *Visitor) SetGalleryCategory(c models.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.galleryCategory = c
}

// VisibleGallery is the gallery filtered by the visitor's category.
func (v *Visitor) VisibleGallery() []models.CatalogEntry {
	return catalog.Filter(catalog.Gallery(), models.FilterState{Category: v.GalleryCategory()})
}

func (v *Visitor) Likes() catalog.LikeSet {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.likes
}

// ToggleLike likes or unlikes a gallery photo and returns the photo and
// whether it is now liked.
func (v *Visitor) ToggleLike(photoID string) (models.CatalogEntry, bool, error) {
	photo, err := catalog.Lookup(catalog.Gallery(), photoID)
	if err != nil {
		return models.CatalogEntry{}, false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.likes = v.likes.Toggle(photoID)
	return photo, v.likes.Has(photoID), nil
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// Close cancels the visitor's pending replies and spins.
func (v *Visitor) Close() {
	v.sched.Close()
}

// Manager creates visitors on first use and evicts idle ones.
type Manager struct {
	mu       sync.Mutex
	visitors map[string]*Visitor

	responder classifier.Responder
	store     storage.Storage
	wheel     *loyalty.Wheel
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewManager(responder classifier.Responder, store storage.Storage, wheel *loyalty.Wheel, opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		visitors:  make(map[string]*Visitor),
		responder: responder,
		store:     store,
		wheel:     wheel,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the visitor with id, creating it if needed.
func (m *Manager) Get(id string) *Visitor {
	now := m.now()

	m.mu.Lock()
	if v, ok := m.visitors[id]; ok {
		m.mu.Unlock()
		v.touch(now)
		return v
	}

	var evicted *Visitor
	if m.opts.MaxVisitors > 0 && len(m.visitors) >= m.opts.MaxVisitors {
		evicted = m.evictOldestLocked()
	}

	sched := schedule.New()
	v := &Visitor{
		ID:              id,
		Loyalty:         loyalty.NewAccount(m.wheel, sched, m.opts.StartingPoints),
		Chat:            chat.NewConversation(id, m.responder, m.store, sched, m.opts.TypingDelay, m.logger),
		sched:           sched,
		menuFilter:      catalog.DefaultFilter(),
		galleryCategory: models.CategoryAll,
		lastSeen:        now,
	}
	m.visitors[id] = v
	m.mu.Unlock()

	m.logger.Debug("Visitor session created", zap.String("visitor_id", id))
	if evicted != nil {
		evicted.Close()
		m.logger.Info("Evicted visitor at capacity",
			zap.String("visitor_id", evicted.ID),
			zap.Int("max_visitors", m.opts.MaxVisitors))
	}
	return v
}

// evictOldestLocked removes the least recently seen visitor. m.mu must be held.
func (m *Manager) evictOldestLocked() *Visitor {
	var oldest *Visitor
	for _, v := range m.visitors {
		if oldest == nil || v.idleSince().Before(oldest.idleSince()) {
			oldest = v
		}
	}
	if oldest != nil {
		delete(m.visitors, oldest.ID)
	}
	return oldest
}

// Len returns the number of live visitors.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// Sweep closes visitors idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var stale []*Visitor
	for id, v := range m.visitors {
		if v.idleSince().Before(cutoff) {
			stale = append(stale, v)
			delete(m.visitors, id)
		}
	}
	m.mu.Unlock()

	for _, v := range stale {
		v.Close()
	}
	if len(stale) > 0 {
		m.logger.Info("Evicted idle visitors", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close closes every visitor.
func (m *Manager) Close() {
	m.mu.Lock()
	visitors := m.visitors
	m.visitors = make(map[string]*Visitor)
	m.mu.Unlock()

	for _, v := range visitors {
		v.Close()
	}
}
