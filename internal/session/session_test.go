package session

import (
	"errors"
	"testing"
	"time"

	"github.com/xaenox/cafe-bot/internal/catalog"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/storage"
	"go.uber.org/zap"
)

func newTestManager(opts Options) *Manager {
	return NewManager(
		classifier.NewKeywordResponder(nil),
		storage.NewMemoryStorage(),
		loyalty.NewWheel(nil, time.Hour),
		opts,
		zap.NewNop(),
	)
}

func TestGetReturnsSameVisitor(t *testing.T) {
	m := newTestManager(Options{StartingPoints: loyalty.StartingPoints})
	defer m.Close()

	a := m.Get("v1")
	if a != m.Get("v1") {
		t.Error("Get returned a different visitor for the same id")
	}
	if a == m.Get("v2") {
		t.Error("Get returned the same visitor for different ids")
	}
	if got := a.Loyalty.State().Points; got != loyalty.StartingPoints {
		t.Errorf("starting points = %d", got)
	}
	if f := a.MenuFilter(); f.Category != models.CategoryAll || f.SearchTerm != "" || len(f.Tags) != 0 {
		t.Errorf("default filter = %+v", f)
	}
}

func TestMenuFilterState(t *testing.T) {
	m := newTestManager(Options{})
	defer m.Close()
	v := m.Get("v1")

	v.UpdateMenuFilter(func(s models.FilterState) models.FilterState {
		return catalog.ToggleTag(s, models.TagVegan)
	})
	if got := len(v.VisibleMenu()); got != 3 {
		t.Errorf("vegan menu has %d items, want 3", got)
	}

	v.UpdateMenuFilter(func(models.FilterState) models.FilterState { return catalog.DefaultFilter() })
	if got := len(v.VisibleMenu()); got != 5 {
		t.Errorf("cleared menu has %d items, want 5", got)
	}
}

func TestToggleLike(t *testing.T) {
	m := newTestManager(Options{})
	defer m.Close()
	v := m.Get("v1")

	photo, liked, err := v.ToggleLike("1")
	if err != nil || !liked || catalog.LikeCount(photo, v.Likes()) != 128 {
		t.Fatalf("ToggleLike() = %+v, %v, %v", photo, liked, err)
	}
	_, liked, _ = v.ToggleLike("1")
	if liked || v.Likes().Len() != 0 {
		t.Error("second ToggleLike did not unlike")
	}
	if _, _, err := v.ToggleLike("42"); !errors.Is(err, catalog.ErrUnknownEntry) {
		t.Errorf("ToggleLike(42) error = %v", err)
	}

	other := m.Get("v2")
	v.ToggleLike("2")
	if other.Likes().Has("2") {
		t.Error("likes leaked between visitors")
	}
}

func TestGalleryCategory(t *testing.T) {
	m := newTestManager(Options{})
	defer m.Close()
	v := m.Get("v1")

	if got := len(v.VisibleGallery()); got != 3 {
		t.Errorf("gallery shows %d photos, want 3", got)
	}
	v.SetGalleryCategory(models.CategoryFood)
	if got := v.VisibleGallery(); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("food gallery = %+v", got)
	}
}

func TestSweepEvictsIdleVisitors(t *testing.T) {
	m := newTestManager(Options{IdleTimeout: time.Minute})
	defer m.Close()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle := m.Get("idle")
	if err := idle.Loyalty.Spin(now, nil); err != nil {
		t.Fatal(err)
	}

	now = now.Add(45 * time.Second)
	m.Get("active")

	now = now.Add(30 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d after sweep", m.Len())
	}
	if state := idle.Loyalty.State(); state.Points != 0 || !state.Spinning {
		t.Errorf("evicted visitor's spin settled: %+v", state)
	}
	if m.Get("idle") == idle {
		t.Error("evicted visitor was reused")
	}
}

func TestMaxVisitorsEvictsLeastRecentlySeen(t *testing.T) {
	m := newTestManager(Options{MaxVisitors: 2})
	defer m.Close()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	oldest := m.Get("a")
	if err := oldest.Loyalty.Spin(now, nil); err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Second)
	m.Get("b")
	now = now.Add(time.Second)
	m.Get("c")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if state := oldest.Loyalty.State(); state.Points != 0 || !state.Spinning {
		t.Errorf("evicted visitor's spin settled: %+v", state)
	}
	if m.Get("a") == oldest {
		t.Error("evicted visitor was reused")
	}
	// Re-creating "a" pushed out "b", the least recently seen.
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}
