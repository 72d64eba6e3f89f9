package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/catalog"
	"github.com/xaenox/cafe-bot/internal/chat"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/upload"
	"go.uber.org/zap"
)

type menuResponse struct {
	Filter     models.FilterState     `json:"filter"`
	Items      []models.CatalogEntry  `json:"items"`
	Categories []models.CategoryCount `json:"categories"`
	Tags       []models.Tag           `json:"tags"`
}

// menuHandler filters the menu by the category, q and tag query parameters.
// tag may repeat.
func (s *Server) menuHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	state := catalog.DefaultFilter()
	category, ok := catalog.ParseCategory(q.Get("category"), catalog.MenuCategories)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	state.Category = category
	state.SearchTerm = q.Get("q")
	for _, raw := range q["tag"] {
		tag, ok := catalog.ParseTag(raw, catalog.MenuTags)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown tag "+strconv.Quote(raw))
			return
		}
		state = catalog.ToggleTag(state, tag)
	}

	menu := catalog.Menu()
	writeJSON(w, http.StatusOK, menuResponse{
		Filter:     state,
		Items:      catalog.Filter(menu, state),
		Categories: catalog.CategoryCounts(menu, catalog.MenuCategories),
		Tags:       catalog.MenuTags,
	})
}

type photo struct {
	models.CatalogEntry
	Liked bool `json:"liked"`
}

type galleryResponse struct {
	Category   models.Category        `json:"category"`
	Photos     []photo                `json:"photos"`
	Categories []models.CategoryCount `json:"categories"`
}

func (s *Server) galleryHandler(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFrom(r)

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := catalog.ParseCategory(raw, catalog.GalleryCategories)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		visitor.SetGalleryCategory(category)
	}

	likes := visitor.Likes()
	visible := visitor.VisibleGallery()
	photos := make([]photo, len(visible))
	for i, entry := range visible {
		entry.Likes = catalog.LikeCount(entry, likes)
		photos[i] = photo{CatalogEntry: entry, Liked: likes.Has(entry.ID)}
	}

	writeJSON(w, http.StatusOK, galleryResponse{
		Category:   visitor.GalleryCategory(),
		Photos:     photos,
		Categories: catalog.CategoryCounts(catalog.Gallery(), catalog.GalleryCategories),
	})
}

type likeResponse struct {
	ID    string `json:"id"`
	Liked bool   `json:"liked"`
	Likes int    `json:"likes"`
}

func (s *Server) likeHandler(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFrom(r)
	id := mux.Vars(r)["id"]

	entry, liked, err := visitor.ToggleLike(id)
	if errors.Is(err, catalog.ErrUnknownEntry) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{
		ID:    id,
		Liked: liked,
		Likes: catalog.LikeCount(entry, visitor.Likes()),
	})
}

type infoResponse struct {
	models.BusinessInfo
	Open    bool               `json:"open"`
	Status  string             `json:"status"`
	Today   models.DaySchedule `json:"today"`
	Display []dayHours         `json:"hours_display"`
}

type dayHours struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	IsToday bool   `json:"is_today"`
}

func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	info := s.panel.Info()
	today := s.panel.Today(now)

	display := make([]dayHours, len(info.Hours))
	for i, d := range info.Hours {
		display[i] = dayHours{
			Day:     d.Day.String(),
			Time:    business.FormatHours(d),
			IsToday: d.Day == today.Day,
		}
	}

	writeJSON(w, http.StatusOK, infoResponse{
		BusinessInfo: info,
		Open:         s.panel.IsOpen(now),
		Status:       s.panel.Status(now),
		Today:        today,
		Display:      display,
	})
}

type loyaltyResponse struct {
	models.LoyaltyState
	CanSpin    bool                 `json:"can_spin"`
	NextSpinAt time.Time            `json:"next_spin_at"`
	Progress   float64              `json:"progress"`
	PointsToGo int                  `json:"points_to_go"`
	Rewards    []models.Reward      `json:"rewards"`
	Earning    []models.EarningRule `json:"earning"`
	Prizes     []string             `json:"prizes"`
}

func (s *Server) loyaltyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loyaltyView(visitorFrom(r).Loyalty, s.now()))
}

func (s *Server) loyaltyView(acct *loyalty.Account, now time.Time) loyaltyResponse {
	state := acct.State()
	return loyaltyResponse{
		LoyaltyState: state,
		CanSpin:      acct.CanSpin(now),
		NextSpinAt:   loyalty.NextSpinAt(state.LastSpin, now),
		Progress:     loyalty.Progress(state.Points),
		PointsToGo:   loyalty.PointsToGo(state.Points),
		Rewards:      loyalty.Rewards(state.Points),
		Earning:      loyalty.EarningRules,
		Prizes:       loyalty.Prizes,
	}
}

// spinHandler starts a spin. The result lands in last_result of
// GET /loyalty once the wheel stops.
func (s *Server) spinHandler(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFrom(r)
	now := s.now()

	err := visitor.Loyalty.Spin(now, func(result models.SpinResult) {
		s.logger.Info("Wheel spin settled",
			zap.String("visitor_id", visitor.ID),
			zap.String("prize", result.Prize),
			zap.Int("points", result.Points))
	})
	switch {
	case errors.Is(err, loyalty.ErrAlreadySpinning):
		writeError(w, http.StatusConflict, "the wheel is already spinning")
		return
	case errors.Is(err, loyalty.ErrSpinUnavailable):
		writeError(w, http.StatusTooManyRequests, "you can spin once every 24 hours")
		return
	case err != nil:
		s.logger.Error("Failed to spin wheel", zap.Error(err), zap.String("visitor_id", visitor.ID))
		writeError(w, http.StatusInternalServerError, "spin failed")
		return
	}

	writeJSON(w, http.StatusAccepted, s.loyaltyView(visitor.Loyalty, now))
}

type chatRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type transcriptResponse struct {
	Messages     []*models.ChatMessage `json:"messages"`
	Typing       bool                  `json:"typing"`
	QuickActions []string              `json:"quick_actions"`
}

func (s *Server) transcriptHandler(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFrom(r)
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	if _, err := visitor.Chat.Start(ctx); err != nil {
		s.logger.Error("Failed to start conversation", zap.Error(err), zap.String("visitor_id", visitor.ID))
		writeError(w, http.StatusInternalServerError, "could not load chat")
		return
	}
	msgs, err := visitor.Chat.Transcript(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to load transcript", zap.Error(err), zap.String("visitor_id", visitor.ID))
		writeError(w, http.StatusInternalServerError, "could not load chat")
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{
		Messages:     msgs,
		Typing:       visitor.Chat.Typing(),
		QuickActions: classifier.QuickActions,
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFrom(r)
	ctx := r.Context()

	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat message")
		return
	}

	if _, err := visitor.Chat.Start(ctx); err != nil {
		s.logger.Error("Failed to start conversation", zap.Error(err), zap.String("visitor_id", visitor.ID))
		writeError(w, http.StatusInternalServerError, "could not send message")
		return
	}

	msg, err := visitor.Chat.Send(ctx, req.Text, nil)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is empty")
		return
	case err != nil:
		s.logger.Error("Failed to send chat message", zap.Error(err), zap.String("visitor_id", visitor.ID))
		writeError(w, http.StatusInternalServerError, "could not send message")
		return
	}

	writeJSON(w, http.StatusAccepted, msg)
}

type uploadResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Field    string `json:"field,omitempty"`
}

// uploadHandler checks a photo the visitor wants to share. Nothing is stored.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	var f upload.File
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload description")
		return
	}

	if err := upload.Validate(f); err != nil {
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, uploadResponse{Reason: verr.Reason, Field: verr.Field})
			return
		}
		s.logger.Error("Failed to validate upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Accepted: true})
}
