package entities

import (
	"time"

	"github.com/google/uuid"
)

// ShowLifecycle is the coarse lifecycle of a broadcast. Ended and cancelled
// are terminal and override everything else.
type ShowLifecycle string

const (
	ShowScheduled ShowLifecycle = "scheduled"
	ShowLive      ShowLifecycle = "live"
	ShowEnded     ShowLifecycle = "ended"
	ShowCancelled ShowLifecycle = "cancelled"
)

func (s ShowLifecycle) IsTerminal() bool {
	return s == ShowEnded || s == ShowCancelled
}

// StreamPhase is the fine-grained broadcast phase, independent of the
// lifecycle status until the stream actually starts.
type StreamPhase string

const (
	StreamNone     StreamPhase = "none"
	StreamStarting StreamPhase = "starting"
	StreamLive     StreamPhase = "live"
)

type Show struct {
	ShowID   uuid.UUID `json:"show_id" db:"show_id"`
	SellerID uuid.UUID `json:"seller_id" db:"seller_id"`
	Title    string    `json:"title" db:"title"`

	LifecycleStatus ShowLifecycle `json:"lifecycle_status" db:"lifecycle_status"`
	StreamPhase     StreamPhase   `json:"stream_phase" db:"stream_phase"`

	ServerViewerCount    int `json:"server_viewer_count" db:"server_viewer_count"`
	DisplayedViewerCount int `json:"displayed_viewer_count" db:"displayed_viewer_count"`
	// MaxViewerCount is a monotonic high-water mark, never reset for the
	// lifetime of the show.
	MaxViewerCount int `json:"max_viewer_count" db:"max_viewer_count"`

	FeaturedProductID *uuid.UUID `json:"featured_product_id" db:"featured_product_id"`

	StartTime time.Time `json:"start_time" db:"start_time"`
}

type ShowCreateResponse struct {
	ShowID uuid.UUID `json:"show_id"`
}

// SessionState is the buyer-visible projection of a show's lifecycle,
// derived on every fresh read of the Show record.
type SessionState struct {
	CanShowProducts bool `json:"can_show_products"`
	CanBuy          bool `json:"can_buy"`
	IsLive          bool `json:"is_live"`
}
