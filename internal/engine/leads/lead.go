package leads

import "encoding/json"

const (
	SourceMetaLeadAds = "meta_lead_ads"
	SourceLandingForm = "landing_form"
)

const (
	OutcomeOpen = "open"
	OutcomeWon  = "won"
	OutcomeLost = "lost"
)

// Lead is the persisted record produced by the intake pipeline. LeadgenID is
// the idempotency key for platform-delivered leads; landing-form leads have
// none.
type Lead struct {
	ID            string          `json:"id"`
	Source        string          `json:"source"`
	LeadgenID     string          `json:"leadgen_id,omitempty"`
	PageID        string          `json:"page_id,omitempty"`
	FormID        string          `json:"form_id,omitempty"`
	AdID          string          `json:"ad_id,omitempty"`
	CreatedTime   string          `json:"created_time,omitempty"`
	FullName      string          `json:"full_name,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	City          string          `json:"city,omitempty"`
	RawPayload    json.RawMessage `json:"raw_payload,omitempty"`
	IntentLabel   string          `json:"intent_label"`
	IntentScore   int             `json:"intent_score"`
	IntentReasons []string        `json:"intent_reasons"`
	Stage         string          `json:"stage"`
	Outcome       string          `json:"outcome"`
	ConvertedAt   *int64          `json:"converted_at,omitempty"`
	DealValue     *float64        `json:"deal_value,omitempty"`
	InsertedAt    int64           `json:"inserted_at"`
}

// LeadEvent is one row of the per-lead audit trail: creation, stage moves,
// and won/lost outcomes.
type LeadEvent struct {
	ID        string   `json:"id"`
	LeadID    string   `json:"lead_id"`
	EventType string   `json:"event_type"`
	FromStage string   `json:"from_stage,omitempty"`
	ToStage   string   `json:"to_stage,omitempty"`
	Note      string   `json:"note,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	CreatedAt int64    `json:"created_at"`
}
