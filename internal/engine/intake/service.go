package intake

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"leadflow/internal/engine/intent"
	"leadflow/internal/engine/leads"
	"leadflow/internal/platform/graph"
)

// Payload is the webhook delivery body. Entry and Changes are both optional;
// a delivery with neither simply saves nothing.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Time    int64    `json:"time"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	LeadgenID string `json:"leadgen_id"`
	PageID    string `json:"page_id"`
	FormID    string `json:"form_id"`
}

// DetailFetcher retrieves the authoritative lead record for a leadgen id.
type DetailFetcher interface {
	FetchLead(ctx context.Context, leadgenID string) (*graph.LeadDetail, error)
}

// LeadStore is the idempotent write boundary keyed by leadgen_id.
type LeadStore interface {
	Upsert(lead *leads.Lead) error
}

type Service struct {
	fetcher DetailFetcher
	store   LeadStore
}

func NewService(fetcher DetailFetcher, store LeadStore) *Service {
	return &Service{fetcher: fetcher, store: store}
}

// Process walks every change of every entry and saves one lead per non-empty
// leadgen_id. Leads are handled one at a time so store writes observe fetch
// order. A failed fetch or write skips that lead only; siblings still run.
// The returned count is the number of successful upserts.
func (s *Service) Process(ctx context.Context, entries []Entry) int {
	saved := 0

	for _, entry := range entries {
		for _, change := range entry.Changes {
			leadgenID := change.Value.LeadgenID
			if leadgenID == "" {
				continue
			}

			detail, err := s.fetcher.FetchLead(ctx, leadgenID)
			if err != nil {
				log.Error().Err(err).Str("leadgen_id", leadgenID).Msg("lead detail fetch failed, skipping")
				continue
			}

			lead := s.buildLead(leadgenID, detail)
			if err := s.store.Upsert(lead); err != nil {
				log.Error().Err(err).Str("leadgen_id", leadgenID).Msg("lead upsert failed, skipping")
				continue
			}

			saved++
		}
	}

	return saved
}

func (s *Service) buildLead(leadgenID string, detail *graph.LeadDetail) *leads.Lead {
	fullName := ExtractFirst(detail.FieldData, "full_name", "name")
	email := ExtractField(detail.FieldData, "email")
	phone := ExtractFirst(detail.FieldData, "phone_number", "phone")

	// The classifier sees everything the lead typed, not just the extracted
	// columns, so answers to custom form questions still count.
	fieldJSON, _ := json.Marshal(detail.FieldData)
	blob := strings.Join([]string{fullName, email, phone, string(fieldJSON)}, " ")
	cls := intent.Classify(blob)

	raw, _ := json.Marshal(detail)

	return &leads.Lead{
		ID:            uuid.New().String(),
		Source:        leads.SourceMetaLeadAds,
		LeadgenID:     leadgenID,
		PageID:        detail.PageID,
		FormID:        detail.FormID,
		AdID:          detail.AdID,
		CreatedTime:   detail.CreatedTime,
		FullName:      fullName,
		Email:         email,
		Phone:         phone,
		RawPayload:    raw,
		IntentLabel:   cls.Label,
		IntentScore:   cls.Score,
		IntentReasons: cls.Reasons,
		Stage:         leads.StageNew,
		Outcome:       leads.OutcomeOpen,
		InsertedAt:    time.Now().Unix(),
	}
}
