package leads

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"leadflow/internal/engine/intent"
	"leadflow/internal/pkg/validator"
)

const (
	StageNew = "new"

	EventCreated      = "created"
	EventStageChanged = "stage_changed"
)

var ErrNotFound = errors.New("lead not found")

// ValidationError marks a rejected form payload, as opposed to a storage
// failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// FormLead is the payload accepted from the public landing form.
type FormLead struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Intent        string `json:"intent"`
	Bhk           string `json:"bhk"`
	InterestLevel string `json:"interest_level"`
}

type StageChange struct {
	ToStage   string
	Outcome   string
	Note      string
	DealValue *float64
}

type Service struct {
	repo   *Repository
	events *EventRepository
}

func NewService(repo *Repository, events *EventRepository) *Service {
	return &Service{repo: repo, events: events}
}

// CreateFromForm validates and stores a landing-form lead, scoring it from
// the declared interest level, and records a creation event. The event write
// must not block lead ingestion; its failure is only logged.
func (s *Service) CreateFromForm(form *FormLead) (*Lead, error) {
	if err := ValidateFormLead(form); err != nil {
		return nil, err
	}

	scoring := intent.FromInterestLevel(form.InterestLevel)
	raw, _ := json.Marshal(form)
	now := time.Now()

	lead := &Lead{
		ID:            uuid.New().String(),
		Source:        SourceLandingForm,
		CreatedTime:   now.UTC().Format(time.RFC3339),
		FullName:      form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		City:          form.City,
		RawPayload:    raw,
		IntentLabel:   scoring.Label,
		IntentScore:   scoring.Score,
		IntentReasons: scoring.Reasons,
		Stage:         StageNew,
		Outcome:       OutcomeOpen,
		InsertedAt:    now.Unix(),
	}

	if err := s.repo.Create(lead); err != nil {
		return nil, err
	}

	if err := s.events.Create(&LeadEvent{
		ID:        uuid.New().String(),
		LeadID:    lead.ID,
		EventType: EventCreated,
		Note:      "Lead created from landing form",
		CreatedAt: now.Unix(),
	}); err != nil {
		log.Warn().Err(err).Str("lead_id", lead.ID).Msg("lead_events insert failed")
	}

	return lead, nil
}

// ChangeStage moves a lead to a new stage/outcome and appends the matching
// audit event. A won outcome stamps converted_at.
func (s *Service) ChangeStage(id string, change *StageChange) (*Lead, error) {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	toStage := change.ToStage
	if toStage == "" {
		toStage = StageNew
	}
	outcome := change.Outcome
	if outcome == "" {
		outcome = OutcomeOpen
	}

	var convertedAt *int64
	now := time.Now().Unix()
	if outcome == OutcomeWon {
		convertedAt = &now
	}

	if err := s.repo.UpdateStage(id, toStage, outcome, convertedAt, change.DealValue); err != nil {
		return nil, err
	}

	eventType := EventStageChanged
	switch outcome {
	case OutcomeWon:
		eventType = OutcomeWon
	case OutcomeLost:
		eventType = OutcomeLost
	}

	if err := s.events.Create(&LeadEvent{
		ID:        uuid.New().String(),
		LeadID:    id,
		EventType: eventType,
		FromStage: lead.Stage,
		ToStage:   toStage,
		Note:      change.Note,
		Value:     change.DealValue,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return s.repo.GetByID(id)
}

var formIntents = []string{"buy", "rent"}
var formBhks = []string{"studio", "1bhk", "2bhk", "3bhk", "4bhk", "4+bhk", "other"}
var formInterestLevels = []string{"extremely_sure", "highly_interested", "interested"}

func ValidateFormLead(form *FormLead) error {
	required := []struct {
		field string
		value string
	}{
		{"name", form.Name},
		{"phone", form.Phone},
		{"email", form.Email},
		{"city", form.City},
		{"state", form.State},
		{"pincode", form.Pincode},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{msg: r.field + " is required"}
		}
	}

	if !validator.IsValidEmail(form.Email) {
		return &ValidationError{msg: "invalid email"}
	}
	if !oneOf(form.Intent, formIntents) {
		return &ValidationError{msg: "invalid intent"}
	}
	if !oneOf(form.Bhk, formBhks) {
		return &ValidationError{msg: "invalid bhk"}
	}
	if !oneOf(form.InterestLevel, formInterestLevels) {
		return &ValidationError{msg: "invalid interest_level"}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
