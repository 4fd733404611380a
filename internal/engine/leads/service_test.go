package leads

import (
	"errors"
	"testing"
)

func validForm() *FormLead {
	return &FormLead{
		Name:          "Asha Rao",
		Phone:         "+911234567890",
		Email:         "asha@example.com",
		City:          "Pune",
		State:         "MH",
		Pincode:       "411001",
		Intent:        "buy",
		Bhk:           "2bhk",
		InterestLevel: "extremely_sure",
	}
}

func TestService_CreateFromForm(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	events := NewEventRepository(db)
	svc := NewService(repo, events)

	lead, err := svc.CreateFromForm(validForm())
	if err != nil {
		t.Fatalf("CreateFromForm: %v", err)
	}

	if lead.Source != SourceLandingForm {
		t.Errorf("Source = %q", lead.Source)
	}
	if lead.IntentLabel != "for_sure" || lead.IntentScore != 95 {
		t.Errorf("interest scoring wrong: label=%q score=%d", lead.IntentLabel, lead.IntentScore)
	}
	if lead.Stage != StageNew || lead.Outcome != OutcomeOpen {
		t.Errorf("workflow defaults wrong: %+v", lead)
	}
	if lead.LeadgenID != "" {
		t.Errorf("form lead must not carry a leadgen id: %q", lead.LeadgenID)
	}

	evts, err := events.ListByLead(lead.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(evts) != 1 || evts[0].EventType != EventCreated {
		t.Errorf("expected one created event, got %+v", evts)
	}
}

func TestService_CreateFromForm_Validation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := NewService(NewRepository(db), NewEventRepository(db))

	tests := []struct {
		name   string
		mutate func(*FormLead)
	}{
		{"Missing name", func(f *FormLead) { f.Name = "" }},
		{"Missing pincode", func(f *FormLead) { f.Pincode = "" }},
		{"Bad email", func(f *FormLead) { f.Email = "not-an-email" }},
		{"Bad intent", func(f *FormLead) { f.Intent = "lease" }},
		{"Bad bhk", func(f *FormLead) { f.Bhk = "5bhk" }},
		{"Bad interest level", func(f *FormLead) { f.InterestLevel = "very" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)

			_, err := svc.CreateFromForm(form)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestService_ChangeStage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	events := NewEventRepository(db)
	svc := NewService(repo, events)

	lead, err := svc.CreateFromForm(validForm())
	if err != nil {
		t.Fatalf("CreateFromForm: %v", err)
	}

	value := 4500000.0
	updated, err := svc.ChangeStage(lead.ID, &StageChange{
		ToStage:   "closed",
		Outcome:   OutcomeWon,
		Note:      "signed",
		DealValue: &value,
	})
	if err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}

	if updated.Stage != "closed" || updated.Outcome != OutcomeWon {
		t.Errorf("stage not applied: %+v", updated)
	}
	if updated.ConvertedAt == nil {
		t.Error("won outcome should stamp converted_at")
	}
	if updated.DealValue == nil || *updated.DealValue != value {
		t.Errorf("deal value not stored: %+v", updated.DealValue)
	}

	evts, _ := events.ListByLead(lead.ID)
	if len(evts) != 2 {
		t.Fatalf("expected created + won events, got %d", len(evts))
	}
	var won *LeadEvent
	for _, e := range evts {
		if e.EventType == OutcomeWon {
			won = e
		}
	}
	if won == nil {
		t.Fatal("no won event recorded")
	}
	if won.FromStage != StageNew || won.ToStage != "closed" {
		t.Errorf("won event wrong: %+v", won)
	}
}

func TestService_ChangeStage_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := NewService(NewRepository(db), NewEventRepository(db))

	if _, err := svc.ChangeStage("missing", &StageChange{ToStage: "contacted"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
