package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"leadflow/internal/engine/intake"
	"leadflow/internal/engine/leads"
	"leadflow/internal/platform/config"
	"leadflow/internal/platform/graph"
)

type fakeFetcher struct {
	details map[string]*graph.LeadDetail
}

func (f *fakeFetcher) FetchLead(_ context.Context, id string) (*graph.LeadDetail, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, errors.New("graph fetch failed")
}

func setupWebhookTest(t *testing.T) (*WebhookHandler, *leads.Repository) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE leads (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		leadgen_id TEXT UNIQUE,
		page_id TEXT, form_id TEXT, ad_id TEXT, created_time TEXT,
		full_name TEXT, email TEXT, phone TEXT, city TEXT, raw_payload TEXT,
		intent_label TEXT NOT NULL DEFAULT 'unknown',
		intent_score INTEGER NOT NULL DEFAULT 0,
		intent_reasons TEXT,
		stage TEXT NOT NULL DEFAULT 'new',
		outcome TEXT NOT NULL DEFAULT 'open',
		converted_at INTEGER, deal_value REAL,
		inserted_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	repo := leads.NewRepository(db)
	fetcher := &fakeFetcher{details: map[string]*graph.LeadDetail{
		"lg1": {
			CreatedTime: "2024-05-01T10:00:00+0000",
			AdID:        "ad1", FormID: "form1", PageID: "page1",
			FieldData: []graph.Field{
				{Name: "full_name", Values: []string{"Asha Rao"}},
				{Name: "email", Values: []string{"asha@example.com"}},
			},
		},
	}}

	svc := intake.NewService(fetcher, repo)
	handler := NewWebhookHandler(svc, config.MetaConfig{
		AppSecret:   "app-secret",
		VerifyToken: "verify-me",
	})
	return handler, repo
}

func TestWebhookHandler_Verify(t *testing.T) {
	handler, _ := setupWebhookTest(t)

	t.Run("Valid challenge", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=challenge123", nil)
		rr := httptest.NewRecorder()

		handler.Verify(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if rr.Body.String() != "challenge123" {
			t.Errorf("body = %q, want raw challenge", rr.Body.String())
		}
	})

	t.Run("Wrong token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=x", nil)
		rr := httptest.NewRecorder()

		handler.Verify(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("Wrong mode", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=x", nil)
		rr := httptest.NewRecorder()

		handler.Verify(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})
}

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature-256", "sha256="+intake.Sign("app-secret", body))
	return req
}

func TestWebhookHandler_Receive(t *testing.T) {
	handler, repo := setupWebhookTest(t)

	body := []byte(`{
		"object": "page",
		"entry": [
			{"id": "page1", "changes": [{"field": "leadgen", "value": {"leadgen_id": "lg1"}}]},
			{"id": "page2", "changes": [{"field": "leadgen", "value": {}}]}
		]
	}`)

	rr := httptest.NewRecorder()
	handler.Receive(rr, signedRequest(t, body))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		OK    bool `json:"ok"`
		Saved int  `json:"saved"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.Saved != 1 {
		t.Errorf("response = %+v, want ok=true saved=1", resp)
	}

	lead, err := repo.GetByLeadgenID("lg1")
	if err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	if lead.FullName != "Asha Rao" {
		t.Errorf("stored lead wrong: %+v", lead)
	}
}

func TestWebhookHandler_Receive_BadSignature(t *testing.T) {
	handler, _ := setupWebhookTest(t)

	body := []byte(`{"entry":[]}`)
	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256="+intake.Sign("other-secret", body))

	rr := httptest.NewRecorder()
	handler.Receive(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestWebhookHandler_Receive_MissingSignature(t *testing.T) {
	handler, _ := setupWebhookTest(t)

	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader([]byte(`{"entry":[]}`)))
	rr := httptest.NewRecorder()
	handler.Receive(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestWebhookHandler_Receive_MalformedPayload(t *testing.T) {
	handler, _ := setupWebhookTest(t)

	body := []byte(`{not json`)
	rr := httptest.NewRecorder()
	handler.Receive(rr, signedRequest(t, body))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestWebhookHandler_Receive_Redelivery(t *testing.T) {
	handler, repo := setupWebhookTest(t)

	body := []byte(`{"entry":[{"changes":[{"value":{"leadgen_id":"lg1"}}]}]}`)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.Receive(rr, signedRequest(t, body))
		if rr.Code != http.StatusOK {
			t.Fatalf("delivery %d: status %d", i, rr.Code)
		}
	}

	count, err := repo.CountByLeadgenID("lg1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("redelivery duplicated the lead: count = %d", count)
	}
}
