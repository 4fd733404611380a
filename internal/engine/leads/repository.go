package leads

import (
	"database/sql"
	"encoding/json"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a lead keyed by leadgen_id. Redelivery of the same leadgen_id
// refreshes the captured data and classification but leaves the workflow
// columns (stage, outcome, converted_at, deal_value) untouched, so progress
// made by sales tooling survives a replay.
func (r *Repository) Upsert(lead *Lead) error {
	query := `
		INSERT INTO leads (
			id, source, leadgen_id, page_id, form_id, ad_id, created_time,
			full_name, email, phone, city, raw_payload,
			intent_label, intent_score, intent_reasons,
			stage, outcome, inserted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(leadgen_id) DO UPDATE SET
			source = excluded.source,
			page_id = excluded.page_id,
			form_id = excluded.form_id,
			ad_id = excluded.ad_id,
			created_time = excluded.created_time,
			full_name = excluded.full_name,
			email = excluded.email,
			phone = excluded.phone,
			city = excluded.city,
			raw_payload = excluded.raw_payload,
			intent_label = excluded.intent_label,
			intent_score = excluded.intent_score,
			intent_reasons = excluded.intent_reasons
	`

	reasonsJSON, _ := json.Marshal(lead.IntentReasons)

	_, err := r.db.Exec(query,
		lead.ID,
		lead.Source,
		nullString(lead.LeadgenID),
		lead.PageID,
		lead.FormID,
		lead.AdID,
		lead.CreatedTime,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.City,
		string(lead.RawPayload),
		lead.IntentLabel,
		lead.IntentScore,
		string(reasonsJSON),
		lead.Stage,
		lead.Outcome,
		lead.InsertedAt,
	)

	return err
}

// Create inserts a lead with no idempotency key (landing-form intake).
func (r *Repository) Create(lead *Lead) error {
	query := `
		INSERT INTO leads (
			id, source, leadgen_id, page_id, form_id, ad_id, created_time,
			full_name, email, phone, city, raw_payload,
			intent_label, intent_score, intent_reasons,
			stage, outcome, inserted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	reasonsJSON, _ := json.Marshal(lead.IntentReasons)

	_, err := r.db.Exec(query,
		lead.ID,
		lead.Source,
		nullString(lead.LeadgenID),
		lead.PageID,
		lead.FormID,
		lead.AdID,
		lead.CreatedTime,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.City,
		string(lead.RawPayload),
		lead.IntentLabel,
		lead.IntentScore,
		string(reasonsJSON),
		lead.Stage,
		lead.Outcome,
		lead.InsertedAt,
	)

	return err
}

func (r *Repository) GetByID(id string) (*Lead, error) {
	query := selectColumns + " FROM leads WHERE id = ?"
	row := r.db.QueryRow(query, id)
	return scanLead(row)
}

func (r *Repository) GetByLeadgenID(leadgenID string) (*Lead, error) {
	query := selectColumns + " FROM leads WHERE leadgen_id = ?"
	row := r.db.QueryRow(query, leadgenID)
	return scanLead(row)
}

func (r *Repository) List(limit int) ([]*Lead, error) {
	query := selectColumns + `
		FROM leads
		ORDER BY inserted_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lead)
	}
	return result, rows.Err()
}

func (r *Repository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM leads WHERE id = ?", id)
	return err
}

// UpdateStage moves a lead through the sales workflow. convertedAt and
// dealValue are only written when provided.
func (r *Repository) UpdateStage(id, stage, outcome string, convertedAt *int64, dealValue *float64) error {
	query := `
		UPDATE leads SET
			stage = ?,
			outcome = ?,
			converted_at = COALESCE(?, converted_at),
			deal_value = COALESCE(?, deal_value)
		WHERE id = ?
	`
	_, err := r.db.Exec(query, stage, outcome, convertedAt, dealValue, id)
	return err
}

// CountByLeadgenID exists for idempotency checks.
func (r *Repository) CountByLeadgenID(leadgenID string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM leads WHERE leadgen_id = ?", leadgenID).Scan(&n)
	return n, err
}

const selectColumns = `
	SELECT id, source, leadgen_id, page_id, form_id, ad_id, created_time,
	       full_name, email, phone, city, raw_payload,
	       intent_label, intent_score, intent_reasons,
	       stage, outcome, converted_at, deal_value, inserted_at`

func scanLead(s interface {
	Scan(dest ...interface{}) error
}) (*Lead, error) {
	var lead Lead
	var leadgenID sql.NullString
	var rawPayload, reasonsRaw []byte
	var convertedAt sql.NullInt64
	var dealValue sql.NullFloat64

	err := s.Scan(
		&lead.ID,
		&lead.Source,
		&leadgenID,
		&lead.PageID,
		&lead.FormID,
		&lead.AdID,
		&lead.CreatedTime,
		&lead.FullName,
		&lead.Email,
		&lead.Phone,
		&lead.City,
		&rawPayload,
		&lead.IntentLabel,
		&lead.IntentScore,
		&reasonsRaw,
		&lead.Stage,
		&lead.Outcome,
		&convertedAt,
		&dealValue,
		&lead.InsertedAt,
	)

	if err != nil {
		return nil, err
	}

	if leadgenID.Valid {
		lead.LeadgenID = leadgenID.String
	}
	if convertedAt.Valid {
		val := convertedAt.Int64
		lead.ConvertedAt = &val
	}
	if dealValue.Valid {
		val := dealValue.Float64
		lead.DealValue = &val
	}
	if len(rawPayload) > 0 {
		lead.RawPayload = json.RawMessage(rawPayload)
	}
	if len(reasonsRaw) > 0 {
		json.Unmarshal(reasonsRaw, &lead.IntentReasons)
	}

	return &lead, nil
}

// nullString keeps leadgen_id NULL for form leads so the unique index only
// binds platform-delivered rows.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
