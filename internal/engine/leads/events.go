package leads

import "database/sql"

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *LeadEvent) error {
	query := `
		INSERT INTO lead_events (id, lead_id, event_type, from_stage, to_stage, note, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		event.ID,
		event.LeadID,
		event.EventType,
		nullString(event.FromStage),
		nullString(event.ToStage),
		nullString(event.Note),
		event.Value,
		event.CreatedAt,
	)
	return err
}

func (r *EventRepository) ListByLead(leadID string) ([]*LeadEvent, error) {
	query := `
		SELECT id, lead_id, event_type, from_stage, to_stage, note, value, created_at
		FROM lead_events
		WHERE lead_id = ?
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*LeadEvent
	for rows.Next() {
		var e LeadEvent
		var fromStage, toStage, note sql.NullString
		var value sql.NullFloat64

		if err := rows.Scan(&e.ID, &e.LeadID, &e.EventType, &fromStage, &toStage, &note, &value, &e.CreatedAt); err != nil {
			return nil, err
		}

		e.FromStage = fromStage.String
		e.ToStage = toStage.String
		e.Note = note.String
		if value.Valid {
			val := value.Float64
			e.Value = &val
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
