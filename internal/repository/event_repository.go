package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"changehub/backend/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

type CreateEventInput struct {
	Title       string
	EventDate   time.Time
	DateText    string
	Time        string
	Location    string
	Description string
	Category    string
	Featured    bool
	Type        model.EventType
	OrganiserID string
}

type UpdateEventInput struct {
	Title       *string
	EventDate   *time.Time
	DateText    *string
	Time        *string
	Location    *string
	Description *string
	Category    *string
	Featured    *bool
	Type        *model.EventType
}

type EventRepository interface {
	Create(ctx context.Context, input CreateEventInput) (model.Event, error)
	GetByID(ctx context.Context, id string) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, id string, input UpdateEventInput) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) (bool, error)
	CountAttendees(ctx context.Context, eventID string) (int64, error)
	ListAttendees(ctx context.Context, eventID string) ([]model.UserRef, error)
}

type SQLEventRepository struct {
	db *sql.DB
}

func NewSQLEventRepository(db *sql.DB) *SQLEventRepository {
	return &SQLEventRepository{db: db}
}

const insertEventSQL = `
INSERT INTO events (id, title, event_date, date_text, time_text, location, description, category, featured, event_type, organiser_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectEventSQL = `
SELECT id, title, event_date, date_text, time_text, location, description, category, featured, event_type, organiser_id, created_at, updated_at
FROM events
`

func (r *SQLEventRepository) Create(ctx context.Context, input CreateEventInput) (model.Event, error) {
	now := time.Now().UTC()
	event := model.Event{
		ID:          uuid.NewString(),
		Title:       input.Title,
		EventDate:   input.EventDate,
		DateText:    input.DateText,
		Time:        input.Time,
		Location:    input.Location,
		Description: input.Description,
		Category:    input.Category,
		Featured:    input.Featured,
		Type:        input.Type,
		OrganiserID: input.OrganiserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		event.ID,
		event.Title,
		event.EventDate,
		event.DateText,
		event.Time,
		event.Location,
		event.Description,
		event.Category,
		event.Featured,
		string(event.Type),
		event.OrganiserID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return model.Event{}, err
	}
	return event, nil
}

func (r *SQLEventRepository) GetByID(ctx context.Context, id string) (model.Event, error) {
	event := model.Event{}
	err := r.db.QueryRowContext(ctx, selectEventSQL+"WHERE id = ? LIMIT 1", id).Scan(
		&event.ID,
		&event.Title,
		&event.EventDate,
		&event.DateText,
		&event.Time,
		&event.Location,
		&event.Description,
		&event.Category,
		&event.Featured,
		&event.Type,
		&event.OrganiserID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return event, err
}

func (r *SQLEventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, selectEventSQL+"ORDER BY event_date DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Event, 0)
	for rows.Next() {
		item := model.Event{}
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.EventDate,
			&item.DateText,
			&item.Time,
			&item.Location,
			&item.Description,
			&item.Category,
			&item.Featured,
			&item.Type,
			&item.OrganiserID,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLEventRepository) Update(ctx context.Context, id string, input UpdateEventInput) error {
	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrEventNotFound
	}

	sets, args := buildEventUpdateClause(input)
	args = append(args, time.Now().UTC(), id)
	query := "UPDATE events SET " + strings.Join(append(sets, "updated_at = ?"), ", ") + " WHERE id = ?"
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func buildEventUpdateClause(input UpdateEventInput) ([]string, []interface{}) {
	sets := make([]string, 0, 9)
	args := make([]interface{}, 0, 9)

	if input.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *input.Title)
	}
	if input.EventDate != nil {
		sets = append(sets, "event_date = ?")
		args = append(args, *input.EventDate)
	}
	if input.DateText != nil {
		sets = append(sets, "date_text = ?")
		args = append(args, *input.DateText)
	}
	if input.Time != nil {
		sets = append(sets, "time_text = ?")
		args = append(args, *input.Time)
	}
	if input.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *input.Location)
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *input.Category)
	}
	if input.Featured != nil {
		sets = append(sets, "featured = ?")
		args = append(args, *input.Featured)
	}
	if input.Type != nil {
		sets = append(sets, "event_type = ?")
		args = append(args, string(*input.Type))
	}
	return sets, args
}

func (r *SQLEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *SQLEventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLEventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	return addMember(ctx, r.db, eventMembersTable, eventMemberCol, eventID, userID)
}

func (r *SQLEventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	return removeMember(ctx, r.db, eventMembersTable, eventMemberCol, eventID, userID)
}

func (r *SQLEventRepository) CountAttendees(ctx context.Context, eventID string) (int64, error) {
	return countMembers(ctx, r.db, eventMembersTable, eventMemberCol, eventID)
}

func (r *SQLEventRepository) ListAttendees(ctx context.Context, eventID string) ([]model.UserRef, error) {
	return listMembers(ctx, r.db, eventMembersTable, eventMemberCol, eventID)
}
