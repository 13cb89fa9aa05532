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

var ErrCampaignNotFound = errors.New("campaign not found")

type CreateCampaignInput struct {
	Title       string
	Description string
	Category    string
	Progress    int64
	Target      int64
	TimeLeft    string
	Image       string
	Urgent      bool
	OrganiserID string
}

type UpdateCampaignInput struct {
	Title       *string
	Description *string
	Category    *string
	Progress    *int64
	Target      *int64
	TimeLeft    *string
	Image       *string
	Urgent      *bool
}

type CampaignRepository interface {
	Create(ctx context.Context, input CreateCampaignInput) (model.Campaign, error)
	GetByID(ctx context.Context, id string) (model.Campaign, error)
	List(ctx context.Context) ([]model.Campaign, error)
	Update(ctx context.Context, id string, input UpdateCampaignInput) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	AddSupporter(ctx context.Context, campaignID, userID string) error
	RemoveSupporter(ctx context.Context, campaignID, userID string) (bool, error)
	CountSupporters(ctx context.Context, campaignID string) (int64, error)
	ListSupporters(ctx context.Context, campaignID string) ([]model.UserRef, error)
}

type SQLCampaignRepository struct {
	db *sql.DB
}

func NewSQLCampaignRepository(db *sql.DB) *SQLCampaignRepository {
	return &SQLCampaignRepository{db: db}
}

const insertCampaignSQL = `
INSERT INTO campaigns (id, title, description, category, progress, target, time_left, image, urgent, organiser_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectCampaignSQL = `
SELECT id, title, description, category, progress, target, time_left, image, urgent, organiser_id, created_at, updated_at
FROM campaigns
`

func (r *SQLCampaignRepository) Create(ctx context.Context, input CreateCampaignInput) (model.Campaign, error) {
	now := time.Now().UTC()
	campaign := model.Campaign{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Progress:    input.Progress,
		Target:      input.Target,
		TimeLeft:    input.TimeLeft,
		Image:       input.Image,
		Urgent:      input.Urgent,
		OrganiserID: input.OrganiserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.ExecContext(ctx, insertCampaignSQL,
		campaign.ID,
		campaign.Title,
		campaign.Description,
		campaign.Category,
		campaign.Progress,
		campaign.Target,
		campaign.TimeLeft,
		campaign.Image,
		campaign.Urgent,
		campaign.OrganiserID,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		return model.Campaign{}, err
	}
	return campaign, nil
}

func (r *SQLCampaignRepository) GetByID(ctx context.Context, id string) (model.Campaign, error) {
	campaign := model.Campaign{}
	err := r.db.QueryRowContext(ctx, selectCampaignSQL+"WHERE id = ? LIMIT 1", id).Scan(
		&campaign.ID,
		&campaign.Title,
		&campaign.Description,
		&campaign.Category,
		&campaign.Progress,
		&campaign.Target,
		&campaign.TimeLeft,
		&campaign.Image,
		&campaign.Urgent,
		&campaign.OrganiserID,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Campaign{}, ErrCampaignNotFound
	}
	return campaign, err
}

func (r *SQLCampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, selectCampaignSQL+"ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Campaign, 0)
	for rows.Next() {
		item := model.Campaign{}
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Progress,
			&item.Target,
			&item.TimeLeft,
			&item.Image,
			&item.Urgent,
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

func (r *SQLCampaignRepository) Update(ctx context.Context, id string, input UpdateCampaignInput) error {
	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCampaignNotFound
	}

	sets, args := buildCampaignUpdateClause(input)
	args = append(args, time.Now().UTC(), id)
	query := "UPDATE campaigns SET " + strings.Join(append(sets, "updated_at = ?"), ", ") + " WHERE id = ?"
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func buildCampaignUpdateClause(input UpdateCampaignInput) ([]string, []interface{}) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	if input.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *input.Title)
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *input.Category)
	}
	if input.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *input.Progress)
	}
	if input.Target != nil {
		sets = append(sets, "target = ?")
		args = append(args, *input.Target)
	}
	if input.TimeLeft != nil {
		sets = append(sets, "time_left = ?")
		args = append(args, *input.TimeLeft)
	}
	if input.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *input.Image)
	}
	if input.Urgent != nil {
		sets = append(sets, "urgent = ?")
		args = append(args, *input.Urgent)
	}
	return sets, args
}

func (r *SQLCampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

func (r *SQLCampaignRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM campaigns WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLCampaignRepository) AddSupporter(ctx context.Context, campaignID, userID string) error {
	return addMember(ctx, r.db, campaignMembersTable, campaignMemberCol, campaignID, userID)
}

func (r *SQLCampaignRepository) RemoveSupporter(ctx context.Context, campaignID, userID string) (bool, error) {
	return removeMember(ctx, r.db, campaignMembersTable, campaignMemberCol, campaignID, userID)
}

func (r *SQLCampaignRepository) CountSupporters(ctx context.Context, campaignID string) (int64, error) {
	return countMembers(ctx, r.db, campaignMembersTable, campaignMemberCol, campaignID)
}

func (r *SQLCampaignRepository) ListSupporters(ctx context.Context, campaignID string) ([]model.UserRef, error) {
	return listMembers(ctx, r.db, campaignMembersTable, campaignMemberCol, campaignID)
}
