package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"changehub/backend/internal/model"
)

// ErrMemberConstraint is returned when the single-statement membership
// insert is rejected by the store. The caller distinguishes "entity
// missing" from "already a member" with a follow-up existence check.
var ErrMemberConstraint = errors.New("membership constraint violated")

const (
	campaignMembersTable = "campaign_supporters"
	campaignMemberCol    = "campaign_id"
	eventMembersTable    = "event_attendees"
	eventMemberCol       = "event_id"
)

// addMember inserts the (entity, user) row. The composite primary key on
// the membership table makes this the atomic "add only if not already a
// member" primitive: concurrent inserts for the same pair are linearized
// by the store and at most one succeeds.
func addMember(ctx context.Context, db *sql.DB, table, entityCol, entityID, userID string) error {
	query := "INSERT INTO " + table + " (" + entityCol + ", user_id, joined_at) VALUES (?, ?, ?)"
	_, err := db.ExecContext(ctx, query, entityID, userID, time.Now().UTC())
	if err != nil {
		if isConstraintErr(err) {
			return ErrMemberConstraint
		}
		return err
	}
	return nil
}

func removeMember(ctx context.Context, db *sql.DB, table, entityCol, entityID, userID string) (bool, error) {
	query := "DELETE FROM " + table + " WHERE " + entityCol + " = ? AND user_id = ?"
	res, err := db.ExecContext(ctx, query, entityID, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func countMembers(ctx context.Context, db *sql.DB, table, entityCol, entityID string) (int64, error) {
	query := "SELECT COUNT(1) FROM " + table + " WHERE " + entityCol + " = ?"
	var n int64
	err := db.QueryRowContext(ctx, query, entityID).Scan(&n)
	return n, err
}

func listMembers(ctx context.Context, db *sql.DB, table, entityCol, entityID string) ([]model.UserRef, error) {
	query := "SELECT u.id, u.username FROM " + table + " m JOIN users u ON u.id = m.user_id WHERE m." + entityCol + " = ? ORDER BY m.joined_at, u.username"
	rows, err := db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]model.UserRef, 0)
	for rows.Next() {
		ref := model.UserRef{}
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, err
		}
		members = append(members, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func isConstraintErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "constraint")
}
