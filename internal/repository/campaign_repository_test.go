package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changehub/backend/internal/model"
)

func seedUser(t *testing.T, db *sql.DB, username string) model.User {
	t.Helper()

	user, err := NewSQLUserRepository(db).Create(context.Background(), username, "hash", model.UserRoleUser)
	require.NoError(t, err)
	return user
}

func seedCampaign(t *testing.T, repo *SQLCampaignRepository, organiserID, title string) model.Campaign {
	t.Helper()

	campaign, err := repo.Create(context.Background(), CreateCampaignInput{
		Title:       title,
		Category:    model.DefaultCampaignCategory,
		Target:      model.DefaultCampaignTarget,
		TimeLeft:    model.DefaultCampaignTimeLeft,
		Image:       model.DefaultCampaignImage,
		OrganiserID: organiserID,
	})
	require.NoError(t, err)
	return campaign
}

func TestCampaignRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLCampaignRepository(db)
	organiser := seedUser(t, db, "organiser")

	first := seedCampaign(t, repo, organiser.ID, "First")
	second := seedCampaign(t, repo, organiser.ID, "Second")

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, int64(model.DefaultCampaignTarget), got.Target)
	assert.Equal(t, organiser.ID, got.OrganiserID)

	_, err = repo.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestCampaignRepository_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLCampaignRepository(db)
	organiser := seedUser(t, db, "organiser")
	campaign := seedCampaign(t, repo, organiser.ID, "Original")

	title := "Renamed"
	urgent := true
	require.NoError(t, repo.Update(ctx, campaign.ID, UpdateCampaignInput{Title: &title, Urgent: &urgent}))

	got, err := repo.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.Urgent)
	assert.Equal(t, campaign.Category, got.Category)
	assert.Equal(t, campaign.Target, got.Target)

	assert.ErrorIs(t, repo.Update(ctx, "missing-id", UpdateCampaignInput{Title: &title}), ErrCampaignNotFound)
}

func TestCampaignRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLCampaignRepository(db)
	organiser := seedUser(t, db, "organiser")
	campaign := seedCampaign(t, repo, organiser.ID, "Doomed")

	require.NoError(t, repo.Delete(ctx, campaign.ID))
	assert.ErrorIs(t, repo.Delete(ctx, campaign.ID), ErrCampaignNotFound)

	_, err := repo.GetByID(ctx, campaign.ID)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestCampaignRepository_Membership(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLCampaignRepository(db)
	organiser := seedUser(t, db, "organiser")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	campaign := seedCampaign(t, repo, organiser.ID, "Membership")

	require.NoError(t, repo.AddSupporter(ctx, campaign.ID, alice.ID))
	require.NoError(t, repo.AddSupporter(ctx, campaign.ID, bob.ID))

	// second insert for the same pair hits the composite primary key
	assert.ErrorIs(t, repo.AddSupporter(ctx, campaign.ID, alice.ID), ErrMemberConstraint)

	// insert against a missing campaign fails the same way; callers
	// disambiguate with Exists
	assert.ErrorIs(t, repo.AddSupporter(ctx, "missing-id", alice.ID), ErrMemberConstraint)
	exists, err := repo.Exists(ctx, "missing-id")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := repo.CountSupporters(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	members, err := repo.ListSupporters(ctx, campaign.ID)
	require.NoError(t, err)
	usernames := []string{members[0].Username, members[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, usernames)

	removed, err := repo.RemoveSupporter(ctx, campaign.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveSupporter(ctx, campaign.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	n, err = repo.CountSupporters(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCampaignRepository_DeleteCascadesMemberships(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLCampaignRepository(db)
	organiser := seedUser(t, db, "organiser")
	alice := seedUser(t, db, "alice")
	campaign := seedCampaign(t, repo, organiser.ID, "Cascade")

	require.NoError(t, repo.AddSupporter(ctx, campaign.ID, alice.ID))
	require.NoError(t, repo.Delete(ctx, campaign.ID))

	n, err := repo.CountSupporters(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
