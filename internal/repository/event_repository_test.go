package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changehub/backend/internal/model"
)

func TestEventRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLEventRepository(db)
	organiser := seedUser(t, db, "organiser")

	date := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	event, err := repo.Create(ctx, CreateEventInput{
		Title:       "Charity run",
		EventDate:   date,
		Location:    "Riverside park",
		Category:    model.DefaultEventCategory,
		Type:        model.EventTypeInPerson,
		OrganiserID: organiser.ID,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Charity run", got.Title)
	assert.Equal(t, model.EventTypeInPerson, got.Type)
	assert.WithinDuration(t, date, got.EventDate, time.Second)

	_, err = repo.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepository_ListSortedByDateDesc(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLEventRepository(db)
	organiser := seedUser(t, db, "organiser")

	for month := time.Month(1); month <= 3; month++ {
		_, err := repo.Create(ctx, CreateEventInput{
			Title:       "Event",
			EventDate:   time.Date(2026, month, 1, 0, 0, 0, 0, time.UTC),
			Category:    model.DefaultEventCategory,
			Type:        model.EventTypeVirtual,
			OrganiserID: organiser.ID,
		})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].EventDate.After(list[1].EventDate))
	assert.True(t, list[1].EventDate.After(list[2].EventDate))
}

func TestEventRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLEventRepository(db)
	organiser := seedUser(t, db, "organiser")

	event, err := repo.Create(ctx, CreateEventInput{
		Title:       "Original",
		EventDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Category:    model.DefaultEventCategory,
		Type:        model.EventTypeInPerson,
		OrganiserID: organiser.ID,
	})
	require.NoError(t, err)

	location := "New venue"
	eventType := model.EventTypeHybrid
	require.NoError(t, repo.Update(ctx, event.ID, UpdateEventInput{Location: &location, Type: &eventType}))

	got, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "New venue", got.Location)
	assert.Equal(t, model.EventTypeHybrid, got.Type)
	assert.Equal(t, "Original", got.Title)

	assert.ErrorIs(t, repo.Update(ctx, "missing-id", UpdateEventInput{Location: &location}), ErrEventNotFound)

	require.NoError(t, repo.Delete(ctx, event.ID))
	assert.ErrorIs(t, repo.Delete(ctx, event.ID), ErrEventNotFound)
}

func TestEventRepository_Attendees(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLEventRepository(db)
	organiser := seedUser(t, db, "organiser")
	alice := seedUser(t, db, "alice")

	event, err := repo.Create(ctx, CreateEventInput{
		Title:       "Meetup",
		EventDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Category:    model.DefaultEventCategory,
		Type:        model.EventTypeInPerson,
		OrganiserID: organiser.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.AddAttendee(ctx, event.ID, alice.ID))
	assert.ErrorIs(t, repo.AddAttendee(ctx, event.ID, alice.ID), ErrMemberConstraint)

	attendees, err := repo.ListAttendees(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.Equal(t, "alice", attendees[0].Username)

	n, err := repo.CountAttendees(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := repo.RemoveAttendee(ctx, event.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveAttendee(ctx, event.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
