package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
	"changehub/backend/internal/testdb"
)

type eventFixture struct {
	db        *sql.DB
	users     repository.UserRepository
	repo      repository.EventRepository
	service   *EventService
	organiser model.User
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()

	db, err := testdb.Open()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewSQLUserRepository(db)
	repo := repository.NewSQLEventRepository(db)
	organiser, err := users.Create(context.Background(), "organiser", "hash", model.UserRoleAdmin)
	require.NoError(t, err)

	return &eventFixture{
		db:        db,
		users:     users,
		repo:      repo,
		service:   NewEventService(repo, users),
		organiser: organiser,
	}
}

func (f *eventFixture) user(t *testing.T, username string) model.User {
	t.Helper()

	user, err := f.users.Create(context.Background(), username, "hash", model.UserRoleUser)
	require.NoError(t, err)
	return user
}

func (f *eventFixture) event(t *testing.T, title, date string) EventView {
	t.Helper()

	view, err := f.service.Create(context.Background(), CreateEventInput{
		Title:       title,
		EventDate:   date,
		OrganiserID: f.organiser.ID,
	})
	require.NoError(t, err)
	return view
}

func TestEventService_CreateValidation(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateEventInput{EventDate: "2026-09-01", OrganiserID: f.organiser.ID})
	assert.EqualError(t, err, "title is required")

	_, err = f.service.Create(ctx, CreateEventInput{Title: "No date", OrganiserID: f.organiser.ID})
	assert.EqualError(t, err, "eventDate is required")

	_, err = f.service.Create(ctx, CreateEventInput{
		Title: "Bad type", EventDate: "2026-09-01", Type: "Telepathic", OrganiserID: f.organiser.ID,
	})
	assert.EqualError(t, err, "invalid event type")

	_, err = f.service.Create(ctx, CreateEventInput{
		Title: "Bad date", EventDate: "next tuesday", OrganiserID: f.organiser.ID,
	})
	assert.Error(t, err)
}

func TestEventService_CreateDefaultsAndDateFallback(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	// the display text is used when no dedicated date is given
	view, err := f.service.Create(ctx, CreateEventInput{
		Title:       "Gala",
		DateText:    "2026-10-15",
		OrganiserID: f.organiser.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventTypeInPerson, view.Event.Type)
	assert.Equal(t, model.DefaultEventCategory, view.Event.Category)
	assert.Equal(t, "2026-10-15", view.Event.DateText)
	assert.WithinDuration(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), view.Event.EventDate, time.Second)
	assert.Equal(t, 0, view.AttendeesCount)
}

func TestEventService_RegisterUnregister(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	event := f.event(t, "Charity run", "2026-09-01")

	view, err := f.service.Register(ctx, event.Event.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.AttendeesCount)
	require.Len(t, view.Attendees, 1)
	assert.Equal(t, "alice", view.Attendees[0].Username)

	_, err = f.service.Register(ctx, event.Event.ID, alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = f.service.Register(ctx, "missing-id", alice.ID)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)

	view, err = f.service.Unregister(ctx, event.Event.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.AttendeesCount)

	_, err = f.service.Unregister(ctx, event.Event.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = f.service.Unregister(ctx, "missing-id", alice.ID)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestEventService_ListSortedByDateDesc(t *testing.T) {
	f := newEventFixture(t)

	f.event(t, "Oldest", "2026-01-01")
	f.event(t, "Newest", "2026-12-01")
	f.event(t, "Middle", "2026-06-01")

	views, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "Newest", views[0].Event.Title)
	assert.Equal(t, "Middle", views[1].Event.Title)
	assert.Equal(t, "Oldest", views[2].Event.Title)
}

func TestEventService_Update(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	event := f.event(t, "Original", "2026-09-01")

	_, err := f.service.Register(ctx, event.Event.ID, alice.ID)
	require.NoError(t, err)

	location := "New venue"
	eventType := "Hybrid"
	newDate := "2026-10-01"
	view, err := f.service.Update(ctx, event.Event.ID, UpdateEventInput{
		Location:  &location,
		Type:      &eventType,
		EventDate: &newDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "New venue", view.Event.Location)
	assert.Equal(t, model.EventTypeHybrid, view.Event.Type)
	assert.WithinDuration(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), view.Event.EventDate, time.Second)
	assert.Equal(t, 1, view.AttendeesCount, "metadata edits must not touch the derived counter")

	badType := "Telepathic"
	_, err = f.service.Update(ctx, event.Event.ID, UpdateEventInput{Type: &badType})
	assert.EqualError(t, err, "invalid event type")

	_, err = f.service.Update(ctx, "missing-id", UpdateEventInput{Location: &location})
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}
