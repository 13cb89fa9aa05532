package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
)

type CreateEventInput struct {
	Title       string
	EventDate   string
	DateText    string
	Time        string
	Location    string
	Description string
	Category    string
	Featured    bool
	Type        string
	OrganiserID string
}

type UpdateEventInput struct {
	Title       *string
	EventDate   *string
	DateText    *string
	Time        *string
	Location    *string
	Description *string
	Category    *string
	Featured    *bool
	Type        *string
}

type EventView struct {
	Event          model.Event
	AttendeesCount int
	Organiser      model.UserRef
	Attendees      []model.UserRef
}

type EventService struct {
	repo  repository.EventRepository
	users repository.UserRepository
}

func NewEventService(repo repository.EventRepository, users repository.UserRepository) *EventService {
	return &EventService{repo: repo, users: users}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (EventView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return EventView{}, errors.New("title is required")
	}

	// The date may arrive in the dedicated field or only as display text.
	rawDate := strings.TrimSpace(input.EventDate)
	if rawDate == "" {
		rawDate = strings.TrimSpace(input.DateText)
	}
	eventDate, err := parseEventDate(rawDate)
	if err != nil {
		return EventView{}, err
	}

	eventType := model.EventTypeInPerson
	if t := strings.TrimSpace(input.Type); t != "" {
		eventType = model.EventType(t)
		if !model.ValidEventType(eventType) {
			return EventView{}, errors.New("invalid event type")
		}
	}

	create := repository.CreateEventInput{
		Title:       title,
		EventDate:   eventDate,
		DateText:    strings.TrimSpace(input.DateText),
		Time:        strings.TrimSpace(input.Time),
		Location:    strings.TrimSpace(input.Location),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Featured:    input.Featured,
		Type:        eventType,
		OrganiserID: input.OrganiserID,
	}
	if create.Category == "" {
		create.Category = model.DefaultEventCategory
	}

	event, err := s.repo.Create(ctx, create)
	if err != nil {
		return EventView{}, err
	}
	return s.view(ctx, event, newUserRefCache(s.users))
}

func (s *EventService) Get(ctx context.Context, id string) (EventView, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return EventView{}, err
	}
	return s.view(ctx, event, newUserRefCache(s.users))
}

func (s *EventService) List(ctx context.Context) ([]EventView, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	cache := newUserRefCache(s.users)
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		view, err := s.view(ctx, event, cache)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *EventService) Update(ctx context.Context, id string, input UpdateEventInput) (EventView, error) {
	update := repository.UpdateEventInput{
		Title:       input.Title,
		DateText:    input.DateText,
		Time:        input.Time,
		Location:    input.Location,
		Description: input.Description,
		Category:    input.Category,
		Featured:    input.Featured,
	}
	if input.EventDate != nil {
		eventDate, err := parseEventDate(*input.EventDate)
		if err != nil {
			return EventView{}, err
		}
		update.EventDate = &eventDate
	}
	if input.Type != nil {
		eventType := model.EventType(strings.TrimSpace(*input.Type))
		if !model.ValidEventType(eventType) {
			return EventView{}, errors.New("invalid event type")
		}
		update.Type = &eventType
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return EventView{}, err
	}
	return s.Get(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Register and Unregister mirror the campaign coordinator: a keyed insert
// or delete against the attendee table, with the failed case resolved into
// "event missing" or a membership-state error by a second lookup.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (EventView, error) {
	if err := s.repo.AddAttendee(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrMemberConstraint) {
			exists, existsErr := s.repo.Exists(ctx, eventID)
			if existsErr != nil {
				return EventView{}, existsErr
			}
			if !exists {
				return EventView{}, repository.ErrEventNotFound
			}
			return EventView{}, ErrAlreadyRegistered
		}
		return EventView{}, err
	}
	return s.Get(ctx, eventID)
}

func (s *EventService) Unregister(ctx context.Context, eventID, userID string) (EventView, error) {
	removed, err := s.repo.RemoveAttendee(ctx, eventID, userID)
	if err != nil {
		return EventView{}, err
	}
	if !removed {
		exists, existsErr := s.repo.Exists(ctx, eventID)
		if existsErr != nil {
			return EventView{}, existsErr
		}
		if !exists {
			return EventView{}, repository.ErrEventNotFound
		}
		return EventView{}, ErrNotRegistered
	}
	return s.Get(ctx, eventID)
}

func (s *EventService) view(ctx context.Context, event model.Event, cache *userRefCache) (EventView, error) {
	attendees, err := s.repo.ListAttendees(ctx, event.ID)
	if err != nil {
		return EventView{}, err
	}
	organiser, err := cache.resolve(ctx, event.OrganiserID)
	if err != nil {
		return EventView{}, err
	}
	return EventView{
		Event:          event,
		AttendeesCount: len(attendees),
		Organiser:      organiser,
		Attendees:      attendees,
	}, nil
}

func parseEventDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errors.New("eventDate is required")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}

	return time.Time{}, errors.New("invalid eventDate: must be RFC3339 or YYYY-MM-DD")
}
