package model

import "time"

type EventType string

const (
	EventTypeInPerson EventType = "In-Person"
	EventTypeVirtual  EventType = "Virtual"
	EventTypeHybrid   EventType = "Hybrid"
)

const DefaultEventCategory = "General"

func ValidEventType(t EventType) bool {
	switch t {
	case EventTypeInPerson, EventTypeVirtual, EventTypeHybrid:
		return true
	}
	return false
}

type Event struct {
	ID          string
	Title       string
	EventDate   time.Time
	DateText    string
	Time        string
	Location    string
	Description string
	Category    string
	Featured    bool
	Type        EventType
	OrganiserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
