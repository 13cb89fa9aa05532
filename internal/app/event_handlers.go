package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
	"changehub/backend/internal/service"
)

type createEventRequest struct {
	Title       string `json:"title"`
	EventDate   string `json:"eventDate"`
	DateText    string `json:"dateText"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	Type        string `json:"type"`
}

// attendeesCount is decoded and dropped for the same reason supporters is
// on campaigns: the counter is derived, never client-settable.
type updateEventRequest struct {
	Title          *string `json:"title"`
	EventDate      *string `json:"eventDate"`
	DateText       *string `json:"dateText"`
	Time           *string `json:"time"`
	Location       *string `json:"location"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Featured       *bool   `json:"featured"`
	Type           *string `json:"type"`
	AttendeesCount *int64  `json:"attendeesCount"`
}

type eventResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	EventDate      string          `json:"eventDate"`
	DateText       string          `json:"dateText"`
	Time           string          `json:"time"`
	Location       string          `json:"location"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Featured       bool            `json:"featured"`
	Type           string          `json:"type"`
	AttendeesCount int             `json:"attendeesCount"`
	Organiser      model.UserRef   `json:"organiser"`
	Attendees      []model.UserRef `json:"attendees"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func toEventResponse(view service.EventView) eventResponse {
	return eventResponse{
		ID:             view.Event.ID,
		Title:          view.Event.Title,
		EventDate:      view.Event.EventDate.Format(time.RFC3339),
		DateText:       view.Event.DateText,
		Time:           view.Event.Time,
		Location:       view.Event.Location,
		Description:    view.Event.Description,
		Category:       view.Event.Category,
		Featured:       view.Event.Featured,
		Type:           string(view.Event.Type),
		AttendeesCount: view.AttendeesCount,
		Organiser:      view.Organiser,
		Attendees:      view.Attendees,
		CreatedAt:      view.Event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      view.Event.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	views, err := s.events.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to fetch events")
		return
	}

	items := make([]eventResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toEventResponse(view))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "events": items})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := s.events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			writeErr(w, http.StatusNotFound, "event not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to fetch event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "event": toEventResponse(view)})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity := identityFromContext(r.Context())
	view, err := s.events.Create(r.Context(), service.CreateEventInput{
		Title:       req.Title,
		EventDate:   req.EventDate,
		DateText:    req.DateText,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Featured:    req.Featured,
		Type:        req.Type,
		OrganiserID: identity.UserID,
	})
	if err != nil {
		if isValidationErr(err) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "event": toEventResponse(view)})
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := s.events.Update(r.Context(), r.PathValue("id"), service.UpdateEventInput{
		Title:       req.Title,
		EventDate:   req.EventDate,
		DateText:    req.DateText,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Featured:    req.Featured,
		Type:        req.Type,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			writeErr(w, http.StatusNotFound, "event not found")
		case isValidationErr(err):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "failed to update event")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "event": toEventResponse(view)})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.events.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			writeErr(w, http.StatusNotFound, "event not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "event deleted"})
}

func (s *Server) handleRegisterEvent(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	view, err := s.events.Register(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		s.writeMembershipErr(w, err, "failed to register")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "event": toEventResponse(view)})
}

func (s *Server) handleUnregisterEvent(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	view, err := s.events.Unregister(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		s.writeMembershipErr(w, err, "failed to unregister")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "event": toEventResponse(view)})
}
