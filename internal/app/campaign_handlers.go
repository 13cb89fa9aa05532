package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
	"changehub/backend/internal/service"
)

type createCampaignRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Progress    int64  `json:"progress"`
	Target      *int64 `json:"target"`
	TimeLeft    string `json:"timeLeft"`
	Image       string `json:"image"`
	Urgent      bool   `json:"urgent"`
}

// updateCampaignRequest uses pointers so absent fields are left untouched.
// A client-supplied supporters value is decoded and dropped: the counter
// is derived from the member set, never settable.
type updateCampaignRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Progress    *int64  `json:"progress"`
	Target      *int64  `json:"target"`
	TimeLeft    *string `json:"timeLeft"`
	Image       *string `json:"image"`
	Urgent      *bool   `json:"urgent"`
	Supporters  *int64  `json:"supporters"`
}

type campaignResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Progress    int64           `json:"progress"`
	Supporters  int             `json:"supporters"`
	Target      int64           `json:"target"`
	TimeLeft    string          `json:"timeLeft"`
	Image       string          `json:"image"`
	Urgent      bool            `json:"urgent"`
	Organiser   model.UserRef   `json:"organiser"`
	Attendees   []model.UserRef `json:"attendees"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toCampaignResponse(view service.CampaignView) campaignResponse {
	return campaignResponse{
		ID:          view.Campaign.ID,
		Title:       view.Campaign.Title,
		Description: view.Campaign.Description,
		Category:    view.Campaign.Category,
		Progress:    view.Campaign.Progress,
		Supporters:  view.Supporters,
		Target:      view.Campaign.Target,
		TimeLeft:    view.Campaign.TimeLeft,
		Image:       view.Campaign.Image,
		Urgent:      view.Campaign.Urgent,
		Organiser:   view.Organiser,
		Attendees:   view.Attendees,
		CreatedAt:   view.Campaign.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   view.Campaign.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	views, err := s.campaigns.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to fetch campaigns")
		return
	}

	items := make([]campaignResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toCampaignResponse(view))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "campaigns": items})
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	view, err := s.campaigns.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			writeErr(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "campaign": toCampaignResponse(view)})
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity := identityFromContext(r.Context())
	view, err := s.campaigns.Create(r.Context(), service.CreateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Progress:    req.Progress,
		Target:      req.Target,
		TimeLeft:    req.TimeLeft,
		Image:       req.Image,
		Urgent:      req.Urgent,
		OrganiserID: identity.UserID,
	})
	if err != nil {
		if isValidationErr(err) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to create campaign")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "campaign": toCampaignResponse(view)})
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req updateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := s.campaigns.Update(r.Context(), r.PathValue("id"), repository.UpdateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Progress:    req.Progress,
		Target:      req.Target,
		TimeLeft:    req.TimeLeft,
		Image:       req.Image,
		Urgent:      req.Urgent,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			writeErr(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to update campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "campaign": toCampaignResponse(view)})
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.campaigns.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			writeErr(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "campaign deleted"})
}

func (s *Server) handleJoinCampaign(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	view, err := s.campaigns.Join(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		s.writeMembershipErr(w, err, "failed to join campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "campaign": toCampaignResponse(view)})
}

func (s *Server) handleLeaveCampaign(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	view, err := s.campaigns.Leave(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		s.writeMembershipErr(w, err, "failed to leave campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "campaign": toCampaignResponse(view)})
}

func (s *Server) writeMembershipErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrCampaignNotFound):
		writeErr(w, http.StatusNotFound, "campaign not found")
	case errors.Is(err, repository.ErrEventNotFound):
		writeErr(w, http.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrAlreadyJoined):
		writeErr(w, http.StatusBadRequest, "already joined")
	case errors.Is(err, service.ErrNotJoined):
		writeErr(w, http.StatusBadRequest, "not a member")
	case errors.Is(err, service.ErrAlreadyRegistered):
		writeErr(w, http.StatusBadRequest, "already registered")
	case errors.Is(err, service.ErrNotRegistered):
		writeErr(w, http.StatusBadRequest, "not registered")
	default:
		writeErr(w, http.StatusInternalServerError, fallback)
	}
}

func isValidationErr(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "required") || strings.Contains(message, "invalid")
}
