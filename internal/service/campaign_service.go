package service

import (
	"context"
	"errors"
	"strings"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
)

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotJoined     = errors.New("not a member")
)

type CreateCampaignInput struct {
	Title       string
	Description string
	Category    string
	Progress    int64
	Target      *int64
	TimeLeft    string
	Image       string
	Urgent      bool
	OrganiserID string
}

// CampaignView is a campaign with its member set and organiser resolved
// for display. Supporters is derived from the member set on every read,
// so it can never drift from the set's cardinality.
type CampaignView struct {
	Campaign   model.Campaign
	Supporters int
	Organiser  model.UserRef
	Attendees  []model.UserRef
}

type CampaignService struct {
	repo  repository.CampaignRepository
	users repository.UserRepository
}

func NewCampaignService(repo repository.CampaignRepository, users repository.UserRepository) *CampaignService {
	return &CampaignService{repo: repo, users: users}
}

func (s *CampaignService) Create(ctx context.Context, input CreateCampaignInput) (CampaignView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return CampaignView{}, errors.New("title is required")
	}

	create := repository.CreateCampaignInput{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Progress:    input.Progress,
		Target:      model.DefaultCampaignTarget,
		TimeLeft:    strings.TrimSpace(input.TimeLeft),
		Image:       strings.TrimSpace(input.Image),
		Urgent:      input.Urgent,
		OrganiserID: input.OrganiserID,
	}
	if create.Category == "" {
		create.Category = model.DefaultCampaignCategory
	}
	if input.Target != nil {
		create.Target = *input.Target
	}
	if create.TimeLeft == "" {
		create.TimeLeft = model.DefaultCampaignTimeLeft
	}
	if create.Image == "" {
		create.Image = model.DefaultCampaignImage
	}

	campaign, err := s.repo.Create(ctx, create)
	if err != nil {
		return CampaignView{}, err
	}
	return s.view(ctx, campaign, newUserRefCache(s.users))
}

func (s *CampaignService) Get(ctx context.Context, id string) (CampaignView, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CampaignView{}, err
	}
	return s.view(ctx, campaign, newUserRefCache(s.users))
}

func (s *CampaignService) List(ctx context.Context) ([]CampaignView, error) {
	campaigns, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	cache := newUserRefCache(s.users)
	views := make([]CampaignView, 0, len(campaigns))
	for _, campaign := range campaigns {
		view, err := s.view(ctx, campaign, cache)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CampaignService) Update(ctx context.Context, id string, input repository.UpdateCampaignInput) (CampaignView, error) {
	if err := s.repo.Update(ctx, id, input); err != nil {
		return CampaignView{}, err
	}
	return s.Get(ctx, id)
}

func (s *CampaignService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Join adds the user to the campaign's member set. The insert itself is
// the atomicity guard; when it is rejected, a follow-up existence check
// distinguishes a missing campaign from an already-joined user.
func (s *CampaignService) Join(ctx context.Context, campaignID, userID string) (CampaignView, error) {
	if err := s.repo.AddSupporter(ctx, campaignID, userID); err != nil {
		if errors.Is(err, repository.ErrMemberConstraint) {
			exists, existsErr := s.repo.Exists(ctx, campaignID)
			if existsErr != nil {
				return CampaignView{}, existsErr
			}
			if !exists {
				return CampaignView{}, repository.ErrCampaignNotFound
			}
			return CampaignView{}, ErrAlreadyJoined
		}
		return CampaignView{}, err
	}
	return s.Get(ctx, campaignID)
}

func (s *CampaignService) Leave(ctx context.Context, campaignID, userID string) (CampaignView, error) {
	removed, err := s.repo.RemoveSupporter(ctx, campaignID, userID)
	if err != nil {
		return CampaignView{}, err
	}
	if !removed {
		exists, existsErr := s.repo.Exists(ctx, campaignID)
		if existsErr != nil {
			return CampaignView{}, existsErr
		}
		if !exists {
			return CampaignView{}, repository.ErrCampaignNotFound
		}
		return CampaignView{}, ErrNotJoined
	}
	return s.Get(ctx, campaignID)
}

func (s *CampaignService) view(ctx context.Context, campaign model.Campaign, cache *userRefCache) (CampaignView, error) {
	attendees, err := s.repo.ListSupporters(ctx, campaign.ID)
	if err != nil {
		return CampaignView{}, err
	}
	organiser, err := cache.resolve(ctx, campaign.OrganiserID)
	if err != nil {
		return CampaignView{}, err
	}
	return CampaignView{
		Campaign:   campaign,
		Supporters: len(attendees),
		Organiser:  organiser,
		Attendees:  attendees,
	}, nil
}
