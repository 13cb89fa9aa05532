package model

import "time"

const (
	DefaultCampaignCategory = "General"
	DefaultCampaignTarget   = 10000
	DefaultCampaignTimeLeft = "N/A"
	DefaultCampaignImage    = "bg-gradient-to-br from-gray-400 to-gray-600"
)

type Campaign struct {
	ID          string
	Title       string
	Description string
	Category    string
	Progress    int64
	Target      int64
	TimeLeft    string
	Image       string
	Urgent      bool
	OrganiserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
