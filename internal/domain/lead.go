package domain

import (
	"errors"
	"time"
)

// LeadStatus enumerates the lifecycle states of a lead.
type LeadStatus string

const (
	LeadNew           LeadStatus = "new"
	LeadQueued        LeadStatus = "queued"
	LeadDMSent        LeadStatus = "dm_sent"
	LeadEmailSent     LeadStatus = "email_sent"
	LeadPublicReplied LeadStatus = "public_replied"
	LeadReplied       LeadStatus = "replied"
	LeadNegotiating   LeadStatus = "negotiating"
	LeadWon           LeadStatus = "won"
	LeadLost          LeadStatus = "lost"
	LeadEscalated     LeadStatus = "escalated"
)

// ErrIllegalTransition is returned when a status change would move a lead
// backwards or out of a terminal state.
var ErrIllegalTransition = errors.New("illegal lead status transition")

// ErrNotFound is returned by stores when no row matches.
var ErrNotFound = errors.New("not found")

// leadTransitions is the forward edge set of the lead lifecycle. Terminal
// states (won, lost, escalated) have no outgoing edges; re-engagement is an
// operator action, not an automatic transition.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:           {LeadQueued},
	LeadQueued:        {LeadDMSent, LeadEmailSent, LeadPublicReplied},
	LeadDMSent:        {LeadReplied},
	LeadEmailSent:     {LeadReplied},
	LeadPublicReplied: {LeadReplied},
	LeadReplied:       {LeadNegotiating, LeadWon, LeadLost, LeadEscalated},
	LeadNegotiating:   {LeadNegotiating, LeadWon, LeadLost, LeadEscalated},
}

// Terminal reports whether s admits no further automatic transitions.
func (s LeadStatus) Terminal() bool {
	return s == LeadWon || s == LeadLost || s == LeadEscalated
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to LeadStatus) bool {
	for _, next := range leadTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lead is the long-lived prospect entity being negotiated with. Exactly one
// Lead exists per discovered prospect. The lead store owns it; callers hold a
// transient copy during a decision cycle and write it back atomically.
type Lead struct {
	ID            string     `json:"id" db:"id"`
	CampaignID    string     `json:"campaign_id" db:"campaign_id"`
	Handle        string     `json:"handle" db:"handle"`
	Email         string     `json:"email" db:"email"`
	DisplayName   string     `json:"display_name" db:"display_name"`
	Platform      string     `json:"platform" db:"platform"`
	Status        LeadStatus `json:"status" db:"status"`
	ThreadID      string     `json:"thread_id" db:"thread_id"`
	OutboundCount int        `json:"outbound_count" db:"outbound_count"`
	LastContactAt *time.Time `json:"last_contact_at" db:"last_contact_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TransitionTo applies a lifecycle move in place, rejecting illegal ones.
func (l *Lead) TransitionTo(to LeadStatus) error {
	if !CanTransition(l.Status, to) {
		return ErrIllegalTransition
	}
	l.Status = to
	return nil
}

// Name returns the best display name for outbound drafts.
func (l *Lead) Name() string {
	if l == nil {
		return "there"
	}
	if l.DisplayName != "" {
		return l.DisplayName
	}
	if l.Handle != "" {
		return l.Handle
	}
	return "there"
}
