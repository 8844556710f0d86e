package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/michaelprosario/career-catalyst/internal/errors"
)

// UserOpportunity is a job posting merged with one user's tracking state.
// Build it with NewUserOpportunity; mutate it only through Apply,
// UpdateStatus and AddNotes so UpdatedAt stays current.
type UserOpportunity struct {
	ID     string
	UserID string

	Title        string
	Company      string
	Description  string
	Requirements []string
	Type         OpportunityType
	Status       OpportunityStatus
	PostedAt     time.Time
	Location     string
	IsRemote     bool
	SalaryRange  *SalaryRange
	ExpiresAt    *time.Time
	SourceURL    string

	ApplicationStatus ApplicationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AppliedAt         *time.Time
	Notes             string
	CoverLetterID     string
	ResumeID          string
}

// UserOpportunityParams carries everything a caller may supply when creating
// a record. Zero values select the defaults (SAVED, ACTIVE, FULL_TIME).
type UserOpportunityParams struct {
	ID                string
	UserID            string
	Title             string
	Company           string
	Description       string
	Requirements      []string
	Type              OpportunityType
	Status            OpportunityStatus
	PostedAt          time.Time
	Location          string
	IsRemote          bool
	SalaryRange       *SalaryRange
	ExpiresAt         *time.Time
	SourceURL         string
	ApplicationStatus ApplicationStatus
	AppliedAt         *time.Time
	Notes             string
	CoverLetterID     string
	ResumeID          string
}

func NewUserOpportunity(p UserOpportunityParams, now time.Time) (*UserOpportunity, error) {
	o := &UserOpportunity{
		ID:                strings.TrimSpace(p.ID),
		UserID:            strings.TrimSpace(p.UserID),
		Title:             strings.TrimSpace(p.Title),
		Company:           strings.TrimSpace(p.Company),
		Description:       p.Description,
		Requirements:      append([]string{}, p.Requirements...),
		Type:              p.Type,
		Status:            p.Status,
		PostedAt:          p.PostedAt,
		Location:          p.Location,
		IsRemote:          p.IsRemote,
		SalaryRange:       p.SalaryRange,
		ExpiresAt:         p.ExpiresAt,
		SourceURL:         p.SourceURL,
		ApplicationStatus: p.ApplicationStatus,
		CreatedAt:         now,
		UpdatedAt:         now,
		AppliedAt:         p.AppliedAt,
		Notes:             p.Notes,
		CoverLetterID:     p.CoverLetterID,
		ResumeID:          p.ResumeID,
	}
	if o.Type == "" {
		o.Type = OpportunityTypeFullTime
	}
	if o.Status == "" {
		o.Status = OpportunityStatusActive
	}
	if o.ApplicationStatus == "" {
		o.ApplicationStatus = ApplicationStatusSaved
	}
	if o.PostedAt.IsZero() {
		o.PostedAt = now
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the construction invariants. Repositories and the service
// call it before every write.
func (o *UserOpportunity) Validate() error {
	switch {
	case strings.TrimSpace(o.ID) == "":
		return errors.InvalidInput("UserOpportunity ID cannot be empty", nil)
	case strings.TrimSpace(o.UserID) == "":
		return errors.InvalidInput("User ID cannot be empty", nil)
	case strings.TrimSpace(o.Title) == "":
		return errors.InvalidInput("Opportunity title cannot be empty", nil)
	case strings.TrimSpace(o.Company) == "":
		return errors.InvalidInput("Company name cannot be empty", nil)
	case strings.TrimSpace(o.Description) == "":
		return errors.InvalidInput("Opportunity description cannot be empty", nil)
	}
	if !o.Type.Valid() {
		return errors.InvalidInput(fmt.Sprintf("invalid opportunity type %q", o.Type), nil)
	}
	if !o.Status.Valid() {
		return errors.InvalidInput(fmt.Sprintf("invalid opportunity status %q", o.Status), nil)
	}
	if !o.ApplicationStatus.Valid() {
		return errors.InvalidInput(fmt.Sprintf("invalid application status %q", o.ApplicationStatus), nil)
	}
	return nil
}

// Apply moves a SAVED record to APPLIED. Every other starting state is
// rejected.
func (o *UserOpportunity) Apply(resumeID, coverLetterID string, now time.Time) error {
	if o.ApplicationStatus != ApplicationStatusSaved {
		return errors.InvalidStateTransition(
			fmt.Sprintf("Can only apply to saved opportunities (current status %s)", o.ApplicationStatus), nil)
	}
	if strings.TrimSpace(resumeID) == "" {
		return errors.InvalidInput("Resume ID cannot be empty", nil)
	}

	applied := now
	o.ApplicationStatus = ApplicationStatusApplied
	o.AppliedAt = &applied
	o.ResumeID = resumeID
	if coverLetterID != "" {
		o.CoverLetterID = coverLetterID
	}
	o.UpdatedAt = now
	return nil
}

// UpdateStatus sets any application status without transition checks so
// that records can be corrected by hand.
func (o *UserOpportunity) UpdateStatus(status ApplicationStatus, now time.Time) {
	o.ApplicationStatus = status
	o.UpdatedAt = now
}

func (o *UserOpportunity) AddNotes(notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return errors.InvalidInput("Notes cannot be empty", nil)
	}
	o.Notes = notes
	o.UpdatedAt = now
	return nil
}

func (o *UserOpportunity) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

func (o *UserOpportunity) IsActive(now time.Time) bool {
	return o.Status == OpportunityStatusActive && !o.IsExpired(now)
}

func (o *UserOpportunity) IsApplied() bool {
	return o.ApplicationStatus != ApplicationStatusSaved
}

// Clone returns a deep copy.
func (o *UserOpportunity) Clone() *UserOpportunity {
	if o == nil {
		return nil
	}
	c := *o
	if o.Requirements != nil {
		c.Requirements = append([]string{}, o.Requirements...)
	}
	if o.SalaryRange != nil {
		sr := *o.SalaryRange
		c.SalaryRange = &sr
	}
	if o.ExpiresAt != nil {
		t := *o.ExpiresAt
		c.ExpiresAt = &t
	}
	if o.AppliedAt != nil {
		t := *o.AppliedAt
		c.AppliedAt = &t
	}
	return &c
}

// NormalizeKey folds a title or company for the per-user uniqueness check.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameListing reports whether two records describe the same posting for the
// same user.
func (o *UserOpportunity) SameListing(other *UserOpportunity) bool {
	return o.UserID == other.UserID &&
		NormalizeKey(o.Title) == NormalizeKey(other.Title) &&
		NormalizeKey(o.Company) == NormalizeKey(other.Company)
}
