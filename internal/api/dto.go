package api

import (
	"time"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

type SalaryRangeDTO struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Period   string  `json:"period"`
}

// OpportunityDTO is the wire shape of a stored opportunity.
type OpportunityDTO struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Title             string          `json:"title"`
	Company           string          `json:"company"`
	Description       string          `json:"description"`
	Requirements      []string        `json:"requirements"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	PostedAt          time.Time       `json:"posted_at"`
	Location          string          `json:"location,omitempty"`
	IsRemote          bool            `json:"is_remote"`
	SalaryRange       *SalaryRangeDTO `json:"salary_range,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	SourceURL         string          `json:"source_url,omitempty"`
	ApplicationStatus string          `json:"application_status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	AppliedAt         *time.Time      `json:"applied_at,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CoverLetterID     string          `json:"cover_letter_id,omitempty"`
	ResumeID          string          `json:"resume_id,omitempty"`
}

func toDTO(o *models.UserOpportunity) OpportunityDTO {
	dto := OpportunityDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		Title:             o.Title,
		Company:           o.Company,
		Description:       o.Description,
		Requirements:      o.Requirements,
		Type:              string(o.Type),
		Status:            string(o.Status),
		PostedAt:          o.PostedAt,
		Location:          o.Location,
		IsRemote:          o.IsRemote,
		ExpiresAt:         o.ExpiresAt,
		SourceURL:         o.SourceURL,
		ApplicationStatus: string(o.ApplicationStatus),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		AppliedAt:         o.AppliedAt,
		Notes:             o.Notes,
		CoverLetterID:     o.CoverLetterID,
		ResumeID:          o.ResumeID,
	}
	if dto.Requirements == nil {
		dto.Requirements = []string{}
	}
	if sr := o.SalaryRange; sr != nil {
		dto.SalaryRange = &SalaryRangeDTO{
			Min:      sr.Min(),
			Max:      sr.Max(),
			Currency: sr.Currency(),
			Period:   string(sr.Period()),
		}
	}
	return dto
}

func toDTOs(list []*models.UserOpportunity) []OpportunityDTO {
	out := make([]OpportunityDTO, 0, len(list))
	for _, o := range list {
		out = append(out, toDTO(o))
	}
	return out
}

// OpportunityRequest is the body of create and update calls. Enum fields
// are optional and case-insensitive; empty values take the entity defaults.
type OpportunityRequest struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Title             string          `json:"title"`
	Company           string          `json:"company"`
	Description       string          `json:"description"`
	Requirements      []string        `json:"requirements"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	PostedAt          *time.Time      `json:"posted_at"`
	Location          string          `json:"location"`
	IsRemote          bool            `json:"is_remote"`
	SalaryRange       *SalaryRangeDTO `json:"salary_range"`
	ExpiresAt         *time.Time      `json:"expires_at"`
	SourceURL         string          `json:"source_url"`
	ApplicationStatus string          `json:"application_status"`
	AppliedAt         *time.Time      `json:"applied_at"`
	Notes             string          `json:"notes"`
	CoverLetterID     string          `json:"cover_letter_id"`
	ResumeID          string          `json:"resume_id"`
}

func (r OpportunityRequest) params() (models.UserOpportunityParams, error) {
	p := models.UserOpportunityParams{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Company:       r.Company,
		Description:   r.Description,
		Requirements:  r.Requirements,
		Location:      r.Location,
		IsRemote:      r.IsRemote,
		ExpiresAt:     r.ExpiresAt,
		SourceURL:     r.SourceURL,
		AppliedAt:     r.AppliedAt,
		Notes:         r.Notes,
		CoverLetterID: r.CoverLetterID,
		ResumeID:      r.ResumeID,
	}
	if r.PostedAt != nil {
		p.PostedAt = *r.PostedAt
	}

	var err error
	if r.Type != "" {
		if p.Type, err = models.ParseOpportunityType(r.Type); err != nil {
			return p, err
		}
	}
	if r.Status != "" {
		if p.Status, err = models.ParseOpportunityStatus(r.Status); err != nil {
			return p, err
		}
	}
	if r.ApplicationStatus != "" {
		if p.ApplicationStatus, err = models.ParseApplicationStatus(r.ApplicationStatus); err != nil {
			return p, err
		}
	}
	if r.SalaryRange != nil {
		sr, err := models.NewSalaryRange(r.SalaryRange.Min, r.SalaryRange.Max, r.SalaryRange.Currency, models.SalaryPeriod(r.SalaryRange.Period))
		if err != nil {
			return p, err
		}
		p.SalaryRange = &sr
	}
	return p, nil
}

type documentResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Errors   []string        `json:"errors"`
	Document *OpportunityDTO `json:"document,omitempty"`
}

type listResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors"`
	Results []OpportunityDTO `json:"results"`
	Total   int              `json:"total"`
}

type applyRequest struct {
	ResumeID      string `json:"resume_id"`
	CoverLetterID string `json:"cover_letter_id"`
}

type statusRequest struct {
	ApplicationStatus string `json:"application_status"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}
