package mongo

import (
	"time"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

type salaryDocument struct {
	Min      float64 `bson:"min"`
	Max      float64 `bson:"max"`
	Currency string  `bson:"currency"`
	Period   string  `bson:"period"`
}

// document is the stored shape of a user opportunity. TitleKey and
// CompanyKey hold the normalized listing fields that back the unique index.
type document struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`

	Title        string          `bson:"title"`
	Company      string          `bson:"company"`
	Description  string          `bson:"description"`
	Requirements []string        `bson:"requirements"`
	Type         string          `bson:"type"`
	Status       string          `bson:"status"`
	PostedAt     time.Time       `bson:"posted_at"`
	Location     string          `bson:"location"`
	IsRemote     bool            `bson:"is_remote"`
	SalaryRange  *salaryDocument `bson:"salary_range,omitempty"`
	ExpiresAt    *time.Time      `bson:"expires_at,omitempty"`
	SourceURL    string          `bson:"source_url,omitempty"`

	ApplicationStatus string     `bson:"application_status"`
	CreatedAt         time.Time  `bson:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at"`
	AppliedAt         *time.Time `bson:"applied_at,omitempty"`
	Notes             string     `bson:"notes,omitempty"`
	CoverLetterID     string     `bson:"cover_letter_id,omitempty"`
	ResumeID          string     `bson:"resume_id,omitempty"`

	TitleKey   string `bson:"title_key"`
	CompanyKey string `bson:"company_key"`
}

func toDocument(o *models.UserOpportunity) document {
	d := document{
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
		TitleKey:          models.NormalizeKey(o.Title),
		CompanyKey:        models.NormalizeKey(o.Company),
	}
	if d.Requirements == nil {
		d.Requirements = []string{}
	}
	if o.SalaryRange != nil {
		d.SalaryRange = &salaryDocument{
			Min:      o.SalaryRange.Min(),
			Max:      o.SalaryRange.Max(),
			Currency: o.SalaryRange.Currency(),
			Period:   string(o.SalaryRange.Period()),
		}
	}
	return d
}

func (d document) toModel() (*models.UserOpportunity, error) {
	o := &models.UserOpportunity{
		ID:                d.ID,
		UserID:            d.UserID,
		Title:             d.Title,
		Company:           d.Company,
		Description:       d.Description,
		Requirements:      d.Requirements,
		Type:              models.OpportunityType(d.Type),
		Status:            models.OpportunityStatus(d.Status),
		PostedAt:          d.PostedAt.UTC(),
		Location:          d.Location,
		IsRemote:          d.IsRemote,
		SourceURL:         d.SourceURL,
		ApplicationStatus: models.ApplicationStatus(d.ApplicationStatus),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
		Notes:             d.Notes,
		CoverLetterID:     d.CoverLetterID,
		ResumeID:          d.ResumeID,
	}
	if d.ExpiresAt != nil {
		t := d.ExpiresAt.UTC()
		o.ExpiresAt = &t
	}
	if d.AppliedAt != nil {
		t := d.AppliedAt.UTC()
		o.AppliedAt = &t
	}
	if d.SalaryRange != nil {
		sr, err := models.NewSalaryRange(d.SalaryRange.Min, d.SalaryRange.Max, d.SalaryRange.Currency,
			models.SalaryPeriod(d.SalaryRange.Period))
		if err != nil {
			return nil, err
		}
		o.SalaryRange = &sr
	}
	return o, nil
}
