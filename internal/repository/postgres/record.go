package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

// record is the row shape of a user opportunity. The salary range is
// flattened into nullable columns and the listing keys back the unique
// (user_id, title_key, company_key) index.
type record struct {
	ID     string `gorm:"column:id;primaryKey"`
	UserID string `gorm:"column:user_id;not null;index;index:idx_user_status,priority:1;uniqueIndex:idx_user_listing,priority:1"`

	Title          string         `gorm:"column:title;not null;index"`
	Company        string         `gorm:"column:company;not null;index"`
	Description    string         `gorm:"column:description;type:text;not null"`
	Requirements   pq.StringArray `gorm:"column:requirements;type:text[]"`
	Type           string         `gorm:"column:type;not null;index"`
	Status         string         `gorm:"column:status;not null;index"`
	PostedAt       time.Time      `gorm:"column:posted_at;index"`
	Location       string         `gorm:"column:location"`
	IsRemote       bool           `gorm:"column:is_remote"`
	SalaryMin      *float64       `gorm:"column:salary_min"`
	SalaryMax      *float64       `gorm:"column:salary_max"`
	SalaryCurrency *string        `gorm:"column:salary_currency"`
	SalaryPeriod   *string        `gorm:"column:salary_period"`
	ExpiresAt      *time.Time     `gorm:"column:expires_at"`
	SourceURL      string         `gorm:"column:source_url"`

	ApplicationStatus string     `gorm:"column:application_status;not null;index;index:idx_user_status,priority:2"`
	CreatedAt         time.Time  `gorm:"column:created_at;index;autoCreateTime:false"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
	AppliedAt         *time.Time `gorm:"column:applied_at;index"`
	Notes             string     `gorm:"column:notes;type:text"`
	CoverLetterID     string     `gorm:"column:cover_letter_id"`
	ResumeID          string     `gorm:"column:resume_id"`

	TitleKey   string `gorm:"column:title_key;not null;uniqueIndex:idx_user_listing,priority:2"`
	CompanyKey string `gorm:"column:company_key;not null;uniqueIndex:idx_user_listing,priority:3"`
}

func (record) TableName() string {
	return "user_opportunities"
}

func toRecord(o *models.UserOpportunity) record {
	r := record{
		ID:                o.ID,
		UserID:            o.UserID,
		Title:             o.Title,
		Company:           o.Company,
		Description:       o.Description,
		Requirements:      pq.StringArray(o.Requirements),
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
	if r.Requirements == nil {
		r.Requirements = pq.StringArray{}
	}
	if sr := o.SalaryRange; sr != nil {
		lo, hi := sr.Min(), sr.Max()
		currency, period := sr.Currency(), string(sr.Period())
		r.SalaryMin, r.SalaryMax = &lo, &hi
		r.SalaryCurrency, r.SalaryPeriod = &currency, &period
	}
	return r
}

func (r record) toModel() (*models.UserOpportunity, error) {
	o := &models.UserOpportunity{
		ID:                r.ID,
		UserID:            r.UserID,
		Title:             r.Title,
		Company:           r.Company,
		Description:       r.Description,
		Requirements:      []string(r.Requirements),
		Type:              models.OpportunityType(r.Type),
		Status:            models.OpportunityStatus(r.Status),
		PostedAt:          r.PostedAt.UTC(),
		Location:          r.Location,
		IsRemote:          r.IsRemote,
		SourceURL:         r.SourceURL,
		ApplicationStatus: models.ApplicationStatus(r.ApplicationStatus),
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
		Notes:             r.Notes,
		CoverLetterID:     r.CoverLetterID,
		ResumeID:          r.ResumeID,
	}
	o.ExpiresAt = utcPtr(r.ExpiresAt)
	o.AppliedAt = utcPtr(r.AppliedAt)
	if r.SalaryMin != nil && r.SalaryMax != nil && r.SalaryCurrency != nil && r.SalaryPeriod != nil {
		sr, err := models.NewSalaryRange(*r.SalaryMin, *r.SalaryMax, *r.SalaryCurrency, models.SalaryPeriod(*r.SalaryPeriod))
		if err != nil {
			return nil, err
		}
		o.SalaryRange = &sr
	}
	return o, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
