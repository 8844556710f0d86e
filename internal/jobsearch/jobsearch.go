// Package jobsearch queries an external job-board search provider and turns
// its results into opportunities a user can bookmark.
package jobsearch

import (
	"context"
	"strings"
	"time"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
)

const (
	DefaultResultsWanted = 10
	MaxResultsWanted     = 100

	fallbackDescription = "No description available"
)

type Query struct {
	SearchTerm    string `json:"search_term"`
	Location      string `json:"location"`
	ResultsWanted int    `json:"results_wanted"`
	HoursOld      int    `json:"hours_old,omitempty"`
	IsRemote      bool   `json:"is_remote,omitempty"`
}

// Normalize trims the query, applies the result-count default and rejects
// queries the provider cannot answer.
func (q Query) Normalize() (Query, error) {
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	q.Location = strings.TrimSpace(q.Location)
	if q.SearchTerm == "" {
		return q, errors.InvalidInput("Search term cannot be empty", nil)
	}
	if q.ResultsWanted == 0 {
		q.ResultsWanted = DefaultResultsWanted
	}
	if q.ResultsWanted < 1 || q.ResultsWanted > MaxResultsWanted {
		return q, errors.InvalidInput("results_wanted must be between 1 and 100", nil)
	}
	return q, nil
}

type Posting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobURL      string `json:"job_url,omitempty"`
	DatePosted  string `json:"date_posted,omitempty"`
	IsRemote    bool   `json:"is_remote"`
	Description string `json:"description,omitempty"`
}

type Searcher interface {
	Search(ctx context.Context, q Query) ([]Posting, error)
}

// ToParams turns a search result into the parameters of a new SAVED,
// FULL_TIME opportunity owned by userID. Skills, a salary range and remote
// work are read from the description when the provider left them out.
func ToParams(userID string, p Posting) models.UserOpportunityParams {
	description := normalizeText(p.Description)
	requirements := extractSkills(description)
	salary := extractSalary(description)
	if description == "" {
		description = fallbackDescription
	}
	params := models.UserOpportunityParams{
		UserID:            userID,
		Title:             p.Title,
		Company:           p.Company,
		Description:       description,
		Requirements:      requirements,
		Type:              models.OpportunityTypeFullTime,
		Status:            models.OpportunityStatusActive,
		Location:          p.Location,
		IsRemote:          p.IsRemote || looksRemote(p),
		SalaryRange:       salary,
		SourceURL:         p.JobURL,
		ApplicationStatus: models.ApplicationStatusSaved,
	}
	if posted, ok := parseDate(p.DatePosted); ok {
		params.PostedAt = posted
	}
	return params
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
