package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
)

// SearchCriteria is the typed filter accepted by Repository.Search. Empty
// fields do not constrain the result; set fields are combined with AND.
// Keywords matches when title, company or description contains the phrase
// and Location is a substring match, both ignoring case.
type SearchCriteria struct {
	Keywords          string
	UserID            string
	Type              models.OpportunityType
	Location          string
	IsRemote          *bool
	ApplicationStatus models.ApplicationStatus
}

func (c SearchCriteria) IsZero() bool {
	return c.Keywords == "" && c.UserID == "" && c.Type == "" && c.Location == "" &&
		c.IsRemote == nil && c.ApplicationStatus == ""
}

var criteriaKeys = map[string]struct{}{
	"keywords":           {},
	"user_id":            {},
	"type":               {},
	"location":           {},
	"is_remote":          {},
	"application_status": {},
}

// ParseSearchCriteria converts an untyped key/value bag into SearchCriteria.
// Unrecognized keys are returned in ignored rather than rejected; values of
// the wrong shape for a recognized key are an INVALID_INPUT error.
func ParseSearchCriteria(raw map[string]any) (criteria SearchCriteria, ignored []string, err error) {
	for key, value := range raw {
		if _, ok := criteriaKeys[key]; !ok {
			ignored = append(ignored, key)
			continue
		}
		if value == nil {
			continue
		}

		switch key {
		case "is_remote":
			b, err := toBool(value)
			if err != nil {
				return SearchCriteria{}, nil, errors.InvalidInput("is_remote must be a boolean", err)
			}
			criteria.IsRemote = &b
			continue
		}

		var s string
		switch v := value.(type) {
		case string:
			s = v
		case models.OpportunityType:
			s = string(v)
		case models.ApplicationStatus:
			s = string(v)
		default:
			return SearchCriteria{}, nil, errors.InvalidInput(fmt.Sprintf("%s must be a string", key), nil)
		}

		switch key {
		case "keywords":
			criteria.Keywords = strings.TrimSpace(s)
		case "user_id":
			criteria.UserID = strings.TrimSpace(s)
		case "location":
			criteria.Location = strings.TrimSpace(s)
		case "type":
			if s == "" {
				continue
			}
			t, err := models.ParseOpportunityType(s)
			if err != nil {
				return SearchCriteria{}, nil, err
			}
			criteria.Type = t
		case "application_status":
			if s == "" {
				continue
			}
			st, err := models.ParseApplicationStatus(s)
			if err != nil {
				return SearchCriteria{}, nil, err
			}
			criteria.ApplicationStatus = st
		}
	}
	return criteria, ignored, nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("unsupported value %v", v)
}

// Matches is the reference predicate for Search. Backends that push the
// filter down to storage must agree with it.
func Matches(c SearchCriteria, o *models.UserOpportunity) bool {
	if c.Keywords != "" {
		kw := strings.ToLower(c.Keywords)
		if !strings.Contains(strings.ToLower(o.Title), kw) &&
			!strings.Contains(strings.ToLower(o.Company), kw) &&
			!strings.Contains(strings.ToLower(o.Description), kw) {
			return false
		}
	}
	if c.UserID != "" && o.UserID != c.UserID {
		return false
	}
	if c.Type != "" && o.Type != c.Type {
		return false
	}
	if c.Location != "" && !strings.Contains(strings.ToLower(o.Location), strings.ToLower(c.Location)) {
		return false
	}
	if c.IsRemote != nil && o.IsRemote != *c.IsRemote {
		return false
	}
	if c.ApplicationStatus != "" && o.ApplicationStatus != c.ApplicationStatus {
		return false
	}
	return true
}
