package models

import (
	"fmt"
	"strings"

	"github.com/michaelprosario/career-catalyst/internal/errors"
)

type OpportunityType string

const (
	OpportunityTypeFullTime   OpportunityType = "FULL_TIME"
	OpportunityTypePartTime   OpportunityType = "PART_TIME"
	OpportunityTypeContract   OpportunityType = "CONTRACT"
	OpportunityTypeFreelance  OpportunityType = "FREELANCE"
	OpportunityTypeInternship OpportunityType = "INTERNSHIP"
	OpportunityTypeTemporary  OpportunityType = "TEMPORARY"
)

var opportunityTypes = []OpportunityType{
	OpportunityTypeFullTime,
	OpportunityTypePartTime,
	OpportunityTypeContract,
	OpportunityTypeFreelance,
	OpportunityTypeInternship,
	OpportunityTypeTemporary,
}

func (t OpportunityType) Valid() bool {
	for _, v := range opportunityTypes {
		if t == v {
			return true
		}
	}
	return false
}

func ParseOpportunityType(s string) (OpportunityType, error) {
	t := OpportunityType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.InvalidInput(fmt.Sprintf("invalid opportunity type %q", s), nil)
	}
	return t, nil
}

// OpportunityStatus describes the posting itself, independent of the user's
// progress through the hiring funnel.
type OpportunityStatus string

const (
	OpportunityStatusActive    OpportunityStatus = "ACTIVE"
	OpportunityStatusExpired   OpportunityStatus = "EXPIRED"
	OpportunityStatusFilled    OpportunityStatus = "FILLED"
	OpportunityStatusCancelled OpportunityStatus = "CANCELLED"
)

var opportunityStatuses = []OpportunityStatus{
	OpportunityStatusActive,
	OpportunityStatusExpired,
	OpportunityStatusFilled,
	OpportunityStatusCancelled,
}

func (s OpportunityStatus) Valid() bool {
	for _, v := range opportunityStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseOpportunityStatus(s string) (OpportunityStatus, error) {
	st := OpportunityStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.InvalidInput(fmt.Sprintf("invalid opportunity status %q", s), nil)
	}
	return st, nil
}

type ApplicationStatus string

const (
	ApplicationStatusSaved        ApplicationStatus = "SAVED"
	ApplicationStatusApplied      ApplicationStatus = "APPLIED"
	ApplicationStatusScreening    ApplicationStatus = "SCREENING"
	ApplicationStatusInterviewing ApplicationStatus = "INTERVIEWING"
	ApplicationStatusOffer        ApplicationStatus = "OFFER"
	ApplicationStatusRejected     ApplicationStatus = "REJECTED"
	ApplicationStatusWithdrawn    ApplicationStatus = "WITHDRAWN"
	ApplicationStatusAccepted     ApplicationStatus = "ACCEPTED"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationStatusSaved,
	ApplicationStatusApplied,
	ApplicationStatusScreening,
	ApplicationStatusInterviewing,
	ApplicationStatusOffer,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
	ApplicationStatusAccepted,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range applicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.InvalidInput(fmt.Sprintf("invalid application status %q", s), nil)
	}
	return st, nil
}

// ApplicationStatuses returns every application status in funnel order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}
