package models

import (
	"testing"
	"time"

	"github.com/michaelprosario/career-catalyst/internal/errors"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func validParams() UserOpportunityParams {
	return UserOpportunityParams{
		ID:           "uo-1",
		UserID:       "u1",
		Title:        "Engineer",
		Company:      "Acme",
		Description:  "Build things",
		Requirements: []string{"Go", "SQL"},
		Type:         OpportunityTypeFullTime,
	}
}

func TestNewUserOpportunityDefaults(t *testing.T) {
	o, err := NewUserOpportunity(validParams(), fixedNow)
	if err != nil {
		t.Fatalf("NewUserOpportunity() error = %v", err)
	}
	if o.ApplicationStatus != ApplicationStatusSaved {
		t.Fatalf("ApplicationStatus = %s, want SAVED", o.ApplicationStatus)
	}
	if o.Status != OpportunityStatusActive {
		t.Fatalf("Status = %s, want ACTIVE", o.Status)
	}
	if !o.CreatedAt.Equal(fixedNow) || !o.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("timestamps not stamped: created=%v updated=%v", o.CreatedAt, o.UpdatedAt)
	}
	if o.IsRemote {
		t.Fatalf("IsRemote should default to false")
	}
	if o.IsApplied() {
		t.Fatalf("new record should not be applied")
	}
}

func TestNewUserOpportunityRejectsEmptyRequiredFields(t *testing.T) {
	cases := map[string]func(p *UserOpportunityParams){
		"id":          func(p *UserOpportunityParams) { p.ID = "" },
		"user id":     func(p *UserOpportunityParams) { p.UserID = "  " },
		"title":       func(p *UserOpportunityParams) { p.Title = "" },
		"company":     func(p *UserOpportunityParams) { p.Company = "" },
		"description": func(p *UserOpportunityParams) { p.Description = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validParams()
			mutate(&p)
			o, err := NewUserOpportunity(p, fixedNow)
			if err == nil {
				t.Fatalf("expected error, got %+v", o)
			}
			if !errors.IsInvalidInput(err) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestNewUserOpportunityRejectsUnknownEnums(t *testing.T) {
	p := validParams()
	p.Type = "GIG"
	if _, err := NewUserOpportunity(p, fixedNow); err == nil {
		t.Fatalf("expected unknown type to be rejected")
	}
	p = validParams()
	p.ApplicationStatus = "GHOSTED"
	if _, err := NewUserOpportunity(p, fixedNow); err == nil {
		t.Fatalf("expected unknown application status to be rejected")
	}
}

func TestApplyFromSaved(t *testing.T) {
	o, _ := NewUserOpportunity(validParams(), fixedNow)
	later := fixedNow.Add(time.Hour)

	if err := o.Apply("r1", "cl1", later); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if o.ApplicationStatus != ApplicationStatusApplied {
		t.Fatalf("ApplicationStatus = %s, want APPLIED", o.ApplicationStatus)
	}
	if o.AppliedAt == nil || !o.AppliedAt.Equal(later) {
		t.Fatalf("AppliedAt = %v, want %v", o.AppliedAt, later)
	}
	if o.ResumeID != "r1" || o.CoverLetterID != "cl1" {
		t.Fatalf("unexpected linked documents: resume=%q cover=%q", o.ResumeID, o.CoverLetterID)
	}
	if !o.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", o.UpdatedAt, later)
	}
	if !o.IsApplied() {
		t.Fatalf("IsApplied() = false after apply")
	}

	err := o.Apply("r2", "", later.Add(time.Hour))
	if !errors.IsInvalidStateTransition(err) {
		t.Fatalf("second Apply() error = %v, want INVALID_STATE_TRANSITION", err)
	}
	if o.ResumeID != "r1" {
		t.Fatalf("failed apply must not modify the record")
	}
}

func TestApplyKeepsCoverLetterWhenOmitted(t *testing.T) {
	p := validParams()
	p.CoverLetterID = "existing"
	o, _ := NewUserOpportunity(p, fixedNow)
	if err := o.Apply("r1", "", fixedNow); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if o.CoverLetterID != "existing" {
		t.Fatalf("CoverLetterID = %q, want existing", o.CoverLetterID)
	}
}

func TestApplyRejectedFromEveryOtherStatus(t *testing.T) {
	for _, st := range ApplicationStatuses() {
		if st == ApplicationStatusSaved {
			continue
		}
		o, _ := NewUserOpportunity(validParams(), fixedNow)
		o.UpdateStatus(st, fixedNow)
		if err := o.Apply("r1", "", fixedNow); !errors.IsInvalidStateTransition(err) {
			t.Fatalf("Apply() from %s error = %v, want INVALID_STATE_TRANSITION", st, err)
		}
	}
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	o, _ := NewUserOpportunity(validParams(), fixedNow)
	steps := []ApplicationStatus{
		ApplicationStatusAccepted,
		ApplicationStatusSaved,
		ApplicationStatusInterviewing,
		ApplicationStatusWithdrawn,
		ApplicationStatusOffer,
	}
	for i, st := range steps {
		at := fixedNow.Add(time.Duration(i+1) * time.Minute)
		o.UpdateStatus(st, at)
		if o.ApplicationStatus != st {
			t.Fatalf("ApplicationStatus = %s, want %s", o.ApplicationStatus, st)
		}
		if !o.UpdatedAt.Equal(at) {
			t.Fatalf("UpdatedAt = %v, want %v", o.UpdatedAt, at)
		}
	}
}

func TestAddNotes(t *testing.T) {
	o, _ := NewUserOpportunity(validParams(), fixedNow)
	if err := o.AddNotes("  ", fixedNow); !errors.IsInvalidInput(err) {
		t.Fatalf("AddNotes(blank) error = %v, want INVALID_INPUT", err)
	}
	later := fixedNow.Add(time.Minute)
	if err := o.AddNotes("call back friday", later); err != nil {
		t.Fatalf("AddNotes() error = %v", err)
	}
	if o.Notes != "call back friday" || !o.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected state after AddNotes: %+v", o)
	}
	if err := o.AddNotes("replaced", later); err != nil || o.Notes != "replaced" {
		t.Fatalf("AddNotes() should replace notes, got %q (%v)", o.Notes, err)
	}
}

func TestIsActiveBoundary(t *testing.T) {
	expires := fixedNow
	p := validParams()
	p.ExpiresAt = &expires
	o, _ := NewUserOpportunity(p, fixedNow.Add(-time.Hour))

	if !o.IsActive(expires.Add(-time.Nanosecond)) {
		t.Fatalf("expected active just before expiry")
	}
	if o.IsActive(expires) {
		t.Fatalf("expected inactive at the expiry instant")
	}
	if !o.IsExpired(expires) {
		t.Fatalf("expected expired at the expiry instant")
	}
	if o.IsExpired(expires.Add(-time.Nanosecond)) {
		t.Fatalf("expected not expired before expiry")
	}

	o.ExpiresAt = nil
	if !o.IsActive(expires.Add(100 * time.Hour)) {
		t.Fatalf("record without expiry should stay active")
	}
	o.Status = OpportunityStatusFilled
	if o.IsActive(fixedNow) {
		t.Fatalf("filled posting should not be active")
	}
}

func TestCloneIsDeep(t *testing.T) {
	sr, _ := NewSalaryRange(1, 2, "USD", SalaryPeriodYearly)
	p := validParams()
	p.SalaryRange = &sr
	o, _ := NewUserOpportunity(p, fixedNow)
	c := o.Clone()
	c.Requirements[0] = "Rust"
	c.Title = "Other"
	if o.Requirements[0] != "Go" || o.Title != "Engineer" {
		t.Fatalf("clone shares state with original")
	}
	if c.SalaryRange == o.SalaryRange {
		t.Fatalf("clone shares salary range pointer")
	}
}

func TestSameListingIgnoresCase(t *testing.T) {
	a, _ := NewUserOpportunity(validParams(), fixedNow)
	p := validParams()
	p.ID = "uo-2"
	p.Title = " engineer"
	p.Company = "ACME "
	b, _ := NewUserOpportunity(p, fixedNow)
	if !a.SameListing(b) {
		t.Fatalf("expected listings to match case-insensitively")
	}
	b.UserID = "u2"
	if a.SameListing(b) {
		t.Fatalf("different users must not match")
	}
}
