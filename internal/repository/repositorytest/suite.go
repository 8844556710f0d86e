// Package repositorytest holds the behavioural suite every
// repository.Repository backend must pass.
package repositorytest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
)

// Now is the fixed instant the suite's clock reports. Timestamps are kept at
// millisecond precision so that document and SQL stores round-trip exactly.
var Now = time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)

// Factory returns an empty repository whose notion of "now" is the given
// clock.
type Factory func(t *testing.T, now func() time.Time) repository.Repository

func Run(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.Repository)
	}{
		{"SaveAndGetByIDRoundTrip", testSaveAndGetByID},
		{"GetByIDMissing", testGetByIDMissing},
		{"SaveDuplicateID", testSaveDuplicateID},
		{"SaveDuplicateListingIgnoresCase", testSaveDuplicateListing},
		{"UpdateExisting", testUpdateExisting},
		{"UpdateMissing", testUpdateMissing},
		{"DeleteRemovesRecord", testDelete},
		{"DeleteMissing", testDeleteMissing},
		{"GetByUserID", testGetByUserID},
		{"GetByUserAndStatus", testGetByUserAndStatus},
		{"GetByType", testGetByType},
		{"GetActive", testGetActive},
		{"SearchKeywords", testSearchKeywords},
		{"SearchLocation", testSearchLocation},
		{"SearchCombined", testSearchCombined},
		{"SearchEmptyCriteria", testSearchEmpty},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			repo := newRepo(t, func() time.Time { return Now })
			tc.fn(t, repo)
		})
	}
}

// Record builds a valid entity for the suite.
func Record(t *testing.T, id, userID, title, company string, mutate ...func(*models.UserOpportunityParams)) *models.UserOpportunity {
	t.Helper()
	p := models.UserOpportunityParams{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Company:     company,
		Description: fmt.Sprintf("%s at %s", title, company),
		Type:        models.OpportunityTypeFullTime,
		PostedAt:    Now.Add(-48 * time.Hour),
	}
	for _, m := range mutate {
		m(&p)
	}
	o, err := models.NewUserOpportunity(p, Now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("build record %s: %v", id, err)
	}
	return o
}

func mustSave(t *testing.T, repo repository.Repository, records ...*models.UserOpportunity) {
	t.Helper()
	for _, o := range records {
		if _, err := repo.Save(context.Background(), o); err != nil {
			t.Fatalf("save %s: %v", o.ID, err)
		}
	}
}

func ids(records []*models.UserOpportunity) map[string]bool {
	out := make(map[string]bool, len(records))
	for _, o := range records {
		out[o.ID] = true
	}
	return out
}

func expectIDs(t *testing.T, got []*models.UserOpportunity, want ...string) {
	t.Helper()
	set := ids(got)
	if len(set) != len(want) || len(got) != len(want) {
		t.Fatalf("got %d records %v, want %v", len(got), set, want)
	}
	for _, id := range want {
		if !set[id] {
			t.Fatalf("missing %s in %v", id, set)
		}
	}
}

func testSaveAndGetByID(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	salary, err := models.NewSalaryRange(123456.78, 150000.25, "USD", models.SalaryPeriodYearly)
	if err != nil {
		t.Fatalf("salary: %v", err)
	}
	expires := Now.Add(72 * time.Hour)
	applied := Now.Add(-30 * time.Minute)
	in := Record(t, "rt-1", "u1", "Engineer", "Acme", func(p *models.UserOpportunityParams) {
		p.Requirements = []string{"Go", "Kubernetes"}
		p.Type = models.OpportunityTypeContract
		p.Location = "Austin, TX"
		p.IsRemote = true
		p.SalaryRange = &salary
		p.ExpiresAt = &expires
		p.SourceURL = "https://jobs.example.com/1"
		p.ApplicationStatus = models.ApplicationStatusApplied
		p.AppliedAt = &applied
		p.Notes = "referral from Sam"
		p.CoverLetterID = "cl-9"
		p.ResumeID = "r-3"
	})

	saved, err := repo.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID != in.ID {
		t.Fatalf("Save() returned id %s, want %s", saved.ID, in.ID)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatalf("GetByID() returned nil")
	}

	if got.UserID != in.UserID || got.Title != in.Title || got.Company != in.Company || got.Description != in.Description {
		t.Fatalf("posting fields differ: %+v", got)
	}
	if len(got.Requirements) != 2 || got.Requirements[0] != "Go" || got.Requirements[1] != "Kubernetes" {
		t.Fatalf("Requirements = %v", got.Requirements)
	}
	if got.Type != models.OpportunityTypeContract || got.Status != models.OpportunityStatusActive {
		t.Fatalf("enums differ: type=%s status=%s", got.Type, got.Status)
	}
	if got.Location != in.Location || !got.IsRemote || got.SourceURL != in.SourceURL {
		t.Fatalf("optional posting fields differ: %+v", got)
	}
	if got.SalaryRange == nil {
		t.Fatalf("SalaryRange lost")
	}
	if got.SalaryRange.Min() != salary.Min() || got.SalaryRange.Max() != salary.Max() ||
		got.SalaryRange.Currency() != salary.Currency() || got.SalaryRange.Period() != salary.Period() {
		t.Fatalf("SalaryRange = %s, want %s", got.SalaryRange, salary)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
	if got.AppliedAt == nil || !got.AppliedAt.Equal(applied) {
		t.Fatalf("AppliedAt = %v, want %v", got.AppliedAt, applied)
	}
	if !got.PostedAt.Equal(in.PostedAt) || !got.CreatedAt.Equal(in.CreatedAt) || !got.UpdatedAt.Equal(in.UpdatedAt) {
		t.Fatalf("timestamps differ: posted=%v created=%v updated=%v", got.PostedAt, got.CreatedAt, got.UpdatedAt)
	}
	if got.ApplicationStatus != models.ApplicationStatusApplied || got.Notes != in.Notes ||
		got.CoverLetterID != in.CoverLetterID || got.ResumeID != in.ResumeID {
		t.Fatalf("tracking fields differ: %+v", got)
	}
}

func testGetByIDMissing(t *testing.T, repo repository.Repository) {
	got, err := repo.GetByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID() = %+v, want nil", got)
	}
}

func testSaveDuplicateID(t *testing.T, repo repository.Repository) {
	mustSave(t, repo, Record(t, "dup-1", "u1", "Engineer", "Acme"))
	_, err := repo.Save(context.Background(), Record(t, "dup-1", "u2", "Designer", "Other"))
	if !errors.IsDuplicateKey(err) {
		t.Fatalf("Save(duplicate id) error = %v, want DUPLICATE_KEY", err)
	}
}

func testSaveDuplicateListing(t *testing.T, repo repository.Repository) {
	mustSave(t, repo, Record(t, "l-1", "u1", "Engineer", "TechCo"))
	_, err := repo.Save(context.Background(), Record(t, "l-2", "u1", "engineer", "techco"))
	if !errors.IsDuplicateKey(err) {
		t.Fatalf("Save(same listing) error = %v, want DUPLICATE_KEY", err)
	}
	// Another user may save the same posting.
	mustSave(t, repo, Record(t, "l-3", "u2", "Engineer", "TechCo"))
}

func testUpdateExisting(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	o := Record(t, "up-1", "u1", "Engineer", "Acme")
	mustSave(t, repo, o)

	o.UpdateStatus(models.ApplicationStatusInterviewing, Now)
	if err := o.AddNotes("onsite next week", Now); err != nil {
		t.Fatalf("AddNotes: %v", err)
	}
	if _, err := repo.Update(ctx, o); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, o.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if got.ApplicationStatus != models.ApplicationStatusInterviewing || got.Notes != "onsite next week" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if !got.UpdatedAt.Equal(Now) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, Now)
	}
}

func testUpdateMissing(t *testing.T, repo repository.Repository) {
	_, err := repo.Update(context.Background(), Record(t, "ghost", "u1", "Engineer", "Acme"))
	if !errors.IsNotFound(err) {
		t.Fatalf("Update(missing) error = %v, want NOT_FOUND", err)
	}
}

func testDelete(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	mustSave(t, repo, Record(t, "del-1", "u1", "Engineer", "Acme"))
	if err := repo.Delete(ctx, "del-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := repo.GetByID(ctx, "del-1")
	if err != nil || got != nil {
		t.Fatalf("GetByID() after delete = %v, %v", got, err)
	}
	// The listing is free again once the record is gone.
	mustSave(t, repo, Record(t, "del-2", "u1", "Engineer", "Acme"))
}

func testDeleteMissing(t *testing.T, repo repository.Repository) {
	if err := repo.Delete(context.Background(), "ghost"); !errors.IsNotFound(err) {
		t.Fatalf("Delete(missing) error = %v, want NOT_FOUND", err)
	}
}

func testGetByUserID(t *testing.T, repo repository.Repository) {
	mustSave(t, repo,
		Record(t, "a", "u1", "Engineer", "Acme"),
		Record(t, "b", "u1", "Manager", "Acme"),
		Record(t, "c", "u2", "Engineer", "Acme"),
	)
	got, err := repo.GetByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	expectIDs(t, got, "a", "b")

	none, err := repo.GetByUserID(context.Background(), "nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("GetByUserID(nobody) = %v, %v", none, err)
	}
}

func testGetByUserAndStatus(t *testing.T, repo repository.Repository) {
	applied := func(p *models.UserOpportunityParams) { p.ApplicationStatus = models.ApplicationStatusApplied }
	mustSave(t, repo,
		Record(t, "a", "u1", "Engineer", "Acme", applied),
		Record(t, "b", "u1", "Manager", "Acme"),
		Record(t, "c", "u2", "Engineer", "Acme", applied),
	)
	got, err := repo.GetByUserAndStatus(context.Background(), "u1", models.ApplicationStatusApplied)
	if err != nil {
		t.Fatalf("GetByUserAndStatus() error = %v", err)
	}
	expectIDs(t, got, "a")
}

func testGetByType(t *testing.T, repo repository.Repository) {
	contract := func(p *models.UserOpportunityParams) { p.Type = models.OpportunityTypeContract }
	mustSave(t, repo,
		Record(t, "a", "u1", "Engineer", "Acme", contract),
		Record(t, "b", "u1", "Manager", "Acme"),
		Record(t, "c", "u2", "Engineer", "Beta", contract),
	)
	got, err := repo.GetByType(context.Background(), models.OpportunityTypeContract)
	if err != nil {
		t.Fatalf("GetByType() error = %v", err)
	}
	expectIDs(t, got, "a", "c")
}

func testGetActive(t *testing.T, repo repository.Repository) {
	future := Now.Add(time.Hour)
	past := Now.Add(-time.Hour)
	mustSave(t, repo,
		Record(t, "open", "u1", "Engineer", "Acme"),
		Record(t, "open-until-later", "u1", "Engineer", "Beta", func(p *models.UserOpportunityParams) { p.ExpiresAt = &future }),
		Record(t, "expired", "u1", "Engineer", "Gamma", func(p *models.UserOpportunityParams) { p.ExpiresAt = &past }),
		Record(t, "expires-now", "u1", "Engineer", "Delta", func(p *models.UserOpportunityParams) {
			at := Now
			p.ExpiresAt = &at
		}),
		Record(t, "filled", "u1", "Engineer", "Epsilon", func(p *models.UserOpportunityParams) {
			p.Status = models.OpportunityStatusFilled
		}),
	)
	got, err := repo.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	expectIDs(t, got, "open", "open-until-later")
}

func seedSearch(t *testing.T, repo repository.Repository) {
	mustSave(t, repo,
		Record(t, "py-title", "u1", "Senior Python Developer", "Acme", func(p *models.UserOpportunityParams) {
			p.Location = "San Francisco, CA"
		}),
		Record(t, "py-company", "u1", "Engineer", "PythonWorks", func(p *models.UserOpportunityParams) {
			p.Location = "New York"
			p.IsRemote = true
		}),
		Record(t, "py-desc", "u2", "Backend Engineer", "Beta", func(p *models.UserOpportunityParams) {
			p.Description = "We write PYTHON and Go"
			p.Location = "south san francisco"
			p.ApplicationStatus = models.ApplicationStatusApplied
		}),
		Record(t, "go-only", "u2", "Go Developer", "Gamma", func(p *models.UserOpportunityParams) {
			p.Location = "Remote"
			p.IsRemote = true
			p.Type = models.OpportunityTypeContract
		}),
	)
}

func testSearchKeywords(t *testing.T, repo repository.Repository) {
	seedSearch(t, repo)
	got, err := repo.Search(context.Background(), repository.SearchCriteria{Keywords: "python"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "py-title", "py-company", "py-desc")

	// Regex metacharacters are matched literally.
	got, err = repo.Search(context.Background(), repository.SearchCriteria{Keywords: "c++ (senior)"})
	if err != nil {
		t.Fatalf("Search(metachars) error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search(metachars) = %v, want none", ids(got))
	}
}

func testSearchLocation(t *testing.T, repo repository.Repository) {
	seedSearch(t, repo)
	got, err := repo.Search(context.Background(), repository.SearchCriteria{Location: "San Francisco"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "py-title", "py-desc")
}

func testSearchCombined(t *testing.T, repo repository.Repository) {
	seedSearch(t, repo)
	remote := true
	got, err := repo.Search(context.Background(), repository.SearchCriteria{IsRemote: &remote, UserID: "u2"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "go-only")

	got, err = repo.Search(context.Background(), repository.SearchCriteria{
		Keywords:          "python",
		ApplicationStatus: models.ApplicationStatusApplied,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "py-desc")

	got, err = repo.Search(context.Background(), repository.SearchCriteria{Type: models.OpportunityTypeContract})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "go-only")

	notRemote := false
	got, err = repo.Search(context.Background(), repository.SearchCriteria{IsRemote: &notRemote})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	expectIDs(t, got, "py-title", "py-desc")
}

func testSearchEmpty(t *testing.T, repo repository.Repository) {
	seedSearch(t, repo)
	got, err := repo.Search(context.Background(), repository.SearchCriteria{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Search(empty) returned %d records, want 4", len(got))
	}
}
