package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/events"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
	"github.com/michaelprosario/career-catalyst/internal/repository/memory"
)

var fixedNow = time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T, repo repository.Repository) (*OpportunityService, *recordingPublisher) {
	t.Helper()
	if repo == nil {
		repo = memory.New(memory.WithClock(func() time.Time { return fixedNow }))
	}
	pub := &recordingPublisher{}
	return NewOpportunityService(repo, pub, zaptest.NewLogger(t), WithClock(func() time.Time { return fixedNow })), pub
}

func params(userID, title, company string) models.UserOpportunityParams {
	return models.UserOpportunityParams{
		UserID:      userID,
		Title:       title,
		Company:     company,
		Description: "Build and run services",
		Type:        models.OpportunityTypeFullTime,
	}
}

func mustSave(t *testing.T, s *OpportunityService, p models.UserOpportunityParams) string {
	t.Helper()
	res := s.Save(context.Background(), p)
	if !res.Success {
		t.Fatalf("Save() failed: %s %v", res.Message, res.Errors)
	}
	return res.ID
}

func TestOpportunityLifecycle(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestService(t, nil)

	res := s.Save(ctx, params("u1", "Engineer", "Acme"))
	if !res.Success || res.ID == "" {
		t.Fatalf("Save() = %+v", res)
	}
	if res.Message != "User opportunity added successfully" {
		t.Fatalf("Save() message = %q", res.Message)
	}
	id := res.ID

	again := s.Save(ctx, params("u1", "Engineer", "Acme"))
	if again.Success || !strings.Contains(again.Message, "already saved") {
		t.Fatalf("second Save() = %+v, want already saved failure", again)
	}

	got := s.GetUserOpportunityByID(ctx, id)
	if !got.Success || got.Document == nil {
		t.Fatalf("GetUserOpportunityByID() = %+v", got)
	}
	if got.Document.Title != "Engineer" || got.Document.Company != "Acme" || got.Document.UserID != "u1" {
		t.Fatalf("document fields differ: %+v", got.Document)
	}
	if got.Document.ApplicationStatus != models.ApplicationStatusSaved || !got.Document.CreatedAt.Equal(fixedNow) {
		t.Fatalf("document defaults differ: %+v", got.Document)
	}

	applied, err := s.Apply(ctx, id, "r1", "")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if applied.ApplicationStatus != models.ApplicationStatusApplied || applied.AppliedAt == nil || !applied.IsApplied() {
		t.Fatalf("Apply() = %+v", applied)
	}
	if applied.ResumeID != "r1" {
		t.Fatalf("ResumeID = %q, want r1", applied.ResumeID)
	}

	interviewing, err := s.UpdateApplicationStatus(ctx, id, models.ApplicationStatusInterviewing)
	if err != nil {
		t.Fatalf("UpdateApplicationStatus() error = %v", err)
	}
	if interviewing.ApplicationStatus != models.ApplicationStatusInterviewing {
		t.Fatalf("status = %s, want INTERVIEWING", interviewing.ApplicationStatus)
	}

	del := s.DeleteUserOpportunityByID(ctx, id)
	if !del.Success {
		t.Fatalf("DeleteUserOpportunityByID() = %+v", del)
	}

	gone := s.GetUserOpportunityByID(ctx, id)
	if gone.Success || !strings.Contains(gone.Message, "not found") {
		t.Fatalf("GetUserOpportunityByID() after delete = %+v", gone)
	}

	want := []events.Type{events.TypeSaved, events.TypeApplied, events.TypeStatusChanged, events.TypeDeleted}
	gotTypes := pub.types()
	if len(gotTypes) != len(want) {
		t.Fatalf("published %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("published %v, want %v", gotTypes, want)
		}
	}
}

func TestAddRejectsSameListingIgnoringCase(t *testing.T) {
	s, _ := newTestService(t, nil)
	mustSave(t, s, params("u1", "Engineer", "TechCo"))

	res := s.Save(context.Background(), params("u1", "engineer", "techco"))
	if res.Success || res.Message != MsgAlreadySaved {
		t.Fatalf("Save() = %+v, want %q", res, MsgAlreadySaved)
	}

	other := s.Save(context.Background(), params("u2", "engineer", "techco"))
	if !other.Success {
		t.Fatalf("another user should be able to save the listing: %+v", other)
	}
}

func TestAddRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestService(t, nil)

	if res := s.AddUserOpportunity(ctx, nil); res.Success || res.Message == "" {
		t.Fatalf("AddUserOpportunity(nil) = %+v", res)
	}

	cases := []struct {
		name   string
		mutate func(*models.UserOpportunity)
		want   string
	}{
		{"id", func(o *models.UserOpportunity) { o.ID = " " }, "ID cannot be empty"},
		{"user", func(o *models.UserOpportunity) { o.UserID = "" }, "User ID cannot be empty"},
		{"title", func(o *models.UserOpportunity) { o.Title = "" }, "Title cannot be empty"},
		{"company", func(o *models.UserOpportunity) { o.Company = "" }, "Company cannot be empty"},
		{"description", func(o *models.UserOpportunity) { o.Description = "" }, "description cannot be empty"},
	}
	for _, tc := range cases {
		p := params("u1", "Engineer", "Acme")
		p.ID = "x-" + tc.name
		o, err := models.NewUserOpportunity(p, fixedNow)
		if err != nil {
			t.Fatal(err)
		}
		tc.mutate(o)
		res := s.AddUserOpportunity(ctx, o)
		if res.Success || !strings.Contains(res.Message, tc.want) {
			t.Fatalf("%s: AddUserOpportunity() = %+v, want message containing %q", tc.name, res, tc.want)
		}
	}

	bad := s.Save(ctx, models.UserOpportunityParams{UserID: "u1", Title: "Engineer"})
	if bad.Success {
		t.Fatalf("Save() with missing fields should fail")
	}
	if len(pub.types()) != 0 {
		t.Fatalf("no event should be published for rejected records")
	}
}

func TestDeleteMissingIsNotFoundEveryTime(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	res := s.DeleteUserOpportunityByID(ctx, "ghost")
	if res.Success || !strings.Contains(res.Message, "not found") {
		t.Fatalf("Delete(ghost) = %+v", res)
	}

	id := mustSave(t, s, params("u1", "Engineer", "Acme"))
	if first := s.DeleteUserOpportunityByID(ctx, id); !first.Success {
		t.Fatalf("first delete = %+v", first)
	}
	second := s.DeleteUserOpportunityByID(ctx, id)
	if second.Success || !strings.Contains(second.Message, "not found") {
		t.Fatalf("second delete = %+v, want not found", second)
	}

	if empty := s.DeleteUserOpportunityByID(ctx, ""); empty.Success || empty.Message != "ID cannot be empty" {
		t.Fatalf("Delete(\"\") = %+v", empty)
	}
}

func TestUpdateUserOpportunity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	id := mustSave(t, s, params("u1", "Engineer", "Acme"))
	doc := s.GetUserOpportunityByID(ctx, id).Document
	doc.Location = "Remote"
	doc.IsRemote = true

	res := s.UpdateUserOpportunity(ctx, doc)
	if !res.Success || res.Message != "User opportunity updated successfully" {
		t.Fatalf("UpdateUserOpportunity() = %+v", res)
	}
	if got := s.GetUserOpportunityByID(ctx, id).Document; !got.IsRemote || got.Location != "Remote" {
		t.Fatalf("update not persisted: %+v", got)
	}

	doc.ID = "ghost"
	missing := s.UpdateUserOpportunity(ctx, doc)
	if missing.Success || missing.Message != "UserOpportunity with ID ghost not found" {
		t.Fatalf("UpdateUserOpportunity(ghost) = %+v", missing)
	}
	if res := s.UpdateUserOpportunity(ctx, nil); res.Success {
		t.Fatalf("UpdateUserOpportunity(nil) should fail")
	}
}

func TestUpdateKeepsOwnerAndCreationTime(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	id := mustSave(t, s, params("u1", "Engineer", "Acme"))
	created := s.GetUserOpportunityByID(ctx, id).Document.CreatedAt

	moved := s.GetUserOpportunityByID(ctx, id).Document
	moved.UserID = "u2"
	res := s.UpdateUserOpportunity(ctx, moved)
	if res.Success || res.Message != MsgUserIDImmutable || res.Type != errors.ErrTypeInvalidInput {
		t.Fatalf("UpdateUserOpportunity(new owner) = %+v", res)
	}
	if got := s.GetUserOpportunityByID(ctx, id).Document; got.UserID != "u1" {
		t.Fatalf("owner changed to %q", got.UserID)
	}

	backdated := s.GetUserOpportunityByID(ctx, id).Document
	backdated.CreatedAt = created.AddDate(-5, 0, 0)
	backdated.Notes = "follow up"
	if res := s.UpdateUserOpportunity(ctx, backdated); !res.Success {
		t.Fatalf("UpdateUserOpportunity(backdated) = %+v", res)
	}
	got := s.GetUserOpportunityByID(ctx, id).Document
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Notes != "follow up" {
		t.Fatalf("Notes = %q, want follow up", got.Notes)
	}
	if !backdated.CreatedAt.Equal(created.AddDate(-5, 0, 0)) {
		t.Fatalf("caller's record was modified")
	}
}

// failingRepo fails every call with a storage error.
type failingRepo struct {
	repository.Repository
	err error
}

func (f failingRepo) GetByID(context.Context, string) (*models.UserOpportunity, error) {
	return nil, f.err
}

func (f failingRepo) GetByUserID(context.Context, string) ([]*models.UserOpportunity, error) {
	return nil, f.err
}

func (f failingRepo) Search(context.Context, repository.SearchCriteria) ([]*models.UserOpportunity, error) {
	return nil, f.err
}

func TestStorageFailuresBecomeFailureResults(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, failingRepo{err: stderrors.New("connection refused")})

	add := s.Save(ctx, params("u1", "Engineer", "Acme"))
	if add.Success || !strings.Contains(add.Message, "connection refused") {
		t.Fatalf("Save() = %+v, want storage error text", add)
	}
	get := s.GetUserOpportunityByID(ctx, "id")
	if get.Success || !strings.Contains(get.Message, "connection refused") {
		t.Fatalf("GetUserOpportunityByID() = %+v", get)
	}
	del := s.DeleteUserOpportunityByID(ctx, "id")
	if del.Success || len(del.Errors) != 1 {
		t.Fatalf("DeleteUserOpportunityByID() = %+v", del)
	}

	_, err := s.Search(ctx, repository.SearchCriteria{Keywords: "go"})
	if errors.TypeOf(err) != errors.ErrTypeInternal {
		t.Fatalf("Search() error = %v, want INTERNAL", err)
	}
	_, err = s.Apply(ctx, "id", "r1", "")
	if errors.TypeOf(err) != errors.ErrTypeInternal {
		t.Fatalf("Apply() error = %v, want INTERNAL", err)
	}
}

// blindRepo hides existing records from the pre-check, as a concurrent add
// would, so only the storage guard can reject the duplicate.
type blindRepo struct {
	*memory.Repository
}

func (blindRepo) GetByUserID(context.Context, string) ([]*models.UserOpportunity, error) {
	return nil, nil
}

func TestStorageDuplicateFromRaceIsFailureResult(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, blindRepo{memory.New()})

	mustSave(t, s, params("u1", "Engineer", "TechCo"))
	res := s.Save(ctx, params("u1", "ENGINEER", "techco"))
	if res.Success {
		t.Fatalf("duplicate slipped past the storage guard")
	}
	if !strings.Contains(res.Message, "Failed to add user opportunity") || len(res.Errors) == 0 {
		t.Fatalf("Save() = %+v, want wrapped duplicate key failure", res)
	}
}

func TestConcurrentAddsKeepOneRecord(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	s, _ := newTestService(t, repo)

	var wg sync.WaitGroup
	results := make([]AppResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Save(ctx, params("u1", "Engineer", "Acme"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, r := range results {
		if r.Success {
			wins++
		}
	}
	all, _ := repo.GetByUserID(ctx, "u1")
	if wins != 1 || len(all) != 1 {
		t.Fatalf("wins = %d, stored = %d, want 1 and 1", wins, len(all))
	}
}

func TestApplyRules(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	id := mustSave(t, s, params("u1", "Engineer", "Acme"))
	if _, err := s.Apply(ctx, id, "r1", "cl1"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := s.Apply(ctx, id, "r1", ""); !errors.IsInvalidStateTransition(err) {
		t.Fatalf("second Apply() error = %v, want INVALID_STATE_TRANSITION", err)
	}

	expired := params("u1", "Analyst", "Acme")
	at := fixedNow
	expired.ExpiresAt = &at
	expiredID := mustSave(t, s, expired)
	if _, err := s.Apply(ctx, expiredID, "r1", ""); !errors.IsInvalidStateTransition(err) {
		t.Fatalf("Apply(expired) error = %v, want INVALID_STATE_TRANSITION", err)
	}

	filled := params("u1", "Designer", "Acme")
	filled.Status = models.OpportunityStatusFilled
	filledID := mustSave(t, s, filled)
	if _, err := s.Apply(ctx, filledID, "r1", ""); !errors.IsInvalidStateTransition(err) {
		t.Fatalf("Apply(filled) error = %v, want INVALID_STATE_TRANSITION", err)
	}

	fresh := mustSave(t, s, params("u1", "Manager", "Acme"))
	if _, err := s.Apply(ctx, fresh, "", ""); !errors.IsInvalidInput(err) {
		t.Fatalf("Apply(no resume) error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Apply(ctx, "ghost", "r1", ""); !errors.IsNotFound(err) {
		t.Fatalf("Apply(ghost) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Apply(ctx, "", "r1", ""); !errors.IsInvalidInput(err) {
		t.Fatalf("Apply(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestUpdateApplicationStatusAllowsAnyTransition(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)
	id := mustSave(t, s, params("u1", "Engineer", "Acme"))

	path := []models.ApplicationStatus{
		models.ApplicationStatusAccepted,
		models.ApplicationStatusSaved,
		models.ApplicationStatusRejected,
		models.ApplicationStatusOffer,
	}
	for _, status := range path {
		o, err := s.UpdateApplicationStatus(ctx, id, status)
		if err != nil {
			t.Fatalf("UpdateApplicationStatus(%s) error = %v", status, err)
		}
		if o.ApplicationStatus != status || !o.UpdatedAt.Equal(fixedNow) {
			t.Fatalf("UpdateApplicationStatus(%s) = %+v", status, o)
		}
	}

	if _, err := s.UpdateApplicationStatus(ctx, id, "HIRED"); !errors.IsInvalidInput(err) {
		t.Fatalf("UpdateApplicationStatus(HIRED) error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.UpdateApplicationStatus(ctx, "ghost", models.ApplicationStatusOffer); !errors.IsNotFound(err) {
		t.Fatalf("UpdateApplicationStatus(ghost) error = %v, want NOT_FOUND", err)
	}
}

func TestAddNotes(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestService(t, nil)
	id := mustSave(t, s, params("u1", "Engineer", "Acme"))

	if _, err := s.AddNotes(ctx, id, "   "); !errors.IsInvalidInput(err) {
		t.Fatalf("AddNotes(blank) error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.AddNotes(ctx, "ghost", "hello"); !errors.IsNotFound(err) {
		t.Fatalf("AddNotes(ghost) error = %v, want NOT_FOUND", err)
	}
	o, err := s.AddNotes(ctx, id, "recruiter called")
	if err != nil {
		t.Fatalf("AddNotes() error = %v", err)
	}
	if o.Notes != "recruiter called" {
		t.Fatalf("Notes = %q", o.Notes)
	}
	types := pub.types()
	if types[len(types)-1] != events.TypeNotesAdded {
		t.Fatalf("last event = %s, want notes_added", types[len(types)-1])
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	s, pub := newTestService(t, nil)
	pub.err = stderrors.New("nats down")

	res := s.Save(context.Background(), params("u1", "Engineer", "Acme"))
	if !res.Success {
		t.Fatalf("Save() = %+v, want success despite publish failure", res)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	py := params("u1", "Python Developer", "Acme")
	py.Location = "San Francisco, CA"
	mustSave(t, s, py)
	contract := params("u1", "Go Developer", "Beta")
	contract.Type = models.OpportunityTypeContract
	contract.Location = "Austin"
	contractID := mustSave(t, s, contract)
	mustSave(t, s, params("u2", "Engineer", "Gamma"))

	found, err := s.Search(ctx, repository.SearchCriteria{Keywords: "PYTHON"})
	if err != nil || len(found) != 1 || found[0].Title != "Python Developer" {
		t.Fatalf("Search(python) = %v, %v", found, err)
	}
	found, err = s.Search(ctx, repository.SearchCriteria{Location: "san francisco"})
	if err != nil || len(found) != 1 {
		t.Fatalf("Search(location) = %v, %v", found, err)
	}

	byType, err := s.GetByType(ctx, models.OpportunityTypeContract)
	if err != nil || len(byType) != 1 || byType[0].ID != contractID {
		t.Fatalf("GetByType() = %v, %v", byType, err)
	}
	if _, err := s.GetByType(ctx, "GIG"); !errors.IsInvalidInput(err) {
		t.Fatalf("GetByType(GIG) error = %v", err)
	}

	active, err := s.GetActive(ctx)
	if err != nil || len(active) != 3 {
		t.Fatalf("GetActive() = %d, %v", len(active), err)
	}

	mine, err := s.GetUserOpportunities(ctx, "u1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("GetUserOpportunities() = %d, %v", len(mine), err)
	}
	if _, err := s.GetUserOpportunities(ctx, ""); !errors.IsInvalidInput(err) {
		t.Fatalf("GetUserOpportunities(\"\") error = %v, want INVALID_INPUT", err)
	}

	if _, err := s.Apply(ctx, contractID, "r1", ""); err != nil {
		t.Fatal(err)
	}
	applied, err := s.GetByApplicationStatus(ctx, "u1", models.ApplicationStatusApplied)
	if err != nil || len(applied) != 1 || applied[0].ID != contractID {
		t.Fatalf("GetByApplicationStatus() = %v, %v", applied, err)
	}
}

func TestFailureResultsCarryType(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)
	mustSave(t, s, params("u1", "Engineer", "Acme"))

	if res := s.Save(ctx, params("u1", "engineer", "ACME")); res.Type != errors.ErrTypeDuplicateKey {
		t.Fatalf("duplicate add type = %q", res.Type)
	}
	if res := s.DeleteUserOpportunityByID(ctx, "missing"); res.Type != errors.ErrTypeNotFound {
		t.Fatalf("missing delete type = %q", res.Type)
	}
	if res := s.GetUserOpportunityByID(ctx, "missing"); res.Type != errors.ErrTypeNotFound {
		t.Fatalf("missing get type = %q", res.Type)
	}
	if res := s.Save(ctx, params("u1", "", "Acme")); res.Type != errors.ErrTypeInvalidInput {
		t.Fatalf("invalid add type = %q", res.Type)
	}

	broken, _ := newTestService(t, failingRepo{err: stderrors.New("connection refused")})
	if res := broken.DeleteUserOpportunityByID(ctx, "x"); res.Type != errors.ErrTypeInternal {
		t.Fatalf("storage failure type = %q", res.Type)
	}
	if res := s.GetUserOpportunityByID(ctx, mustSave(t, s, params("u2", "Engineer", "Acme"))); res.Type != "" {
		t.Fatalf("success carries type %q", res.Type)
	}
}
