package students

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/roster"
)

// fakeCreator records onboarded users and fails configured emails.
type fakeCreator struct {
	failWith map[string]error
	users    []*models.User
	profiles []*models.StudentProfile
}

func (f *fakeCreator) CreateWithUser(_ context.Context, user *models.User, profile *models.StudentProfile) error {
	if err, ok := f.failWith[user.Email]; ok {
		return err
	}
	f.users = append(f.users, user)
	f.profiles = append(f.profiles, profile)
	return nil
}

func sampleRows() []roster.Row {
	return []roster.Row{
		{Name: "Amina Yusuf", Email: "amina@example.com", AdmissionNo: "A001", Department: "ICT"},
		{Name: "Brian Otieno", Email: "brian@example.com", AdmissionNo: "A002", Department: "ICT"},
		{Name: "Cynthia Wanjiru", Email: "cynthia@example.com", AdmissionNo: "A003", Department: "Business"},
	}
}

func TestBulkCreateContinuesPastFailedRow(t *testing.T) {
	store := &fakeCreator{failWith: map[string]error{"brian@example.com": models.ErrDuplicateEmail}}

	result := bulkCreate(context.Background(), store, uuid.New(), "Test Institute", "hash", sampleRows())

	if result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("got successful=%d failed=%d, want 2 and 1", result.Successful, result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "row 2") || !strings.Contains(result.Errors[0], "brian@example.com") {
		t.Fatalf("error does not identify the failed row: %q", result.Errors[0])
	}
	if len(store.users) != 2 || store.users[0].Email != "amina@example.com" || store.users[1].Email != "cynthia@example.com" {
		t.Fatalf("rows around the failure were not onboarded: %+v", store.users)
	}
}

func TestBulkCreateRejectsIncompleteRow(t *testing.T) {
	rows := []roster.Row{
		{Name: "Amina Yusuf", Email: "amina@example.com", AdmissionNo: "A001"},
	}
	store := &fakeCreator{}

	result := bulkCreate(context.Background(), store, uuid.New(), "Test Institute", "hash", rows)

	if result.Successful != 0 || result.Failed != 1 {
		t.Fatalf("got successful=%d failed=%d, want 0 and 1", result.Successful, result.Failed)
	}
	if !strings.Contains(result.Errors[0], "missing required field") {
		t.Fatalf("unexpected error: %q", result.Errors[0])
	}
	if len(store.users) != 0 {
		t.Fatalf("incomplete row reached the store: %+v", store.users)
	}
}

func TestBulkCreateAssignsPlaceholderCredential(t *testing.T) {
	schoolID := uuid.New()
	store := &fakeCreator{}

	result := bulkCreate(context.Background(), store, schoolID, "Test Institute", "bcrypt-hash", sampleRows()[:1])

	if result.Successful != 1 {
		t.Fatalf("got successful=%d, want 1", result.Successful)
	}
	u, p := store.users[0], store.profiles[0]
	if u.Password != "bcrypt-hash" || u.Status != models.UserPending {
		t.Fatalf("got password=%q status=%q, want placeholder hash and pending", u.Password, u.Status)
	}
	if u.SchoolID == nil || *u.SchoolID != schoolID || p.SchoolID != schoolID || p.SchoolName != "Test Institute" {
		t.Fatalf("school fields not propagated: user=%+v profile=%+v", u, p)
	}
}
