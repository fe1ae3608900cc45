package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/SAP-F-2025/materials-service/internal/events"
	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

const testMaxFileSize = 10_000_000

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func testUpload(name, mime string, size int64) *UploadedFile {
	return &UploadedFile{
		Filename: name,
		MimeType: mime,
		Size:     size,
		Open: func() (multipart.File, error) {
			return memFile{bytes.NewReader(make([]byte, 16))}, nil
		},
	}
}

type materialServiceFixture struct {
	svc       MaterialService
	repo      *fakeRepository
	files     *fakeFileStore
	publisher *events.MockEventPublisher

	teacher      *models.User
	otherTeacher *models.User
	student      *models.User
	admin        *models.User
}

func newMaterialServiceFixture(t *testing.T) *materialServiceFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	files := &fakeFileStore{}
	publisher := events.NewMockEventPublisher(logger)
	notifications := NewNotificationEventService(publisher, logger)

	svc := NewMaterialService(repo, nil, files, notifications, logger, validator.New(), testMaxFileSize)

	f := &materialServiceFixture{
		svc:       svc,
		repo:      repo,
		files:     files,
		publisher: publisher,
	}

	f.teacher = f.addUser(t, "Teacher One", "teacher1@example.com", models.RoleTeacher)
	f.otherTeacher = f.addUser(t, "Teacher Two", "teacher2@example.com", models.RoleTeacher)
	f.student = f.addUser(t, "Student", "student@example.com", models.RoleStudent)
	f.admin = f.addUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	return f
}

func (f *materialServiceFixture) addUser(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Status: models.StatusActive,
	}
	if err := f.repo.users.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	f.repo.materials.owners[user.ID] = user
	return user
}

func (f *materialServiceFixture) createMaterial(t *testing.T, owner *models.User, title string) *MaterialResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), &CreateMaterialRequest{Title: title}, owner)
	if err != nil {
		t.Fatalf("failed to create material: %v", err)
	}
	return resp
}

func TestMaterialService_Create(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()

	subject := "Algebra"
	resp, err := f.svc.Create(ctx, &CreateMaterialRequest{
		Title:   "  Linear Equations  ",
		Subject: &subject,
	}, f.teacher)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if resp.Title != "Linear Equations" {
		t.Errorf("title not trimmed: %q", resp.Title)
	}
	if resp.Material.UserID != f.teacher.ID {
		t.Errorf("owner = %d, want %d", resp.Material.UserID, f.teacher.ID)
	}
	if !resp.CanEdit || !resp.CanDelete {
		t.Error("creator should be able to edit and delete")
	}

	published := f.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeMaterialCreated {
		t.Errorf("expected a material.created event, got %+v", published)
	}
}

func TestMaterialService_Create_ValidationFailure(t *testing.T) {
	f := newMaterialServiceFixture(t)

	_, err := f.svc.Create(context.Background(), &CreateMaterialRequest{Title: ""}, f.teacher)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
}

func TestMaterialService_GetByID(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Fractions")

	tests := []struct {
		name          string
		requester     *models.User
		wantCanEdit   bool
		wantCanDelete bool
	}{
		{"owner", f.teacher, true, true},
		{"other teacher", f.otherTeacher, false, false},
		{"student", f.student, false, false},
		{"admin", f.admin, true, true},
		{"anonymous", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.GetByID(ctx, created.Material.ID, tt.requester)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			if resp.CanEdit != tt.wantCanEdit || resp.CanDelete != tt.wantCanDelete {
				t.Errorf("can_edit=%v can_delete=%v, want %v/%v",
					resp.CanEdit, resp.CanDelete, tt.wantCanEdit, tt.wantCanDelete)
			}
			if resp.Owner == nil || resp.Owner.ID != f.teacher.ID {
				t.Errorf("owner projection missing or wrong: %+v", resp.Owner)
			}
		})
	}
}

func TestMaterialService_GetByID_NotFound(t *testing.T) {
	f := newMaterialServiceFixture(t)

	_, err := f.svc.GetByID(context.Background(), 999999, nil)
	if !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestMaterialService_Update(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Draft Title")

	newTitle := "Final Title"
	resp, err := f.svc.Update(ctx, created.Material.ID, &UpdateMaterialRequest{Title: &newTitle}, f.teacher)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if resp.Title != "Final Title" {
		t.Errorf("title = %q, want %q", resp.Title, "Final Title")
	}
}

func TestMaterialService_Update_Permissions(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Protected")
	newTitle := "Hijacked"

	// A different teacher is rejected even though the role allows updates.
	_, err := f.svc.Update(ctx, created.Material.ID, &UpdateMaterialRequest{Title: &newTitle}, f.otherTeacher)
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if permErr.UserID != f.otherTeacher.ID || permErr.TargetID != created.Material.ID {
		t.Errorf("unexpected permission context: %+v", permErr)
	}

	// Admins bypass ownership.
	if _, err := f.svc.Update(ctx, created.Material.ID, &UpdateMaterialRequest{Title: &newTitle}, f.admin); err != nil {
		t.Errorf("admin update should succeed: %v", err)
	}
}

func TestMaterialService_Update_NoFields(t *testing.T) {
	f := newMaterialServiceFixture(t)
	created := f.createMaterial(t, f.teacher, "Untouched")

	_, err := f.svc.Update(context.Background(), created.Material.ID, &UpdateMaterialRequest{}, f.teacher)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("expected ValidationErrors for empty update, got %v", err)
	}
}

func TestMaterialService_Delete(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Disposable")

	if err := f.svc.Delete(ctx, created.Material.ID, f.student); err == nil {
		t.Error("student delete should fail")
	}

	if err := f.svc.Delete(ctx, created.Material.ID, f.teacher); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.svc.GetByID(ctx, created.Material.ID, nil); !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("material should be gone, got %v", err)
	}

	if err := f.svc.Delete(ctx, created.Material.ID, f.teacher); !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("expected ErrMaterialNotFound on double delete, got %v", err)
	}
}

func TestMaterialService_List(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		f.createMaterial(t, f.teacher, title)
	}

	resp, err := f.svc.List(ctx, repositories.MaterialFilters{Limit: 2, Offset: 0}, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.Materials) != 2 {
		t.Errorf("len(materials) = %d, want 2", len(resp.Materials))
	}
	if resp.Page != 1 || resp.Size != 2 {
		t.Errorf("page=%d size=%d, want 1/2", resp.Page, resp.Size)
	}

	resp, err = f.svc.List(ctx, repositories.MaterialFilters{Limit: 2, Offset: 2}, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Page != 2 || len(resp.Materials) != 1 {
		t.Errorf("page=%d len=%d, want 2/1", resp.Page, len(resp.Materials))
	}
}

func TestMaterialService_AttachFile(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "With Attachment")

	resp, err := f.svc.AttachFile(ctx, created.Material.ID, testUpload("notes.pdf", "application/pdf", 1024), f.teacher)
	if err != nil {
		t.Fatalf("AttachFile failed: %v", err)
	}

	if resp.FileURL == nil || !strings.HasSuffix(*resp.FileURL, "material_1.pdf") {
		t.Errorf("unexpected file url: %v", resp.FileURL)
	}
	if resp.FileType == nil || *resp.FileType != ".pdf" {
		t.Errorf("unexpected file type: %v", resp.FileType)
	}
	if len(f.files.saved) != 1 || f.files.saved[0] != "material_1.pdf" {
		t.Errorf("unexpected saved files: %v", f.files.saved)
	}
}

func TestMaterialService_AttachFile_Validation(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Picky")

	tests := []struct {
		name        string
		file        *UploadedFile
		wantKind    error
		wantMessage string
	}{
		{
			name:        "missing file",
			file:        nil,
			wantKind:    ErrNoFileUploaded,
			wantMessage: "Please upload a file",
		},
		{
			name:        "wrong mime type",
			file:        testUpload("photo.png", "image/png", 1024),
			wantKind:    ErrInvalidFileType,
			wantMessage: "Please upload a valid file",
		},
		{
			name:        "oversized",
			file:        testUpload("huge.pdf", "application/pdf", testMaxFileSize+1),
			wantKind:    ErrFileTooLarge,
			wantMessage: "Please upload a file less than 10 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AttachFile(ctx, created.Material.ID, tt.file, f.teacher)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}
			var uploadErr *UploadError
			if !errors.As(err, &uploadErr) {
				t.Fatalf("expected UploadError, got %T", err)
			}
			if uploadErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", uploadErr.Message, tt.wantMessage)
			}
		})
	}

	if len(f.files.saved) != 0 {
		t.Errorf("no file should have been written, got %v", f.files.saved)
	}
}

func TestMaterialService_AttachFile_Ownership(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Owned")

	_, err := f.svc.AttachFile(ctx, created.Material.ID, testUpload("n.pdf", "application/pdf", 1024), f.otherTeacher)
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	// Admin may attach to any material.
	if _, err := f.svc.AttachFile(ctx, created.Material.ID, testUpload("n.pdf", "application/pdf", 1024), f.admin); err != nil {
		t.Errorf("admin attach should succeed: %v", err)
	}
}

func TestMaterialService_AttachFile_CleanupOnPersistFailure(t *testing.T) {
	f := newMaterialServiceFixture(t)
	ctx := context.Background()
	created := f.createMaterial(t, f.teacher, "Unlucky")

	f.repo.materials.failUpdateFile = true

	_, err := f.svc.AttachFile(ctx, created.Material.ID, testUpload("doc.pdf", "application/pdf", 1024), f.teacher)
	if err == nil {
		t.Fatal("expected failure when metadata write fails")
	}

	// The moved file must not be left orphaned.
	if len(f.files.removed) != 1 || f.files.removed[0] != "material_1.pdf" {
		t.Errorf("expected compensating remove of material_1.pdf, got %v", f.files.removed)
	}
}
