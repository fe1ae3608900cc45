package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/services"
	"github.com/SAP-F-2025/materials-service/internal/utils"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

// stubMaterialService returns canned responses per call.
type stubMaterialService struct {
	getErr    error
	getResp   *services.MaterialResponse
	attachErr error
	listResp  *services.MaterialListResponse
}

func (s *stubMaterialService) Create(ctx context.Context, req *services.CreateMaterialRequest, creator *models.User) (*services.MaterialResponse, error) {
	return s.getResp, nil
}

func (s *stubMaterialService) GetByID(ctx context.Context, id uint, requester *models.User) (*services.MaterialResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResp, nil
}

func (s *stubMaterialService) Update(ctx context.Context, id uint, req *services.UpdateMaterialRequest, requester *models.User) (*services.MaterialResponse, error) {
	return s.getResp, nil
}

func (s *stubMaterialService) Delete(ctx context.Context, id uint, requester *models.User) error {
	return nil
}

func (s *stubMaterialService) List(ctx context.Context, filters repositories.MaterialFilters, requester *models.User) (*services.MaterialListResponse, error) {
	return s.listResp, nil
}

func (s *stubMaterialService) AttachFile(ctx context.Context, id uint, file *services.UploadedFile, requester *models.User) (*services.MaterialResponse, error) {
	if s.attachErr != nil {
		return nil, s.attachErr
	}
	return s.getResp, nil
}

func newMaterialHandlerFixture(stub *stubMaterialService) *MaterialHandler {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	return NewMaterialHandler(stub, nil, validator.New(), logger)
}

func TestGetMaterial_NotFoundIncludesID(t *testing.T) {
	handler := newMaterialHandlerFixture(&stubMaterialService{getErr: services.ErrMaterialNotFound})

	router := gin.New()
	router.GET("/materials/:id", handler.GetMaterial)

	req := httptest.NewRequest(http.MethodGet, "/materials/999999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if !strings.Contains(resp.Message, "999999") {
		t.Errorf("error message should contain the id: %q", resp.Message)
	}
}

func TestGetMaterial_InvalidID(t *testing.T) {
	handler := newMaterialHandlerFixture(&stubMaterialService{})

	router := gin.New()
	router.GET("/materials/:id", handler.GetMaterial)

	for _, id := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/materials/"+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, w.Code)
		}
	}
}

func TestGetMaterial_SuccessEnvelope(t *testing.T) {
	material := &models.Material{ID: 5, Title: "Fractions"}
	handler := newMaterialHandlerFixture(&stubMaterialService{
		getResp: &services.MaterialResponse{Material: material, CanEdit: true, CanDelete: true},
	})

	router := gin.New()
	router.GET("/materials/:id", handler.GetMaterial)

	req := httptest.NewRequest(http.MethodGet, "/materials/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Title   string `json:"title"`
			CanEdit bool   `json:"can_edit"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.Data.Title != "Fractions" || !resp.Data.CanEdit {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
}

func TestUploadMaterialFile_ErrorMapping(t *testing.T) {
	uploadErr := &services.UploadError{Kind: services.ErrInvalidFileType, Message: "Please upload a valid file"}
	handler := newMaterialHandlerFixture(&stubMaterialService{attachErr: uploadErr})

	router := gin.New()
	router.PUT("/materials/:id/file", func(c *gin.Context) {
		c.Set("user", &models.User{ID: 1, Role: models.RoleTeacher})
		c.Set("user_id", uint(1))
	}, handler.UploadMaterialFile)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "photo.png")
	part.Write([]byte("png bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/materials/1/file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Message != "Please upload a valid file" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestListMaterials_FilterParsing(t *testing.T) {
	handler := newMaterialHandlerFixture(&stubMaterialService{
		listResp: &services.MaterialListResponse{Materials: []*services.MaterialResponse{}},
	})

	router := gin.New()
	router.GET("/materials", handler.ListMaterials)

	req := httptest.NewRequest(http.MethodGet, "/materials?page=3&size=10&subject=Math&q=frac&has_file=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// Oversized page size is clamped, junk values fall back to defaults.
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/materials?size=5000&page=junk", nil)
	filters := handler.parseMaterialFilters(c)
	if filters.Limit != maxPageSize {
		t.Errorf("limit = %d, want %d", filters.Limit, maxPageSize)
	}
	if filters.Offset != 0 {
		t.Errorf("offset = %d, want 0", filters.Offset)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/materials?page=3&size=10&subject=Math", nil)
	filters = handler.parseMaterialFilters(c)
	if filters.Offset != 20 || filters.Limit != 10 {
		t.Errorf("offset=%d limit=%d, want 20/10", filters.Offset, filters.Limit)
	}
	if filters.Subject == nil || *filters.Subject != "Math" {
		t.Errorf("subject filter missing: %v", filters.Subject)
	}
}
