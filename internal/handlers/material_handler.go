package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/services"
	"github.com/SAP-F-2025/materials-service/internal/utils"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

type MaterialHandler struct {
	BaseHandler
	materialService services.MaterialService
	exportService   services.ImportExportService
	validator       *validator.Validator
}

func NewMaterialHandler(
	materialService services.MaterialService,
	exportService services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     NewBaseHandler(logger),
		materialService: materialService,
		exportService:   exportService,
		validator:       validator,
	}
}

// ListMaterials lists materials with optional filtering
// @Summary List materials
// @Tags materials
// @Produce json
// @Param subject query string false "Filter by subject"
// @Param owner query int false "Filter by owner id"
// @Param q query string false "Search in titles"
// @Param has_file query bool false "Only materials with/without attachments"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 25, max: 100)"
// @Param sort_by query string false "Sort column (created_at, updated_at, title, subject)"
// @Param sort_order query string false "Sort direction (asc, desc)"
// @Success 200 {object} SuccessResponse{data=services.MaterialListResponse}
// @Router /materials [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	filters := h.parseMaterialFilters(c)
	requester, _ := GetUserFromContext(c)

	resp, err := h.materialService.List(c.Request.Context(), filters, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSuccess(resp))
}

// GetMaterial retrieves a material by ID
// @Summary Get material
// @Tags materials
// @Produce json
// @Param id path uint true "Material ID"
// @Success 200 {object} SuccessResponse{data=services.MaterialResponse}
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, _ := GetUserFromContext(c)

	resp, err := h.materialService.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSuccess(resp))
}

// CreateMaterial creates a new material owned by the caller
// @Summary Create material
// @Tags materials
// @Accept json
// @Produce json
// @Param material body services.CreateMaterialRequest true "Material data"
// @Success 201 {object} SuccessResponse{data=services.MaterialResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /materials [post]
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req services.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	creator, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Creating material", "title", req.Title)

	resp, err := h.materialService.Create(c.Request.Context(), &req, creator)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSuccess(resp))
}

// UpdateMaterial partially updates a material
// @Summary Update material
// @Tags materials
// @Accept json
// @Produce json
// @Param id path uint true "Material ID"
// @Param material body services.UpdateMaterialRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=services.MaterialResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id} [put]
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	requester, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Updating material", "material_id", id)

	resp, err := h.materialService.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSuccess(resp))
}

// DeleteMaterial deletes a material
// @Summary Delete material
// @Tags materials
// @Produce json
// @Param id path uint true "Material ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Deleting material", "material_id", id)

	if err := h.materialService.Delete(c.Request.Context(), id, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Material deleted successfully",
	})
}

// UploadMaterialFile attaches a document to a material
// @Summary Upload material file
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Material ID"
// @Param file formData file true "Document to attach"
// @Success 200 {object} SuccessResponse{data=services.MaterialResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id}/file [put]
func (h *MaterialHandler) UploadMaterialFile(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var upload *services.UploadedFile
	header, err := c.FormFile("file")
	if err == nil && header != nil {
		upload = &services.UploadedFile{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Open:     header.Open,
		}
	}

	h.LogRequest(c, "Uploading material file", "material_id", id)

	resp, err := h.materialService.AttachFile(c.Request.Context(), id, upload, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSuccess(resp))
}

// ExportMaterials streams an xlsx report of materials
// @Summary Export materials
// @Tags materials
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /materials/export [get]
func (h *MaterialHandler) ExportMaterials(c *gin.Context) {
	filters := h.parseMaterialFilters(c)

	h.LogRequest(c, "Exporting materials")

	filename := fmt.Sprintf("materials_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exportService.ExportMaterials(c.Request.Context(), c.Writer, filters); err != nil {
		h.LogError(c, err, "Failed to export materials")
		c.Status(http.StatusInternalServerError)
	}
}

func (h *MaterialHandler) parseMaterialFilters(c *gin.Context) repositories.MaterialFilters {
	filters := repositories.MaterialFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if q := c.Query("q"); q != "" {
		filters.Search = &q
	}
	if owner := c.Query("owner"); owner != "" {
		if id, err := strconv.ParseUint(owner, 10, 32); err == nil {
			ownerID := uint(id)
			filters.OwnerID = &ownerID
		}
	}
	if hasFile := c.Query("has_file"); hasFile != "" {
		if v, err := strconv.ParseBool(hasFile); err == nil {
			filters.HasFile = &v
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	filters.Limit = size
	filters.Offset = (page - 1) * size

	return filters
}

func (h *MaterialHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var uploadError *services.UploadError
	if errors.As(err, &uploadError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: uploadError.Message,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrMaterialNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: fmt.Sprintf("Material not found with id %s", c.Param("id")),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
		})
	default:
		h.LogError(c, err, "Unhandled material service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
