package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param role query string false "Filter by role (student, teacher, admin)"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)

	users, total, err := h.userRepo.List(c.Request.Context(), nil, filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	page := (filters.Offset / max(filters.Limit, 1)) + 1

	c.JSON(http.StatusOK, newSuccess(gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"size":  filters.Limit,
	}))
}

// SearchUsers searches for users by name or email
// @Summary Search users
// @Tags users
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	h.LogRequest(c, "Searching users", "query", query)

	filters := h.parseUserFilters(c)

	users, total, err := h.userRepo.Search(c.Request.Context(), nil, query, filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to search users", err)
		return
	}

	page := (filters.Offset / max(filters.Limit, 1)) + 1

	c.JSON(http.StatusOK, newSuccess(gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"size":  filters.Limit,
	}))
}

// GetUser retrieves a user by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "User not found with id " + c.Param("id"),
			})
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, newSuccess(user))
}

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		size = 10
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	return repositories.UserFilters{
		Role:   c.Query("role"),
		Limit:  size,
		Offset: (page - 1) * size,
	}
}
