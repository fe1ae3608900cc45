package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/services"
)

// JWTAuthMiddleware authenticates requests with bearer tokens issued by the
// auth service.
type JWTAuthMiddleware struct {
	tokens   services.TokenService
	userRepo repositories.UserRepository
}

func NewJWTAuthMiddleware(tokens services.TokenService, userRepo repositories.UserRepository) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// AuthMiddleware returns a Gin middleware function requiring a valid token
func (am *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := am.authenticate(c)
		if !ok {
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// OptionalAuthMiddleware sets user info when a valid token is present and
// continues anonymously otherwise.
func (am *JWTAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := am.tokens.Validate(token)
		if err != nil {
			c.Next()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.Next()
			return
		}

		user, err := am.userRepo.GetByID(c.Request.Context(), nil, userID)
		if err == nil && user.CanLogin() {
			c.Set("user_id", user.ID)
			c.Set("user", user)
			c.Set("user_role", user.Role)
			c.Set("user_email", user.Email)
		}

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (am *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			abortForbidden(c, "user role not found in context")
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			abortForbidden(c, "invalid user role format")
			return
		}

		// Admins pass every role check.
		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			abortForbidden(c, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles))
			return
		}

		c.Next()
	}
}

func (am *JWTAuthMiddleware) authenticate(c *gin.Context) (*models.User, bool) {
	token, err := extractBearerToken(c)
	if err != nil {
		abortUnauthorized(c, err.Error())
		return nil, false
	}

	claims, err := am.tokens.Validate(token)
	if err != nil {
		abortUnauthorized(c, "invalid or expired token")
		return nil, false
	}

	userID, err := claims.UserID()
	if err != nil {
		abortUnauthorized(c, "invalid token subject")
		return nil, false
	}

	// The token may outlive the account; reject tokens for deleted or
	// deactivated users.
	user, err := am.userRepo.GetByID(c.Request.Context(), nil, userID)
	if err != nil {
		abortUnauthorized(c, "user no longer exists")
		return nil, false
	}
	if !user.CanLogin() {
		abortUnauthorized(c, "account is not active")
		return nil, false
	}

	return user, true
}

func extractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return "", fmt.Errorf("invalid authorization header format")
	}

	return tokenParts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Message: message})
	c.Abort()
}

func abortForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Message: message})
	c.Abort()
}

// GetUserFromContext returns the authenticated user set by AuthMiddleware.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetUserIDFromContext returns the authenticated user id.
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
