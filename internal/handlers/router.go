package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/services"
	"github.com/SAP-F-2025/materials-service/internal/utils"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	materialHandler *MaterialHandler
	userHandler     *UserHandler
	authMiddleware  *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens services.TokenService,
	validator *validator.Validator,
	logger utils.Logger,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewJWTAuthMiddleware(tokens, userRepo)

	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), validator, logger),
		materialHandler: NewMaterialHandler(serviceManager.Material(), serviceManager.ImportExport(), validator, logger),
		userHandler:     NewUserHandler(userRepo, logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/forgot-password", hm.authHandler.ForgotPassword)
			auth.PUT("/reset-password/:token", hm.authHandler.ResetPassword)

			auth.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
		}

		// Material routes
		materials := v1.Group("/materials")
		{
			// Reading is public; a token still personalizes can_edit/can_delete
			materials.GET("", hm.authMiddleware.OptionalAuthMiddleware(), hm.materialHandler.ListMaterials)

			// Reports - Admins only
			materials.GET("/export", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.materialHandler.ExportMaterials)

			materials.GET("/:id", hm.authMiddleware.OptionalAuthMiddleware(), hm.materialHandler.GetMaterial)

			// Create/modify materials - Teachers and Admins only
			materials.POST("", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.materialHandler.CreateMaterial)
			materials.PUT("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.materialHandler.UpdateMaterial)
			materials.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.materialHandler.DeleteMaterial)

			// Upload - ownership checked in the service
			materials.PUT("/:id/file", hm.authMiddleware.AuthMiddleware(), hm.materialHandler.UploadMaterialFile)
		}

		// User routes - Admins only
		users := v1.Group("/users")
		users.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/search", hm.userHandler.SearchUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "materials-service",
		})
	})
}
