package api

import (
	"net/http"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	bookingService service.BookingService,
	logger *zap.Logger,
) {
	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler(userService, logger)
	sessionHandler := NewSessionHandler(bookingService, logger)

	authMiddleware := AuthMiddleware(jwtSecret)
	adminOnly := RoleMiddleware(domain.RoleAdmin)
	approvedOnly := ApprovedUserMiddleware()

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
	}

	userGroup := apiV1.Group("/users")
	userGroup.Use(authMiddleware)
	{
		userGroup.GET("/me", userHandler.GetMe)
		userGroup.PUT("/me", userHandler.UpdateMe)
		userGroup.POST("/me/avatar-url", userHandler.RequestAvatarUploadURL)

		userGroup.GET("", adminOnly, userHandler.ListUsers)
		userGroup.GET("/pending", adminOnly, userHandler.ListPendingUsers)
		userGroup.PATCH("/:id/status", adminOnly, userHandler.UpdateUserStatus)
		userGroup.DELETE("/:id", adminOnly, userHandler.DeleteUser)
	}

	sessionGroup := apiV1.Group("/sessions")
	sessionGroup.Use(authMiddleware)
	{
		sessionGroup.POST("", approvedOnly, sessionHandler.CreateSession)
		sessionGroup.GET("", adminOnly, sessionHandler.ListSessions)
		sessionGroup.GET("/my", approvedOnly, sessionHandler.ListMySessions)
		sessionGroup.GET("/:id", sessionHandler.GetSession)
		sessionGroup.PUT("/:id", approvedOnly, sessionHandler.UpdateSession)
		// Cancellation semantics depend on the caller's role: owners may only
		// cancel their own scheduled future sessions, admins may cancel
		// anything (the client is emailed).
		sessionGroup.DELETE("/:id", sessionHandler.DeleteSession)
	}
}
