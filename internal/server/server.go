package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"notely.app/notelyserver/internal/config"
	"notely.app/notelyserver/internal/handler"
	"notely.app/notelyserver/internal/middleware"
	"notely.app/notelyserver/internal/push"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/internal/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	txManager := repository.NewTxManager(db)

	var gateway push.Gateway
	if redisClient != nil {
		gateway = push.NewRedisGateway(redisClient)
	}

	notificationSvc := service.NewNotificationService(userRepo, notificationRepo, gateway)
	friendSvc := service.NewFriendService(userRepo, chatRepo, notificationRepo, notificationSvc, txManager)
	chatSvc := service.NewChatService(chatRepo, gateway)
	userSvc := service.NewUserService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	noteSvc := service.NewNoteService(noteRepo)

	userHandler := handler.NewUserHandler(userSvc)
	friendHandler := handler.NewFriendHandler(friendSvc)
	chatHandler := handler.NewChatHandler(chatSvc, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)
	noteHandler := handler.NewNoteHandler(noteSvc)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// User routes
		protected.GET("/users/search", userHandler.Search)

		// Friend routes
		protected.GET("/friends", friendHandler.ListFriends)
		protected.POST("/friends/request/:id", friendHandler.SendRequest)
		protected.POST("/friends/cancel/:id", friendHandler.CancelRequest)
		protected.POST("/friends/accept/:notificationId", friendHandler.Accept)
		protected.POST("/friends/dismiss/:notificationId", friendHandler.Dismiss)
		protected.POST("/friends/block/:id", friendHandler.Block)
		protected.POST("/friends/unblock/:id", friendHandler.Unblock)
		protected.DELETE("/friends/:id", friendHandler.Remove)

		// Chat routes
		protected.GET("/chats", chatHandler.GetMyChats)
		protected.GET("/chats/:id", chatHandler.GetChat)
		protected.GET("/chats/:id/ws", chatHandler.HandleWebSocket)
		protected.POST("/chats/:id/messages", chatHandler.SendMessage)
		protected.PUT("/chats/:id/messages/:messageId", chatHandler.EditMessage)
		protected.DELETE("/chats/:id/messages/:messageId", chatHandler.DeleteMessage)

		// Notification routes
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Note routes
		protected.POST("/notes", noteHandler.Create)
		protected.GET("/notes", noteHandler.ListMine)
		protected.GET("/notes/:id", noteHandler.Get)
		protected.PUT("/notes/:id", noteHandler.Update)
		protected.DELETE("/notes/:id", noteHandler.Delete)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
