package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskquest-dev/taskquest/internal/infrastructure/http/middleware"
	"github.com/taskquest-dev/taskquest/pkg/config"
	"github.com/taskquest-dev/taskquest/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	jwtManager     *jwt.Manager
	taskHandler    *Task
	meetingHandler *Meeting
	rewardHandler  *Reward
	storageHandler *Storage
	userHandler    *User
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	jwtManager *jwt.Manager,
	taskHandler *Task,
	meetingHandler *Meeting,
	rewardHandler *Reward,
	storageHandler *Storage,
	userHandler *User,
) *Router {
	return &Router{
		cfg:            cfg,
		jwtManager:     jwtManager,
		taskHandler:    taskHandler,
		meetingHandler: meetingHandler,
		rewardHandler:  rewardHandler,
		storageHandler: storageHandler,
		userHandler:    userHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group; everything under it requires authentication
	v1 := e.Group("/v1", middleware.EchoAuth(rt.jwtManager))

	if rt.userHandler != nil {
		v1.GET("/me", rt.userHandler.Me)
	}

	rt.setupTaskRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupRewardRoutes(v1)
}

// setupTaskRoutes configures task ingestion and completion routes
func (rt *Router) setupTaskRoutes(g *echo.Group) {
	taskGroup := g.Group("/tasks")

	taskGroup.POST("", rt.taskHandler.CreateTask)
	taskGroup.GET("", rt.taskHandler.ListTasks)
	taskGroup.GET("/:id", rt.taskHandler.GetTask)
	taskGroup.POST("/:id/complete", rt.taskHandler.CompleteTask)
	taskGroup.POST("/ingest/email", rt.taskHandler.IngestEmail)
}

// setupMeetingRoutes configures meeting lifecycle routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	meetingGroup.POST("", rt.meetingHandler.CreateMeeting)
	meetingGroup.GET("", rt.meetingHandler.ListMeetings)
	meetingGroup.GET("/:id", rt.meetingHandler.GetMeeting)
	meetingGroup.POST("/:id/transcription/start", rt.meetingHandler.StartTranscription)
	meetingGroup.POST("/:id/transcription/stop", rt.meetingHandler.StopTranscription)
	meetingGroup.POST("/:id/process", rt.meetingHandler.Process)

	if rt.storageHandler != nil {
		meetingGroup.POST("/:id/audio", rt.storageHandler.UploadAudio)
		meetingGroup.GET("/:id/audio-url", rt.storageHandler.AudioURL)
	}
}

// setupRewardRoutes configures reward account routes
func (rt *Router) setupRewardRoutes(g *echo.Group) {
	rewardGroup := g.Group("/rewards")

	rewardGroup.GET("/account", rt.rewardHandler.GetAccount)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
