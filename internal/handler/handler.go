package handler

import (
	"net/http"

	"wordrush/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeaderboardFeed upgrades a request to the live leaderboard websocket.
type LeaderboardFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Handler serves the WordRush HTTP API.
type Handler struct {
	authService        service.AuthService
	profileService     service.ProfileService
	scoreService       service.ScoreService
	wordService        service.WordService
	leaderboardService service.LeaderboardService
	feed               LeaderboardFeed
	logger             *zap.Logger
}

// NewHandler wires the services into a Handler. feed may be nil, which disables /ws/leaderboard.
func NewHandler(
	authService service.AuthService,
	profileService service.ProfileService,
	scoreService service.ScoreService,
	wordService service.WordService,
	leaderboardService service.LeaderboardService,
	feed LeaderboardFeed,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		authService:        authService,
		profileService:     profileService,
		scoreService:       scoreService,
		wordService:        wordService,
		leaderboardService: leaderboardService,
		feed:               feed,
		logger:             logger.Named("Handler"),
	}
}

// RegisterRoutes mounts every route. authLimiter guards the credential endpoints and may be nil.
func (h *Handler) RegisterRoutes(router *gin.Engine, authLimiter gin.HandlerFunc) {
	if authLimiter == nil {
		authLimiter = func(c *gin.Context) { c.Next() }
	}
	requireAuth := h.AuthMiddleware()
	requireAdmin := RequireAdmin()

	api := router.Group("/api")
	{
		api.GET("/ping", h.ping)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", authLimiter, h.register)
		authGroup.POST("/login", authLimiter, h.login)
		authGroup.POST("/logout", requireAuth, h.logout)

		api.GET("/me", requireAuth, h.getMe)
		api.PUT("/me", requireAuth, h.updateMe)
		api.POST("/change-password", requireAuth, authLimiter, h.changePassword)

		typing := api.Group("/typing")
		typing.GET("/best", requireAuth, h.getBest)
		typing.GET("/best/all", requireAuth, h.getAllBests)
		typing.GET("/bests", requireAuth, h.getAllBests)
		typing.POST("/best", requireAuth, h.submitBest)
		typing.GET("/leaderboard", h.typingLeaderboard)

		words := api.Group("/words")
		words.GET("", h.listWords)
		words.GET("/random", h.randomWord)
		words.POST("", requireAuth, requireAdmin, h.createWord)
		words.POST("/import", requireAuth, requireAdmin, h.importWords)
		words.DELETE("/:id", requireAuth, requireAdmin, h.deleteWord)

		api.POST("/seed/words", requireAuth, requireAdmin, h.seedWords)
		api.GET("/leaderboard", h.leaderboardSummary)
	}

	if h.feed != nil {
		router.GET("/ws/leaderboard", h.leaderboardFeed)
	}
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "pong"})
}
