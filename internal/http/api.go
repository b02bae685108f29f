package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"calendar-api/internal/auth"
	"calendar-api/internal/service"
)

const internalErrorMessage = "An unexpected error occurred"

// TokenValidator resolves a bearer token to the caller's identity.
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	tasks   service.TaskService
	exports service.ExportService
	tokens  TokenValidator
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, exports service.ExportService, tokens TokenValidator, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Handler{
		users:   users,
		tasks:   tasks,
		exports: exports,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)

		todos := api.Group("/todos")
		todos.Use(h.requireIdentity())
		todos.POST("", h.createTask)
		todos.GET("", h.listTasks)
		todos.GET("/date/:date", h.listTasksByDate)
		todos.GET("/month/:yearMonth", h.listTasksByMonth)
		todos.POST("/exports", h.createExport)
		todos.GET("/exports", h.listExports)
		todos.DELETE("/exports", h.deleteExports)
		todos.GET("/:id", h.getTask)
		todos.PUT("/:id", h.updateTask)
		todos.DELETE("/:id", h.deleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request handled")
	}
}

// requireIdentity validates the bearer token and stores the caller's identity
// on the request context. Requests without a valid token never reach the handlers.
func (h *Handler) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			h.writeError(c, auth.ErrUnauthenticated)
			return
		}

		identity, err := h.tokens.Validate(token)
		if err != nil {
			h.logger.WithError(err).WithField("path", c.Request.URL.Path).Debug("rejected session token")
			h.writeError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFrom(c *gin.Context) auth.Identity {
	identity, _ := auth.IdentityFromContext(c.Request.Context())
	return identity
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and answered with a generic body.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, internalErrorMessage

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrUserAlreadyExists):
		status, message = http.StatusConflict, service.ErrUserAlreadyExists.Error()
	case errors.Is(err, service.ErrInvalidRegistrationSecret):
		status, message = http.StatusForbidden, service.ErrInvalidRegistrationSecret.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, service.ErrForbidden.Error()
	case errors.Is(err, service.ErrTaskNotFound):
		status, message = http.StatusNotFound, service.ErrTaskNotFound.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrExportsDisabled):
		status, message = http.StatusServiceUnavailable, service.ErrExportsDisabled.Error()
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

type registerRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	RegistrationSecret string `json:"registration_secret"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.RegistrationSecret)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{ID: user.ID, UUID: user.UUID, Email: user.Email})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     session.Token,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}
