package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-service/internal/domain"
	"user-service/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler wires HTTP routes to the user service.
type Handler struct {
	users  service.UserService
	store  Pinger
	logger *logrus.Logger
}

func NewHandler(users service.UserService, store Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, prefix string) {
	router.Use(requestIDMiddleware(), accessLogMiddleware(h.logger), corsMiddleware())

	api := router.Group(prefix)
	{
		api.GET("/users", h.listUsers)
		api.POST("/users", h.createUser)
		api.GET("/users/:id", h.getUser)
		api.DELETE("/users/:id", h.deleteUser)
		api.GET("/users/username/:username", h.getUserByUsername)
		api.PUT("/users/:id/password", h.updatePassword)
		api.POST("/users/:id/password", h.confirmPassword)
		api.GET("/health", h.health)
	}
}

type createUserRequest struct {
	Username domain.Username `json:"username"`
	Password domain.Password `json:"password"`
}

type updatePasswordRequest struct {
	OldPassword domain.Password `json:"old_password"`
	NewPassword domain.Password `json:"new_password"`
}

type confirmPasswordRequest struct {
	Sample domain.Password `json:"sample"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordRequired):
		h.fail(c, "Invalid user: "+err.Error(), nil)
		return
	case err != nil:
		h.fail(c, "Failed to create user: "+err.Error(), err)
		return
	}
	succeed(c, "User created successfully", user)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to retrieve users: "+err.Error(), err)
		return
	}
	succeed(c, "Users retrieved successfully", users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	h.respondUser(c, user, err)
}

func (h *Handler) getUserByUsername(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), domain.Username(c.Param("username")))
	h.respondUser(c, user, err)
}

func (h *Handler) respondUser(c *gin.Context, user *domain.User, err error) {
	switch {
	case err == nil:
		succeed(c, "User retrieved successfully", user)
	case errors.Is(err, service.ErrUserNotFound):
		h.fail(c, "User was not found", nil)
	default:
		h.fail(c, "Failed to retrieve user: "+err.Error(), err)
	}
}

func (h *Handler) confirmPassword(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req confirmPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.users.ConfirmPassword(c.Request.Context(), id, req.Sample)
	switch {
	case err == nil:
		succeed(c, "Password confirmed successfully", nil)
	case errors.Is(err, service.ErrUserNotFound):
		h.fail(c, "User was not found", nil)
	case errors.Is(err, service.ErrPasswordMismatch):
		h.fail(c, "Password confirmation failed", nil)
	default:
		h.fail(c, "Failed to retrieve user: "+err.Error(), err)
	}
}

func (h *Handler) updatePassword(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req updatePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.users.UpdatePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		succeed(c, "User password updated successfully", nil)
	case errors.Is(err, service.ErrUserNotFound):
		h.fail(c, "User was not found", nil)
	case errors.Is(err, service.ErrOldPasswordIncorrect):
		h.fail(c, "Old password is incorrect", nil)
	case errors.Is(err, service.ErrUserVanished):
		h.fail(c, "Cannot update password for a user that no longer exists", nil)
	case errors.Is(err, service.ErrPasswordRequired):
		h.fail(c, "New password is required", nil)
	default:
		h.fail(c, "Failed to update user password: "+err.Error(), err)
	}
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	err := h.users.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		succeed(c, "User deleted successfully", nil)
	case errors.Is(err, service.ErrUserNotFound):
		h.fail(c, "User was not found", nil)
	default:
		h.fail(c, "Failed to delete user: "+err.Error(), err)
	}
}

func (h *Handler) health(c *gin.Context) {
	if h.store == nil {
		succeed(c, "ok", nil)
		return
	}
	if err := h.store.PingContext(c.Request.Context()); err != nil {
		h.fail(c, "Database is unreachable: "+err.Error(), err)
		return
	}
	succeed(c, "ok", nil)
}

func (h *Handler) pathID(c *gin.Context) (domain.UserID, bool) {
	id, err := domain.ParseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, failure("Invalid user id: "+err.Error()))
		return "", false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, failure("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// fail writes a failure envelope; cause is logged when it is an unexpected error.
func (h *Handler) fail(c *gin.Context, msg string, cause error) {
	if cause != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.FullPath(),
		}).WithError(cause).Warn("request failed")
	}
	c.JSON(http.StatusOK, failure(msg))
}
