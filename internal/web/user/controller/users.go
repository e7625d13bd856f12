// Package controller exposes the user and session endpoints over HTTP.
package controller

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/user/model"
	"github.com/Laisky/files-manager/internal/web/user/service"
)

const requestTimeout = 10 * time.Second

// TokenStore issues, resolves and revokes session tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Users handles /users, /connect and /disconnect.
type Users struct {
	logger glog.Logger
	users  *service.Users
	tokens TokenStore
}

// New creates the users controller.
func New(logger glog.Logger, users *service.Users, tokens TokenStore) *Users {
	return &Users{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostNew handles POST /users.
func (u *Users) PostNew(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Missing email")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := u.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingEmail):
			writeError(c, http.StatusBadRequest, "Missing email")
		case errors.Is(err, model.ErrMissingPassword):
			writeError(c, http.StatusBadRequest, "Missing password")
		case errors.Is(err, model.ErrAlreadyExist):
			writeError(c, http.StatusBadRequest, "Already exist")
		default:
			u.logFromCtx(c).Error("register user", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.GetID(), "email": user.Email})
}

// Connect handles GET /connect: Basic credentials in, fresh token out.
// Every failure mode replies 401 without distinguishing its cause.
func (u *Users) Connect(c *gin.Context) {
	email, password, ok := basicCredentials(c.GetHeader("Authorization"))
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := u.users.Authenticate(ctx, email, password)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := u.tokens.Issue(ctx, user.GetID())
	if err != nil {
		u.logFromCtx(c).Error("issue token", zap.Error(err))
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Disconnect handles GET /disconnect.
func (u *Users) Disconnect(c *gin.Context) {
	token := c.GetHeader("X-Token")
	if token == "" {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := u.tokens.Resolve(ctx, token); err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := u.tokens.Revoke(ctx, token); err != nil {
		u.logFromCtx(c).Error("revoke token", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMe handles GET /users/me.
func (u *Users) GetMe(c *gin.Context) {
	token := c.GetHeader("X-Token")
	if token == "" {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	uid, err := u.tokens.Resolve(ctx, token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := u.users.ByID(ctx, oid)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.GetID(), "email": user.Email})
}

func (u *Users) logFromCtx(c *gin.Context) glog.Logger {
	if logger := gmw.GetLogger(c); logger != nil {
		return logger
	}

	return u.logger
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// basicCredentials parses an `Authorization: Basic base64(email:password)`
// header. The password may contain colons; only the first one splits.
func basicCredentials(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return "", "", false
	}

	return email, password, true
}
