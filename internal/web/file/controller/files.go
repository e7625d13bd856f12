// Package controller exposes the file API over HTTP.
package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/file/dto"
	"github.com/Laisky/files-manager/internal/web/file/model"
	"github.com/Laisky/files-manager/internal/web/file/service"
)

// requestTimeout bounds every store round-trip so a slow backend degrades
// into an internal error instead of hanging the caller.
const requestTimeout = 10 * time.Second

// TokenResolver resolves a session token to a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Files handles the /files endpoints.
type Files struct {
	logger glog.Logger
	engine *service.Engine
	tokens TokenResolver
}

// New creates the files controller.
func New(logger glog.Logger, engine *service.Engine, tokens TokenResolver) *Files {
	return &Files{
		logger: logger,
		engine: engine,
		tokens: tokens,
	}
}

type uploadRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// ParentID accepts the number 0 as well as string ids, per the wire contract.
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// Upload handles POST /files.
func (f *Files) Upload(c *gin.Context) {
	owner, ok := f.authenticate(c)
	if !ok {
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Missing name")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := f.engine.Create(ctx, owner, service.CreateParams{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: rawParentID(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		f.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFile(created))
}

// Show handles GET /files/:id.
func (f *Files) Show(c *gin.Context) {
	owner, ok := f.authenticate(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	file, err := f.engine.Get(ctx, owner, c.Param("id"))
	if err != nil {
		f.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFile(file))
}

// Index handles GET /files.
func (f *Files) Index(c *gin.Context) {
	owner, ok := f.authenticate(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 0 {
		page = 0
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	files, err := f.engine.List(ctx, owner, c.Query("parentId"), page)
	if err != nil {
		f.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFiles(files))
}

// Publish handles PUT /files/:id/publish.
func (f *Files) Publish(c *gin.Context) {
	f.setVisibility(c, true)
}

// Unpublish handles PUT /files/:id/unpublish.
func (f *Files) Unpublish(c *gin.Context) {
	f.setVisibility(c, false)
}

func (f *Files) setVisibility(c *gin.Context, public bool) {
	owner, ok := f.authenticate(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	file, err := f.engine.SetVisibility(ctx, owner, c.Param("id"), public)
	if err != nil {
		f.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFile(file))
}

// Data handles GET /files/:id/data. Authentication is optional: public
// records are served to anyone, private records only to their owner.
func (f *Files) Data(c *gin.Context) {
	var viewer *primitive.ObjectID
	if token := c.GetHeader("X-Token"); token != "" {
		if uid, err := f.tokens.Resolve(c.Request.Context(), token); err == nil {
			if oid, err := primitive.ObjectIDFromHex(uid); err == nil {
				viewer = &oid
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data, contentType, err := f.engine.Content(ctx, viewer, c.Param("id"), c.Query("size"))
	if err != nil {
		f.writeEngineError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// authenticate resolves the caller from X-Token, replying 401 on failure.
func (f *Files) authenticate(c *gin.Context) (primitive.ObjectID, bool) {
	token := c.GetHeader("X-Token")
	if token == "" {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}

	uid, err := f.tokens.Resolve(c.Request.Context(), token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}

	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}

	return oid, true
}

// writeEngineError maps engine sentinels onto the HTTP contract. Anything
// unrecognized is an internal error: logged, and never leaked to the client.
func (f *Files) writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMissingName):
		writeError(c, http.StatusBadRequest, "Missing name")
	case errors.Is(err, model.ErrMissingType):
		writeError(c, http.StatusBadRequest, "Missing type")
	case errors.Is(err, model.ErrMissingData):
		writeError(c, http.StatusBadRequest, "Missing data")
	case errors.Is(err, model.ErrParentNotFound):
		writeError(c, http.StatusBadRequest, "Parent not found")
	case errors.Is(err, model.ErrParentNotFolder):
		writeError(c, http.StatusBadRequest, "Parent is not a folder")
	case errors.Is(err, model.ErrFolderHasNoContent):
		writeError(c, http.StatusBadRequest, "A folder doesn't have content")
	case errors.Is(err, model.ErrNotFound):
		writeError(c, http.StatusNotFound, "Not found")
	default:
		logger := gmw.GetLogger(c)
		if logger == nil {
			logger = f.logger
		}
		logger.Error("file operation failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// rawParentID normalizes the parentId wire value: absent and numeric zero
// both mean the root sentinel.
func rawParentID(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}
}
