// Package notifier exposes the engine's local control surface: preference
// reads and patches, the active toast collection, and health.
package notifier

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/notifier/internal/list"
	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/internal/preference"
	"github.com/jwalitptl/notifier/internal/toast"
	"github.com/jwalitptl/notifier/pkg/errors"
	"github.com/jwalitptl/notifier/pkg/httputil"
)

type Handler struct {
	prefs  *preference.Store
	toasts *toast.Manager
	list   list.List
}

func NewHandler(prefs *preference.Store, toasts *toast.Manager, l list.List) *Handler {
	return &Handler{
		prefs:  prefs,
		toasts: toasts,
		list:   l,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.health)
	r.GET("/preferences", h.getPreferences)
	r.PATCH("/preferences", h.updatePreferences)
	r.GET("/notifications", h.listNotifications)
	r.GET("/toasts", h.listToasts)
	r.POST("/toasts/:id/pin", h.pinToast)
	r.POST("/toasts/:id/click", h.clickToast)
	r.DELETE("/toasts/:id", h.dismissToast)
	r.DELETE("/toasts", h.dismissAll)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getPreferences(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.prefs.Get())
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var patch model.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	if err := h.prefs.Update(&patch); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.prefs.Get())
}

func (h *Handler) listNotifications(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{
		"notifications": h.list.Notifications(),
		"unread_count":  h.list.UnreadCount(),
	})
}

func (h *Handler) listToasts(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.toasts.Active())
}

func (h *Handler) pinToast(c *gin.Context) {
	id, err := toastID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if !h.toasts.Pin(id) {
		httputil.RespondWithError(c, errors.NotFound("toast", nil))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"pinned": true})
}

func (h *Handler) clickToast(c *gin.Context) {
	id, err := toastID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if !h.toasts.Click(id) {
		httputil.RespondWithError(c, errors.NotFound("toast", nil))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"dismissed": true})
}

func (h *Handler) dismissToast(c *gin.Context) {
	id, err := toastID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if !h.toasts.Dismiss(id) {
		httputil.RespondWithError(c, errors.NotFound("toast", nil))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"dismissed": true})
}

func (h *Handler) dismissAll(c *gin.Context) {
	h.toasts.DismissAll()
	httputil.RespondWithSuccess(c, gin.H{"dismissed": true})
}

func toastID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("invalid toast id %q", c.Param("id")), err)
	}
	return id, nil
}
