package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/view"
)

type handlers struct {
	deps Deps
	log  *zap.Logger
}

type captureRequest struct {
	Target string `json:"target" binding:"required"`
	// Body is the response text as a JSON string, or the decoded object.
	Body json.RawMessage `json:"body" binding:"required"`
}

type navigationRequest struct {
	Path string `json:"path" binding:"required"`
}

type viewResponse struct {
	Items  []view.Row           `json:"items"`
	Detail *view.Row            `json:"detail"`
	State  history.SessionState `json:"state"`
}

func (h *handlers) status(c *gin.Context) {
	captured, dropped := h.deps.Interceptor.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  h.deps.Version,
		"captured": captured,
		"dropped":  dropped,
		"links":    h.deps.List.Len(),
		"proxy":    h.deps.Config.Proxy.Upstream != "",
	})
}

// capture accepts a response forwarded by the in-page script. Anything the
// interceptor cannot use is dropped, so the caller always gets 202 once the
// request itself is well formed.
func (h *handlers) capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid capture request")
		return
	}

	body := []byte(req.Body)
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte(`"`)) {
		var text string
		if err := json.Unmarshal(body, &text); err != nil {
			fail(c, http.StatusBadRequest, codeBadRequest, "invalid capture body")
			return
		}
		body = []byte(text)
	}

	// Persistence must not be cut short when the script's request ends.
	h.deps.Interceptor.Observe(context.WithoutCancel(c.Request.Context()), req.Target, body)
	success(c, http.StatusAccepted, gin.H{"matched": h.deps.Interceptor.Matches(req.Target)})
}

func (h *handlers) navigation(c *gin.Context) {
	var req navigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid navigation request")
		return
	}
	if err := h.deps.Feed.Publish(c.Request.Context(), req.Path); err != nil {
		h.log.Warn("navigation signal dropped", zap.String("path", req.Path), zap.Error(err))
		fail(c, http.StatusServiceUnavailable, codeStorageUnavailable, "navigation unavailable")
		return
	}
	success(c, http.StatusAccepted, nil)
}

func (h *handlers) view(c *gin.Context) {
	success(c, http.StatusOK, h.snapshot())
}

func (h *handlers) loadMore(c *gin.Context) {
	n, err := h.deps.Session.LoadNextPage(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	snap := h.snapshot()
	success(c, http.StatusOK, gin.H{
		"loaded": n,
		"state":  snap.State,
		"items":  snap.Items,
	})
}

func (h *handlers) search(c *gin.Context) {
	results, err := h.deps.Session.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		failWith(c, err)
		return
	}
	loc := h.deps.List.Location()
	rows := make([]view.Row, 0, len(results))
	for _, rec := range results {
		rows = append(rows, view.NewRow(rec, loc))
	}
	success(c, http.StatusOK, gin.H{"query": c.Query("q"), "results": rows})
}

func (h *handlers) selectLink(c *gin.Context) {
	rec, err := h.deps.Session.Select(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	if rec == nil {
		success(c, http.StatusOK, gin.H{"detail": nil})
		return
	}
	row := view.NewRow(*rec, h.deps.List.Location())
	success(c, http.StatusOK, gin.H{"detail": row, "record": rec})
}

func (h *handlers) deleteLink(c *gin.Context) {
	if err := h.deps.Session.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	success(c, http.StatusOK, nil)
}

func (h *handlers) closeDetail(c *gin.Context) {
	h.deps.Session.CloseDetail()
	success(c, http.StatusOK, nil)
}

func (h *handlers) snapshot() viewResponse {
	resp := viewResponse{
		Items: h.deps.List.Rows(),
		State: h.deps.Session.State(),
	}
	if rec, ok := h.deps.List.Detail(); ok {
		row := view.NewRow(rec, h.deps.List.Location())
		resp.Detail = &row
	}
	return resp
}
