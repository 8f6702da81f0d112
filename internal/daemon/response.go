package daemon

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runnerr0/linkhist/internal/storage"
)

// jsonResponse is the envelope of every API response.
type jsonResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes returned in the envelope.
const (
	codeOK                 = 0
	codeBadRequest         = 40001
	codeNotFound           = 40401
	codeRateLimited        = 42901
	codeInternal           = 50001
	codeStorageUnavailable = 50301
)

func respond(c *gin.Context, status, code int, message string, data any) {
	c.JSON(status, jsonResponse{Code: code, Message: message, Data: data})
}

func success(c *gin.Context, status int, data any) {
	respond(c, status, codeOK, "success", data)
}

func fail(c *gin.Context, status, code int, message string) {
	respond(c, status, code, message, nil)
}

// failWith maps a history or storage error to a response.
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fail(c, http.StatusNotFound, codeNotFound, "link not found")
	case errors.Is(err, storage.ErrStorageUnavailable):
		fail(c, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
	default:
		fail(c, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
