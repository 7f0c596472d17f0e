package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/gin-gonic/gin"
)

// maxDocumentBytes bounds the request body; a 128-bar document with
// every track populated stays well under this.
const maxDocumentBytes = 4 << 20

type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate checks a raw document against the format rules. The body is
// the document itself, not a wrapper, so clients can POST stored files
// unchanged.
func Validate(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if _, err := song.Parse(raw); err != nil {
		resp := ValidateResponse{Valid: false}
		var verr *song.ValidationError
		if errors.As(err, &verr) {
			resp.Errors = append(resp.Errors, verr.Error())
		} else {
			resp.Errors = append(resp.Errors, err.Error())
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{Valid: true})
}
