package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/basedrum/basedrum-api/internal/api/middleware"
	"github.com/basedrum/basedrum-api/internal/logger"
	"github.com/basedrum/basedrum-api/internal/models"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/producer"
	"github.com/basedrum/basedrum-api/internal/services"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/gin-gonic/gin"
)

const expandTimeout = 120 * time.Second

type ExpandHandler struct {
	producer *producer.Producer
	songs    *services.SongsService
}

func NewExpandHandler(p *producer.Producer, songs *services.SongsService) *ExpandHandler {
	return &ExpandHandler{producer: p, songs: songs}
}

type ExpandRequest struct {
	Document    *song.Document     `json:"document" binding:"required"`
	Constraints *music.Constraints `json:"constraints,omitempty"`
	Model       string             `json:"model"`
	Provider    string             `json:"provider"`
	Save        bool               `json:"save"`
}

type ExpandResponse struct {
	Document       *song.Document `json:"document"`
	Expanded       bool           `json:"expanded"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	Model          string         `json:"model"`
	TotalTokens    int            `json:"total_tokens"`
	SongID         *uint          `json:"song_id,omitempty"`
}

// Expand runs the producer pass over a seed loop. The response always
// carries a playable document: the expansion when it validated, the
// submitted seed when it did not.
func (h *ExpandHandler) Expand(c *gin.Context) {
	var req ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), expandTimeout)
	defer cancel()

	result, err := h.producer.Expand(ctx, &producer.ExpandRequest{
		Document:    req.Document,
		Constraints: req.Constraints,
		Model:       req.Model,
		Provider:    req.Provider,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := ExpandResponse{
		Document:       result.Document,
		Expanded:       result.Expanded,
		FallbackReason: result.FallbackReason,
		Model:          result.Model,
		TotalTokens:    result.TotalTokens,
	}

	if req.Save && result.Expanded && h.songs.Available() {
		wallet, _ := middleware.WalletFromContext(c)
		record, saveErr := h.songs.Save(result.Document, wallet, 0, "", "", true)
		if saveErr != nil {
			logger.Error("Failed to persist expanded song", saveErr, logger.Fields{
				"request_id": c.GetString("request_id"),
			})
		} else {
			resp.SongID = &record.ID
		}
	}

	h.songs.LogExpansion(&models.ExpansionLog{
		SongID:      resp.SongID,
		Model:       result.Model,
		Success:     result.Expanded,
		Reason:      result.FallbackReason,
		TotalTokens: result.TotalTokens,
		CostUSD:     result.Cost,
		RequestID:   c.GetString("request_id"),
	}, result.Duration)

	c.JSON(http.StatusOK, resp)
}
