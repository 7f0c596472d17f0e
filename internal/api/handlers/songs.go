package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/basedrum/basedrum-api/internal/api/middleware"
	"github.com/basedrum/basedrum-api/internal/services"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SongsHandler struct {
	songs *services.SongsService
}

func NewSongsHandler(songs *services.SongsService) *SongsHandler {
	return &SongsHandler{songs: songs}
}

type CreateSongRequest struct {
	Document      *song.Document `json:"document" binding:"required"`
	WalletAddress string         `json:"wallet_address"`
	Seed          uint64         `json:"seed"`
	Key           string         `json:"key"`
	Mode          string         `json:"mode"`
	Expanded      bool           `json:"expanded"`
}

// Create stores a document the client already holds, e.g. one generated
// locally or edited after generation. The document is validated before it
// is persisted; invalid documents are rejected whole.
func (h *SongsHandler) Create(c *gin.Context) {
	var req CreateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := song.Validate(req.Document); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if req.WalletAddress == "" {
		if wallet, ok := middleware.WalletFromContext(c); ok {
			req.WalletAddress = wallet
		}
	}

	record, err := h.songs.Save(req.Document, req.WalletAddress, req.Seed, req.Key, req.Mode, req.Expanded)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"song": record})
}

// Get returns one stored song, including its full document.
func (h *SongsHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	record, err := h.songs.Get(id)
	if err != nil {
		h.storageError(c, err)
		return
	}

	doc, err := h.songs.Document(record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored document is corrupt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"song":     record,
		"document": doc,
	})
}

// List returns a wallet's songs, newest first, without documents.
func (h *SongsHandler) List(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet query parameter required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.songs.ListByWallet(wallet, limit)
	if err != nil {
		h.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"songs": records, "count": len(records)})
}

// Delete soft-deletes a stored song.
func (h *SongsHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.songs.Delete(id); err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *SongsHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid song id"})
		return 0, false
	}
	return uint(id), true
}

func (h *SongsHandler) storageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
	case errors.Is(err, gorm.ErrInvalidDB):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
	}
}
