package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/basedrum/basedrum-api/internal/api/middleware"
	"github.com/basedrum/basedrum-api/internal/config"
	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/logger"
	"github.com/basedrum/basedrum-api/internal/metrics"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/pattern"
	"github.com/basedrum/basedrum-api/internal/services"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/gin-gonic/gin"
)

const (
	// Generation modes
	modeStochastic = "stochastic"
	modeThreshold  = "threshold"

	identityFetchTimeout = 15 * time.Second
	defaultTitle         = "Untitled Pattern"
)

var sentryMetrics = metrics.NewSentryMetrics()

type GenerateHandler struct {
	identity  *identity.Client
	generator *pattern.Generator
	songs     *services.SongsService
	metrics   *metrics.Client
}

func NewGenerateHandler(cfg *config.Config, songs *services.SongsService, m *metrics.Client) *GenerateHandler {
	var idClient *identity.Client
	if cfg.IdentityServiceURL != "" {
		idClient = identity.NewClient(cfg.IdentityServiceURL)
	}
	return &GenerateHandler{
		identity:  idClient,
		generator: pattern.NewGenerator(),
		songs:     songs,
		metrics:   m,
	}
}

type GenerateRequest struct {
	WalletAddress string `json:"wallet_address"`
	Title         string `json:"title"`
	Mode          string `json:"mode"`
	Save          bool   `json:"save"`

	// Inline identity snapshot, used instead of the identity service
	// when provided. Lets clients replay a known snapshot.
	Identity *identity.Vector `json:"identity,omitempty"`
}

type GenerateResponse struct {
	Document    *song.Document           `json:"document"`
	Tracks      []pattern.GeneratedTrack `json:"tracks,omitempty"`
	Constraints music.Constraints        `json:"constraints"`
	Seed        uint64                   `json:"seed"`
	Mode        string                   `json:"mode"`
	SongID      *uint                    `json:"song_id,omitempty"`
}

// Generate builds a seed loop from a wallet's identity vector. With no
// wallet and no inline identity it still succeeds on the default
// constraints, identity data is an enrichment, never a requirement.
func (h *GenerateHandler) Generate(c *gin.Context) {
	start := time.Now()

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = modeStochastic
	}
	if mode != modeStochastic && mode != modeThreshold {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be stochastic or threshold"})
		return
	}

	title := req.Title
	if title == "" {
		title = defaultTitle
	}

	if req.WalletAddress == "" {
		if wallet, ok := middleware.WalletFromContext(c); ok {
			req.WalletAddress = wallet
		}
	}

	vector := h.resolveIdentity(c.Request.Context(), &req)
	constraints := music.ExtractConstraints(vector)

	resp := GenerateResponse{
		Constraints: constraints,
		Mode:        mode,
	}
	if vector != nil {
		resp.Seed = music.SeedFor(vector.Address, vector.FollowerCount, vector.TransactionCount)
	} else {
		resp.Seed = music.SeedFor("", 0, 0)
	}

	switch mode {
	case modeThreshold:
		resp.Document = pattern.BuildThresholdDocument(title, vector)
	default:
		tracks := h.generator.GenerateWithConstraints(vector, constraints)
		resp.Tracks = tracks
		resp.Document = pattern.BuildDocument(title, tracks, constraints)
	}

	if req.Save {
		if !h.songs.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
			return
		}
		record, err := h.songs.Save(resp.Document, req.WalletAddress, resp.Seed, constraints.Key, string(constraints.Mode), false)
		if err != nil {
			logger.Error("Failed to persist generated song", err, logger.Fields{
				"request_id": c.GetString("request_id"),
				"wallet":     req.WalletAddress,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save song"})
			return
		}
		resp.SongID = &record.ID
	}

	if h.metrics != nil {
		h.metrics.RecordGeneration(mode, len(resp.Document.Tracks), time.Since(start))
	}
	sentryMetrics.RecordGenerationDuration(c.Request.Context(), time.Since(start), true)

	logger.Info("Pattern generated", logger.Fields{
		"request_id": c.GetString("request_id"),
		"mode":       mode,
		"wallet":     req.WalletAddress,
		"seed":       resp.Seed,
		"bpm":        constraints.Tempo,
	})

	c.JSON(http.StatusOK, resp)
}

// resolveIdentity prefers the inline snapshot, then the identity
// service. Both failing is fine: a nil vector means defaults.
func (h *GenerateHandler) resolveIdentity(ctx context.Context, req *GenerateRequest) *identity.Vector {
	if req.Identity != nil {
		if req.Identity.Address == "" {
			req.Identity.Address = req.WalletAddress
		}
		return req.Identity
	}
	if h.identity == nil || req.WalletAddress == "" {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, identityFetchTimeout)
	defer cancel()
	return h.identity.Fetch(fetchCtx, req.WalletAddress)
}
