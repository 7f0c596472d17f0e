package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/basedrum/basedrum-api/internal/config"
	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/producer"
	"github.com/basedrum/basedrum-api/internal/services"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T, p *producer.Producer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Environment: "test"}
	songs := services.NewSongsService(nil)

	router := gin.New()
	generateHandler := NewGenerateHandler(cfg, songs, nil)
	router.POST("/api/v1/songs/generate", generateHandler.Generate)
	router.POST("/api/v1/songs/validate", Validate)
	if p != nil {
		expandHandler := NewExpandHandler(p, songs)
		router.POST("/api/v1/songs/expand", expandHandler.Expand)
	}
	songsHandler := NewSongsHandler(songs)
	router.POST("/api/v1/songs", songsHandler.Create)
	router.GET("/api/v1/songs", songsHandler.List)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateWithoutIdentity(t *testing.T) {
	router := setupTestRouter(t, nil)

	w := postJSON(t, router, "/api/v1/songs/generate", GenerateRequest{Title: "Empty Wallet"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Document)
	assert.Equal(t, "stochastic", resp.Mode)
	assert.Equal(t, song.FormatTag, resp.Document.Metadata.Format)
	assert.NotEmpty(t, resp.Document.Tracks)
	assert.NoError(t, song.Validate(resp.Document))
}

func TestGenerateDeterministicForSameIdentity(t *testing.T) {
	router := setupTestRouter(t, nil)

	reqBody := GenerateRequest{
		WalletAddress: "0xabc123",
		Title:         "Repeat",
		Identity: &identity.Vector{
			Address:          "0xabc123",
			TransactionCount: 150,
			TokenCount:       12,
			NFTCount:         3,
			FollowerCount:    200,
			FollowingCount:   150,
		},
	}

	first := postJSON(t, router, "/api/v1/songs/generate", reqBody)
	second := postJSON(t, router, "/api/v1/songs/generate", reqBody)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b GenerateResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	// Created timestamps differ between calls; everything else must not.
	a.Document.Metadata.Created = ""
	b.Document.Metadata.Created = ""
	assert.Equal(t, a.Document, b.Document)
	assert.Equal(t, a.Tracks, b.Tracks)
	assert.Equal(t, a.Seed, b.Seed)
	assert.Equal(t, a.Constraints, b.Constraints)
}

func TestGenerateThresholdMode(t *testing.T) {
	router := setupTestRouter(t, nil)

	w := postJSON(t, router, "/api/v1/songs/generate", GenerateRequest{
		Mode: "threshold",
		Identity: &identity.Vector{
			Address:          "0xdeadbeef",
			TransactionCount: 0,
			FollowerCount:    0,
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Document)
	assert.Equal(t, []int{0, 4, 8, 12}, resp.Document.Tracks["kick"].Pattern)
	assert.Equal(t, []int{4, 12}, resp.Document.Tracks["snare"].Pattern)
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	router := setupTestRouter(t, nil)
	w := postJSON(t, router, "/api/v1/songs/generate", GenerateRequest{Mode: "freeform"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSaveWithoutDatabase(t *testing.T) {
	router := setupTestRouter(t, nil)
	w := postJSON(t, router, "/api/v1/songs/generate", GenerateRequest{Save: true})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	router := setupTestRouter(t, nil)

	valid := &song.Document{
		Metadata: song.NewMetadata("Valid", 140, 1),
		Effects:  song.DefaultEffects(),
		Tracks: map[string]song.Track{
			"kick": {Pattern: []int{0, 4, 8, 12}, Volume: -6},
		},
	}
	w := postJSON(t, router, "/api/v1/songs/validate", valid)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)

	valid.Metadata.BPM = 500
	w = postJSON(t, router, "/api/v1/songs/validate", valid)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Errors)
}

func TestCreateRejectsInvalidDocument(t *testing.T) {
	router := setupTestRouter(t, nil)

	bad := &song.Document{
		Metadata: song.NewMetadata("Bad", 140, 1),
		Tracks: map[string]song.Track{
			"kick": {Pattern: []int{99}},
		},
	}
	w := postJSON(t, router, "/api/v1/songs", CreateSongRequest{Document: bad})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateWithoutDatabase(t *testing.T) {
	router := setupTestRouter(t, nil)

	doc := &song.Document{
		Metadata: song.NewMetadata("Stored", 140, 1),
		Effects:  song.DefaultEffects(),
		Tracks: map[string]song.Track{
			"kick": {Pattern: []int{0, 4, 8, 12}, Volume: -6},
		},
	}
	w := postJSON(t, router, "/api/v1/songs", CreateSongRequest{Document: doc, WalletAddress: "0xabc"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListRequiresWallet(t *testing.T) {
	router := setupTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubProvider struct {
	output string
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(context.Context, *producer.GenerationRequest) (*producer.GenerationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &producer.GenerationResponse{RawOutput: s.output, TotalTokens: 42}, nil
}

type stubSource struct{ provider producer.Provider }

func (s *stubSource) GetProvider(context.Context, string, string) (producer.Provider, error) {
	return s.provider, nil
}

func TestExpandFallsBackThroughAPI(t *testing.T) {
	p := producer.New(&stubSource{provider: &stubProvider{output: "not json"}}, nil, nil)
	router := setupTestRouter(t, p)

	seed := &song.Document{
		Metadata: song.NewMetadata("Seed", 140, 1),
		Effects:  song.DefaultEffects(),
		Tracks: map[string]song.Track{
			"kick": {Pattern: []int{0, 4, 8, 12}, Volume: -6},
		},
	}

	w := postJSON(t, router, "/api/v1/songs/expand", ExpandRequest{Document: seed})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ExpandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Expanded)
	assert.NotEmpty(t, resp.FallbackReason)
	require.NotNil(t, resp.Document)
	assert.Equal(t, 1, resp.Document.Metadata.Bars)
}

func TestExpandRejectsMissingDocument(t *testing.T) {
	p := producer.New(&stubSource{provider: &stubProvider{}}, nil, nil)
	router := setupTestRouter(t, p)

	w := postJSON(t, router, "/api/v1/songs/expand", map[string]any{"model": "gpt-5-mini"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
