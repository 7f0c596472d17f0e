package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/basedrum/basedrum-api/internal/models"
	"github.com/basedrum/basedrum-api/internal/song"
)

func TestSongsServiceWithoutDatabase(t *testing.T) {
	svc := NewSongsService(nil)

	assert.False(t, svc.Available())

	_, err := svc.Save(&song.Document{}, "0xabc", 1<<40, "C", "minor", false)
	assert.ErrorIs(t, err, gorm.ErrInvalidDB)

	_, err = svc.Get(1)
	assert.ErrorIs(t, err, gorm.ErrInvalidDB)

	_, err = svc.ListByWallet("0xabc", 10)
	assert.ErrorIs(t, err, gorm.ErrInvalidDB)

	assert.ErrorIs(t, svc.Delete(1), gorm.ErrInvalidDB)

	// Must be a silent no-op, not a panic.
	svc.LogExpansion(&models.ExpansionLog{Model: "gpt-5-mini"}, time.Second)

	var nilSvc *SongsService
	assert.False(t, nilSvc.Available())
}

func TestDocumentReparsesStoredJSON(t *testing.T) {
	doc := &song.Document{
		Metadata: song.Metadata{
			Title:   "Stored",
			Artist:  "basedrum",
			Version: "1.0",
			Created: "2026-08-28T00:00:00Z",
			BPM:     130,
			Bars:    1,
			Steps:   16,
			Format:  song.FormatTag,
		},
		Tracks: map[string]song.Track{
			"kick": {Pattern: []int{0, 4, 8, 12}},
		},
	}
	raw, err := doc.Encode()
	require.NoError(t, err)

	svc := NewSongsService(nil)
	parsed, err := svc.Document(&models.SongRecord{Document: string(raw)})
	require.NoError(t, err)
	assert.Equal(t, "Stored", parsed.Metadata.Title)
	assert.Equal(t, []int{0, 4, 8, 12}, parsed.Tracks["kick"].Pattern)

	_, err = svc.Document(&models.SongRecord{Document: "not json"})
	require.Error(t, err)
}
