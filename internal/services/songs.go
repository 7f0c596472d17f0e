package services

import (
	"fmt"
	"time"

	"github.com/basedrum/basedrum-api/internal/models"
	"github.com/basedrum/basedrum-api/internal/song"
	"gorm.io/gorm"
)

const defaultListLimit = 50

// SongsService persists and retrieves song documents. A nil *gorm.DB
// is allowed: every method then reports persistence as unavailable, so
// the API can run stateless.
type SongsService struct {
	db *gorm.DB
}

func NewSongsService(db *gorm.DB) *SongsService {
	return &SongsService{db: db}
}

// Available reports whether a database is wired in.
func (s *SongsService) Available() bool {
	return s != nil && s.db != nil
}

// Save stores a validated document and returns the record.
func (s *SongsService) Save(doc *song.Document, walletAddress string, seed uint64, keySig, mode string, expanded bool) (*models.SongRecord, error) {
	if !s.Available() {
		return nil, gorm.ErrInvalidDB
	}
	if err := song.Validate(doc); err != nil {
		return nil, fmt.Errorf("refusing to persist invalid document: %w", err)
	}

	raw, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	record := &models.SongRecord{
		WalletAddress: walletAddress,
		Title:         doc.Metadata.Title,
		Seed:          int64(seed),
		BPM:           doc.Metadata.BPM,
		Bars:          doc.Metadata.Bars,
		Steps:         doc.Metadata.Steps,
		Key:           keySig,
		Mode:          mode,
		Expanded:      expanded,
		Document:      string(raw),
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Get loads one record by id.
func (s *SongsService) Get(id uint) (*models.SongRecord, error) {
	if !s.Available() {
		return nil, gorm.ErrInvalidDB
	}
	var record models.SongRecord
	if err := s.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Document parses the stored JSON back into a playable document.
func (s *SongsService) Document(record *models.SongRecord) (*song.Document, error) {
	return song.Parse([]byte(record.Document))
}

// ListByWallet returns the newest records for one wallet.
func (s *SongsService) ListByWallet(walletAddress string, limit int) ([]models.SongRecord, error) {
	if !s.Available() {
		return nil, gorm.ErrInvalidDB
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var records []models.SongRecord
	err := s.db.
		Where("wallet_address = ?", walletAddress).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Delete soft-deletes a record.
func (s *SongsService) Delete(id uint) error {
	if !s.Available() {
		return gorm.ErrInvalidDB
	}
	result := s.db.Delete(&models.SongRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LogExpansion records one producer call. Logging failures are not
// propagated, the expansion result matters more than the audit row.
func (s *SongsService) LogExpansion(entry *models.ExpansionLog, duration time.Duration) {
	if !s.Available() || entry == nil {
		return
	}
	entry.DurationMS = int(duration.Milliseconds())
	s.db.Create(entry)
}
