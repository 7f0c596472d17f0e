package models

import (
	"time"

	"gorm.io/gorm"
)

// SongRecord is a persisted song document plus the identity inputs it
// was generated from. Document holds the full JSON; the scalar columns
// are denormalized for listing and querying without parsing it.
type SongRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	WalletAddress string `gorm:"index" json:"wallet_address"`
	Title         string `gorm:"not null" json:"title"`
	Seed          int64  `gorm:"not null" json:"seed"`
	BPM           int    `gorm:"not null" json:"bpm"`
	Bars          int    `gorm:"not null" json:"bars"`
	Steps         int    `gorm:"not null" json:"steps"`
	Key           string `json:"key"`
	Mode          string `json:"mode"`
	Expanded      bool   `gorm:"default:false" json:"expanded"`
	Document      string `gorm:"type:jsonb;not null" json:"-"`
}

// ExpansionLog tracks producer calls for analytics and cost tracking
type ExpansionLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SongID       *uint   `gorm:"index" json:"song_id,omitempty"`
	Model        string  `gorm:"not null" json:"model"`
	Provider     string  `json:"provider"`
	Success      bool    `gorm:"default:false" json:"success"`
	Reason       string  `gorm:"type:text" json:"reason,omitempty"`
	InputTokens  int     `gorm:"default:0" json:"input_tokens"`
	OutputTokens int     `gorm:"default:0" json:"output_tokens"`
	TotalTokens  int     `gorm:"default:0" json:"total_tokens"`
	CostUSD      float64 `gorm:"default:0" json:"cost_usd"`
	DurationMS   int     `gorm:"not null" json:"duration_ms"`
	RequestID    string  `gorm:"index" json:"request_id"`
}
