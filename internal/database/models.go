// Package database stores the per-request audit trail: one record per
// /invoke call plus the LLM exchanges behind it. Uses GORM with prepared
// statements.
package database

import "time"

// DetectionRecord is the outcome of one /invoke call.
// Source is one of: xml, image, combined. Status: success, failed, error.
type DetectionRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Source       string    `gorm:"type:varchar(16);not null"`
	TestcaseDesc string    `gorm:"type:text"`
	IsPopup      bool      `gorm:"not null;default:false"`
	Status       string    `gorm:"type:varchar(16);not null"`
	ResponseBody string    `gorm:"type:text"`
	LatencyMs    int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// LlmLog is one prompt/response exchange with the reasoning model.
type LlmLog struct {
	ID           uint      `gorm:"primaryKey"`
	DetectionID  *uint     `gorm:"index"`
	Role         string    `gorm:"type:varchar(16);not null"`
	PromptText   string    `gorm:"type:text;not null"`
	ResponseText string    `gorm:"type:text"`
	Model        string    `gorm:"type:varchar(64)"`
	TokensUsed   int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
