package model

import (
	"time"

	"gorm.io/datatypes"
)

// BiometricVerification 指纹验证审计 — 对应 biometric_verifications
type BiometricVerification struct {
	VerificationID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"verification_id"`
	ProfileID      string         `gorm:"type:uuid;not null"                             json:"profile_id"`
	SessionID      *string        `gorm:"type:uuid"                                      json:"session_id,omitempty"`
	Success        bool           `gorm:"not null"                                       json:"success"`
	MatchScore     float64        `gorm:"type:numeric(5,2);not null;default:0"           json:"match_score"`
	FailedCheck    *string        `gorm:"type:varchar(30)"                               json:"failed_check,omitempty"`
	Checks         datatypes.JSON `gorm:"type:jsonb;not null"                            json:"checks"`
	VerifiedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"verified_at"`
}

// TableName 指定表名
func (BiometricVerification) TableName() string { return "biometric_verifications" }
