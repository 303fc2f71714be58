package model

import (
	"time"

	"gorm.io/datatypes"
)

type LoanSession struct {
	Id            string                                `gorm:"type:text;primaryKey"`
	UserId        string                                `gorm:"type:text;index"`
	LoanName      string                                `gorm:"type:text;not null"`
	UserRole      string                                `gorm:"type:text"`
	Institution   string                                `gorm:"type:text"`
	AiFocus       string                                `gorm:"type:text"`
	Language      string                                `gorm:"type:varchar(32)"`
	Region        string                                `gorm:"type:varchar(64)"`
	Status        string                                `gorm:"type:varchar(32);not null;default:'active';index"`
	Documents     datatypes.JSONSlice[LoanDocument]     `gorm:"type:jsonb"`
	Conversations datatypes.JSONSlice[ConversationTurn] `gorm:"type:jsonb"`
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (LoanSession) TableName() string {
	return "loan_sessions"
}

type LoanDocument struct {
	Filename    string `json:"filename"`
	Bucket      string `json:"bucket"`
	ObjectPath  string `json:"object_path"`
	ContentType string `json:"content_type"`
}

type ConversationTurn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
