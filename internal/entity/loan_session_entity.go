package entity

import (
	"time"
)

const (
	LoanSessionStatusActive    = "active"
	LoanSessionStatusCompleted = "completed"
)

type LoanSession struct {
	Id            string
	UserId        string
	LoanName      string
	UserRole      string
	Institution   string
	AiFocus       string
	Language      string
	Region        string
	Status        string
	Documents     []LoanDocument
	Conversations []ConversationTurn
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// LoanDocument points at a document in object storage.
type LoanDocument struct {
	Filename    string
	Bucket      string
	ObjectPath  string
	ContentType string
}

type ConversationTurn struct {
	Role      string
	Message   string
	Timestamp time.Time
}
