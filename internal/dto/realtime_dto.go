package dto

import "time"

type InboundMessage struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
}

type SystemMessage struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	SessionId string    `json:"session_id"`
	LoanName  string    `json:"loan_name"`
	Timestamp time.Time `json:"timestamp"`
}

type ProcessingMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type AnswerMessage struct {
	Type      string    `json:"type"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PongMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationFlushMessage is queued after each exchange to mirror the log into the row store.
type ConversationFlushMessage struct {
	SessionId     string    `json:"session_id"`
	Conversations []TurnDTO `json:"conversations"`
}
