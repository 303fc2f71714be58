package dto

import "time"

type InitializeContextRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	UserId    string `json:"user_id"`
}

type DocumentSummaryDTO struct {
	Filename  string `json:"filename"`
	Summary   string `json:"summary"`
	Processed bool   `json:"processed"`
}

type ContextSummary struct {
	LoanName           string               `json:"loan_name"`
	UserRole           string               `json:"user_role"`
	DocumentCount      int                  `json:"document_count"`
	Region             string               `json:"region"`
	DocumentsProcessed int                  `json:"documents_processed"`
	DocumentSummaries  []DocumentSummaryDTO `json:"document_summaries"`
}

type InitializeContextResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	ContextSummary ContextSummary `json:"context_summary"`
}

type QueryRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Question  string `json:"question" validate:"notblank"`
}

type QueryResponse struct {
	Success   bool   `json:"success"`
	Answer    string `json:"answer"`
	SessionId string `json:"session_id"`
}

// DocumentInfoDTO describes a cached document without its content.
type DocumentInfoDTO struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Attached    bool   `json:"attached"`
	HasContent  bool   `json:"has_content"`
}

type TurnDTO struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionContextResponse struct {
	SessionId         string               `json:"session_id"`
	UserId            string               `json:"user_id,omitempty"`
	LoanName          string               `json:"loan_name"`
	UserRole          string               `json:"user_role"`
	Institution       string               `json:"institution"`
	AiFocus           string               `json:"ai_focus"`
	Language          string               `json:"language"`
	Region            string               `json:"region"`
	Documents         []DocumentInfoDTO    `json:"documents"`
	DocumentSummaries []DocumentSummaryDTO `json:"document_summaries"`
	Conversations     []TurnDTO            `json:"conversations"`
	ConversationCount int                  `json:"conversation_count"`
}

type EndSessionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionId string `json:"session_id"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
