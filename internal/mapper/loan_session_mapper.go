package mapper

import (
	"time"

	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/model"
)

type LoanSessionMapper struct{}

func NewLoanSessionMapper() *LoanSessionMapper {
	return &LoanSessionMapper{}
}

func (m *LoanSessionMapper) ToEntity(s *model.LoanSession) *entity.LoanSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	documents := make([]entity.LoanDocument, 0, len(s.Documents))
	for _, d := range s.Documents {
		documents = append(documents, entity.LoanDocument{
			Filename:    d.Filename,
			Bucket:      d.Bucket,
			ObjectPath:  d.ObjectPath,
			ContentType: d.ContentType,
		})
	}

	return &entity.LoanSession{
		Id:            s.Id,
		UserId:        s.UserId,
		LoanName:      s.LoanName,
		UserRole:      s.UserRole,
		Institution:   s.Institution,
		AiFocus:       s.AiFocus,
		Language:      s.Language,
		Region:        s.Region,
		Status:        s.Status,
		Documents:     documents,
		Conversations: m.TurnsToEntity(s.Conversations),
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *LoanSessionMapper) ToModel(s *entity.LoanSession) *model.LoanSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	documents := make([]model.LoanDocument, 0, len(s.Documents))
	for _, d := range s.Documents {
		documents = append(documents, model.LoanDocument{
			Filename:    d.Filename,
			Bucket:      d.Bucket,
			ObjectPath:  d.ObjectPath,
			ContentType: d.ContentType,
		})
	}

	return &model.LoanSession{
		Id:            s.Id,
		UserId:        s.UserId,
		LoanName:      s.LoanName,
		UserRole:      s.UserRole,
		Institution:   s.Institution,
		AiFocus:       s.AiFocus,
		Language:      s.Language,
		Region:        s.Region,
		Status:        s.Status,
		Documents:     documents,
		Conversations: m.TurnsToModel(s.Conversations),
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *LoanSessionMapper) TurnsToEntity(turns []model.ConversationTurn) []entity.ConversationTurn {
	out := make([]entity.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, entity.ConversationTurn{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}
	return out
}

func (m *LoanSessionMapper) TurnsToModel(turns []entity.ConversationTurn) []model.ConversationTurn {
	out := make([]model.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, model.ConversationTurn{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}
	return out
}
