package contract

import (
	"context"
	"time"

	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/repository/specification"
)

type LoanSessionRepository interface {
	// FindOne returns (nil, nil) when no row matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LoanSession, error)
	UpdateConversations(ctx context.Context, id string, turns []entity.ConversationTurn) error
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
}
