package port

import (
	"context"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.AnalysisSession) error
	Update(ctx context.Context, session *entity.AnalysisSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisSession, error)
}
