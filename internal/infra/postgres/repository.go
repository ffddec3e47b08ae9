package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.AnalysisSession) error {
	stats, err := marshalStats(s.Stats)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_sessions (
			id, original_name, video_key, processed_key, status, prompt,
			frame_rate, frame_count, file_size, video_duration, stats,
			error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.OriginalName, s.VideoKey, s.ProcessedKey, string(s.Status),
		s.Prompt, s.FrameRate, s.FrameCount, s.FileSize, s.VideoDuration,
		stats, s.ErrorMessage, s.CreatedAt, s.UpdatedAt, s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, s *entity.AnalysisSession) error {
	stats, err := marshalStats(s.Stats)
	if err != nil {
		return err
	}

	query := `
		UPDATE analysis_sessions SET
			status=$2, processed_key=$3, frame_count=$4, video_duration=$5,
			stats=$6, error_message=$7, updated_at=$8, completed_at=$9
		WHERE id=$1`

	_, err = r.pool.Exec(ctx, query,
		s.ID, string(s.Status), s.ProcessedKey, s.FrameCount,
		s.VideoDuration, stats, s.ErrorMessage, s.UpdatedAt, s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisSession, error) {
	query := `
		SELECT id, original_name, video_key, processed_key, status, prompt,
			frame_rate, frame_count, file_size, video_duration, stats,
			error_message, created_at, updated_at, completed_at
		FROM analysis_sessions WHERE id=$1`

	s := &entity.AnalysisSession{}
	var status string
	var stats []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.OriginalName, &s.VideoKey, &s.ProcessedKey, &status,
		&s.Prompt, &s.FrameRate, &s.FrameCount, &s.FileSize, &s.VideoDuration,
		&stats, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt, &s.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	s.Status = entity.SessionStatus(status)

	if len(stats) > 0 {
		s.Stats = &entity.SessionStats{}
		if err := json.Unmarshal(stats, s.Stats); err != nil {
			return nil, fmt.Errorf("decode session stats: %w", err)
		}
	}
	return s, nil
}

func marshalStats(stats *entity.SessionStats) ([]byte, error) {
	if stats == nil {
		return nil, nil
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encode session stats: %w", err)
	}
	return data, nil
}
