package repository

import (
	"context"
	"database/sql"

	"allmeet-api/core/database"
	"allmeet-api/core/logger"
	"allmeet-api/modules/board/entity"

	"github.com/google/uuid"
)

// PollRepositoryInterface is the explicit collaborator the board service uses
// to attach poll data to a post response.
type PollRepositoryInterface interface {
	GetByPostID(ctx context.Context, postID uuid.UUID) (*entity.Poll, error)
	GetOptions(ctx context.Context, pollID uuid.UUID) ([]entity.PollOption, error)
}

type PollRepository struct {
	db database.IDatabase
}

func NewPollRepository(db database.IDatabase) *PollRepository {
	return &PollRepository{db: db}
}

func (r *PollRepository) GetByPostID(ctx context.Context, postID uuid.UUID) (*entity.Poll, error) {
	query := `
		SELECT id, post_id, question, expires_at, created_at, updated_at
		FROM polls WHERE post_id = $1
	`

	var poll entity.Poll
	err := r.db.GetContext(ctx, &poll, query, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PollRepository:GetByPostID", err)
		return nil, err
	}
	return &poll, nil
}

func (r *PollRepository) GetOptions(ctx context.Context, pollID uuid.UUID) ([]entity.PollOption, error) {
	query := `
		SELECT id, poll_id, text, created_at, updated_at
		FROM poll_options WHERE poll_id = $1
		ORDER BY created_at
	`

	var options []entity.PollOption
	err := r.db.SelectContext(ctx, &options, query, pollID)
	if err != nil {
		logger.Error("PollRepository:GetOptions", err)
		return nil, err
	}
	return options, nil
}
