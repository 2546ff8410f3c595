package repository

import (
	"context"
	"database/sql"

	"allmeet-api/core/database"
	"allmeet-api/core/logger"
	"allmeet-api/core/params"
	"allmeet-api/modules/board/entity"

	"github.com/google/uuid"
)

type PostRepositoryInterface interface {
	FindArtifact(ctx context.Context, courseID, category, teamBoardName, title string) (*uuid.UUID, error)
	CreateArtifact(ctx context.Context, post *entity.Post, poll *entity.Poll, options []entity.PollOption) error
	GetPostByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	ListPosts(ctx context.Context, courseID, category string, params params.QueryParams) (*entity.PaginatedPostEntity, error)
}

type PostRepository struct {
	db database.IDatabase
}

func NewPostRepository(db database.IDatabase) *PostRepository {
	return &PostRepository{db: db}
}

// FindArtifact looks up an existing auto-recommendation post by its natural
// key. Returns (nil, nil) when none exists.
func (r *PostRepository) FindArtifact(ctx context.Context, courseID, category, teamBoardName, title string) (*uuid.UUID, error) {
	query := `
		SELECT id FROM course_board_posts
		WHERE course_id = $1 AND category = $2 AND team_board_name = $3 AND title = $4
	`

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, courseID, category, teamBoardName, title).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PostRepository:FindArtifact", err)
		return nil, err
	}
	return &id, nil
}

// CreateArtifact writes the post, its poll and the poll options in a single
// transaction. The caller can detect the natural-key race with
// database.IsUniqueViolation.
func (r *PostRepository) CreateArtifact(ctx context.Context, post *entity.Post, poll *entity.Poll, options []entity.PollOption) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("PostRepository:CreateArtifact:Begin", err)
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	postQuery := `
		INSERT INTO course_board_posts
			(id, course_id, author_id, author_type, title, content, category, team_board_name, is_pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, postQuery,
		post.ID, post.CourseID, post.AuthorID, post.AuthorType, post.Title,
		post.Content, post.Category, post.TeamBoardName, post.IsPinned,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		if !database.IsUniqueViolation(err) {
			logger.Error("PostRepository:CreateArtifact:InsertPost", err)
		}
		return err
	}

	pollQuery := `
		INSERT INTO polls (id, post_id, question, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, pollQuery,
		poll.ID, poll.PostID, poll.Question, poll.ExpiresAt, poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		logger.Error("PostRepository:CreateArtifact:InsertPoll", err)
		return err
	}

	optionQuery := `
		INSERT INTO poll_options (id, poll_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, option := range options {
		_, err = tx.ExecContext(ctx, optionQuery,
			option.ID, option.PollID, option.Text, option.CreatedAt, option.UpdatedAt)
		if err != nil {
			logger.Error("PostRepository:CreateArtifact:InsertOption", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("PostRepository:CreateArtifact:Commit", err)
		return err
	}
	return nil
}

func (r *PostRepository) GetPostByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	query := `
		SELECT id, course_id, author_id, author_type, title, content, category,
		       team_board_name, is_pinned, created_at, updated_at
		FROM course_board_posts WHERE id = $1
	`

	var post entity.Post
	err := r.db.GetContext(ctx, &post, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PostRepository:GetPostByID", err)
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) ListPosts(ctx context.Context, courseID, category string, params params.QueryParams) (*entity.PaginatedPostEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize

	baseQuery := `FROM course_board_posts WHERE course_id = $1 AND category = $2`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, courseID, category)
	if err != nil {
		logger.Error("PostRepository:ListPosts:Count", err)
		return nil, err
	}

	query := `
		SELECT id, course_id, author_id, author_type, title, content, category,
		       team_board_name, is_pinned, created_at, updated_at ` + baseQuery + `
		ORDER BY is_pinned DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`

	var posts []entity.Post
	err = r.db.SelectContext(ctx, &posts, query, courseID, category, params.PageSize, offset)
	if err != nil {
		logger.Error("PostRepository:ListPosts:Select", err)
		return nil, err
	}

	return &entity.PaginatedPostEntity{
		Items:      posts,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}
