package service

import (
	"context"

	"allmeet-api/core/errors"
	"allmeet-api/core/params"
	"allmeet-api/modules/board/dto"
	"allmeet-api/modules/board/entity"
	"allmeet-api/modules/board/repository"

	"github.com/google/uuid"
)

// BoardService reads course board posts. Poll data is assembled through an
// explicit poll repository rather than from inside post serialization.
type BoardService struct {
	posts repository.PostRepositoryInterface
	polls repository.PollRepositoryInterface
}

type BoardServiceInterface interface {
	GetPost(ctx context.Context, id uuid.UUID) (*dto.PostResponse, *errors.AppError)
	ListPosts(ctx context.Context, courseID, category string, params params.QueryParams) ([]dto.PostResponse, int, *errors.AppError)
}

func NewBoardService(posts repository.PostRepositoryInterface, polls repository.PollRepositoryInterface) BoardServiceInterface {
	return &BoardService{posts: posts, polls: polls}
}

func (s *BoardService) GetPost(ctx context.Context, id uuid.UUID) (*dto.PostResponse, *errors.AppError) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Post not found", nil)
	}

	poll, err := s.polls.GetByPostID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load poll", err)
	}

	var options []entity.PollOption
	if poll != nil {
		options, err = s.polls.GetOptions(ctx, poll.ID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load poll options", err)
		}
	}

	return dto.ToPostResponse(post, poll, options), nil
}

func (s *BoardService) ListPosts(ctx context.Context, courseID, category string, queryParams params.QueryParams) ([]dto.PostResponse, int, *errors.AppError) {
	page, err := s.posts.ListPosts(ctx, courseID, category, queryParams)
	if err != nil {
		return nil, 0, errors.NewAppError(errors.ErrInternalServer, "Failed to list posts", err)
	}

	result := make([]dto.PostResponse, 0, len(page.Items))
	for i := range page.Items {
		result = append(result, *dto.ToPostResponse(&page.Items[i], nil, nil))
	}
	return result, page.TotalItems, nil
}
