package service

import (
	"context"
	"fmt"

	"allmeet-api/core/cache"
	"allmeet-api/core/constants"
	coreEntity "allmeet-api/core/entity"
	"allmeet-api/core/errors"
	"allmeet-api/core/logger"
	notifDto "allmeet-api/modules/notification/dto"
	"allmeet-api/modules/team/dto"
	"allmeet-api/modules/team/entity"
	"allmeet-api/modules/team/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Notifier is the slice of the notification service the team module needs.
type Notifier interface {
	Enqueue(ctx context.Context, req *notifDto.CreateNotificationRequest) error
}

type TeamService struct {
	repo     repository.TeamRepositoryInterface
	notifier Notifier
	cache    *cache.Cache
}

type TeamServiceInterface interface {
	CreateRecruitment(ctx context.Context, authorID uuid.UUID, req *dto.CreateRecruitmentRequest) (*dto.RecruitmentResponse, *errors.AppError)
	ListByCourse(ctx context.Context, courseID string, userID uuid.UUID) ([]dto.RecruitmentResponse, *errors.AppError)
	JoinTeam(ctx context.Context, teamID, userID uuid.UUID) (*dto.RecruitmentResponse, *errors.AppError)
	LeaveTeam(ctx context.Context, teamID, userID uuid.UUID) *errors.AppError
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]dto.MemberResponse, *errors.AppError)
}

func NewTeamService(repo repository.TeamRepositoryInterface, notifier Notifier, c *cache.Cache) TeamServiceInterface {
	return &TeamService{repo: repo, notifier: notifier, cache: c}
}

func (s *TeamService) CreateRecruitment(ctx context.Context, authorID uuid.UUID, req *dto.CreateRecruitmentRequest) (*dto.RecruitmentResponse, *errors.AppError) {
	if req.CourseID == "" || req.Title == "" || req.Description == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "course_id, title and description are required", nil)
	}
	if req.MaxMembers < 2 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "max_members must be at least 2", nil)
	}

	boardName := req.TeamBoardName
	if boardName == "" {
		boardName = req.Title
	}

	team := &entity.TeamRecruitment{
		CourseID:      req.CourseID,
		AuthorID:      authorID,
		Title:         req.Title,
		Description:   req.Description,
		TeamBoardName: boardName,
		BoardSlug:     slug.Make(boardName),
		MaxMembers:    req.MaxMembers,
		BaseEntity:    coreEntity.NewBaseEntity(),
	}

	if err := s.repo.CreateRecruitment(ctx, team); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create recruitment", err)
	}

	// The author is the first member.
	if err := s.repo.AddMember(ctx, team.ID, authorID); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to add author as member", err)
	}

	return dto.ToRecruitmentResponse(team, 1, true), nil
}

func (s *TeamService) ListByCourse(ctx context.Context, courseID string, userID uuid.UUID) ([]dto.RecruitmentResponse, *errors.AppError) {
	teams, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list recruitments", err)
	}

	result := make([]dto.RecruitmentResponse, 0, len(teams))
	for i := range teams {
		t := &teams[i]
		count, err := s.repo.CountMembers(ctx, t.ID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to count members", err)
		}
		isMember, err := s.repo.IsMember(ctx, t.ID, userID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check membership", err)
		}
		result = append(result, *dto.ToRecruitmentResponse(t, count, isMember))
	}
	return result, nil
}

func (s *TeamService) JoinTeam(ctx context.Context, teamID, userID uuid.UUID) (*dto.RecruitmentResponse, *errors.AppError) {
	team, err := s.repo.GetRecruitmentByID(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load team", err)
	}
	if team == nil {
		return nil, errors.NewAppError(errors.ErrTeamNotFound, "Team not found", nil)
	}

	alreadyMember, err := s.repo.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check membership", err)
	}
	if alreadyMember {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Already a member of this team", nil)
	}

	count, err := s.repo.CountMembers(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to count members", err)
	}
	if count >= team.MaxMembers {
		return nil, errors.NewAppError(errors.ErrTeamFull, "Team is already full", nil)
	}

	if err := s.repo.AddMember(ctx, teamID, userID); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to join team", err)
	}
	count++

	// Membership changed: a previously complete submission gate may no longer
	// be complete, and cached common times are stale.
	s.invalidateCommonTimes(ctx, teamID)

	if count >= team.MaxMembers && !team.IsBoardActivated {
		if err := s.repo.ActivateBoard(ctx, teamID); err != nil {
			logger.Error("TeamService:JoinTeam:ActivateBoard", err)
		} else {
			team.IsBoardActivated = true
		}
	}

	if s.notifier != nil && userID != team.AuthorID {
		courseID := team.CourseID
		notifErr := s.notifier.Enqueue(ctx, &notifDto.CreateNotificationRequest{
			UserID:   team.AuthorID,
			Type:     constants.NotificationTypeTeamJoin,
			Content:  fmt.Sprintf("A new member joined team %s", team.TeamBoardName),
			CourseID: &courseID,
		})
		if notifErr != nil {
			logger.Warn("TeamService:JoinTeam:Notify", "error", notifErr)
		}
	}

	return dto.ToRecruitmentResponse(team, count, true), nil
}

func (s *TeamService) LeaveTeam(ctx context.Context, teamID, userID uuid.UUID) *errors.AppError {
	team, err := s.repo.GetRecruitmentByID(ctx, teamID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load team", err)
	}
	if team == nil {
		return errors.NewAppError(errors.ErrTeamNotFound, "Team not found", nil)
	}

	removed, err := s.repo.RemoveMember(ctx, teamID, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to leave team", err)
	}
	if !removed {
		return errors.NewAppError(errors.ErrNotTeamMember, "Not a member of this team", nil)
	}

	s.invalidateCommonTimes(ctx, teamID)
	return nil
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]dto.MemberResponse, *errors.AppError) {
	team, err := s.repo.GetRecruitmentByID(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load team", err)
	}
	if team == nil {
		return nil, errors.NewAppError(errors.ErrTeamNotFound, "Team not found", nil)
	}

	members, err := s.repo.GetMembers(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list members", err)
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		result = append(result, dto.MemberResponse{UserID: m.UserID.String(), JoinedAt: m.JoinedAt})
	}
	return result, nil
}

func (s *TeamService) invalidateCommonTimes(ctx context.Context, teamID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.RedisKeyTeamCommonTimes+teamID.String()); err != nil {
		logger.Warn("TeamService:invalidateCommonTimes", "error", err)
	}
}
