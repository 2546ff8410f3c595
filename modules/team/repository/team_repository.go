package repository

import (
	"context"
	"database/sql"

	"allmeet-api/core/database"
	"allmeet-api/core/logger"
	"allmeet-api/modules/team/entity"

	"github.com/google/uuid"
)

type TeamRepositoryInterface interface {
	CreateRecruitment(ctx context.Context, team *entity.TeamRecruitment) error
	GetRecruitmentByID(ctx context.Context, id uuid.UUID) (*entity.TeamRecruitment, error)
	ListByCourse(ctx context.Context, courseID string) ([]entity.TeamRecruitment, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]entity.TeamMember, error)
	CountMembers(ctx context.Context, teamID uuid.UUID) (int, error)
	ActivateBoard(ctx context.Context, teamID uuid.UUID) error
}

type TeamRepository struct {
	db database.IDatabase
}

func NewTeamRepository(db database.IDatabase) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) CreateRecruitment(ctx context.Context, team *entity.TeamRecruitment) error {
	query := `
		INSERT INTO team_recruitments
			(id, course_id, author_id, title, description, team_board_name, board_slug, max_members, is_board_activated, created_at, updated_at)
		VALUES
			(:id, :course_id, :author_id, :title, :description, :team_board_name, :board_slug, :max_members, :is_board_activated, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, team)
	if err != nil {
		logger.Error("TeamRepository:CreateRecruitment", err)
		return err
	}
	return nil
}

func (r *TeamRepository) GetRecruitmentByID(ctx context.Context, id uuid.UUID) (*entity.TeamRecruitment, error) {
	query := `
		SELECT id, course_id, author_id, title, description, team_board_name, board_slug,
		       max_members, is_board_activated, created_at, updated_at
		FROM team_recruitments WHERE id = $1
	`

	var team entity.TeamRecruitment
	err := r.db.GetContext(ctx, &team, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("TeamRepository:GetRecruitmentByID", err)
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) ListByCourse(ctx context.Context, courseID string) ([]entity.TeamRecruitment, error) {
	query := `
		SELECT id, course_id, author_id, title, description, team_board_name, board_slug,
		       max_members, is_board_activated, created_at, updated_at
		FROM team_recruitments
		WHERE course_id = $1
		ORDER BY created_at DESC
	`

	var teams []entity.TeamRecruitment
	err := r.db.SelectContext(ctx, &teams, query, courseID)
	if err != nil {
		logger.Error("TeamRepository:ListByCourse", err)
		return nil, err
	}
	return teams, nil
}

// AddMember inserts the membership pair; a replayed join is a no-op.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `
		INSERT INTO team_recruitment_members (team_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (team_id, user_id) DO NOTHING
	`
	err := r.db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		logger.Error("TeamRepository:AddMember", err)
		return err
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM team_recruitment_members WHERE team_id = $1 AND user_id = $2 RETURNING user_id`

	var removed uuid.UUID
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&removed)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Error("TeamRepository:RemoveMember", err)
		return false, err
	}
	return true, nil
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM team_recruitment_members WHERE team_id = $1 AND user_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, teamID, userID)
	if err != nil {
		logger.Error("TeamRepository:IsMember", err)
		return false, err
	}
	return exists, nil
}

func (r *TeamRepository) GetMembers(ctx context.Context, teamID uuid.UUID) ([]entity.TeamMember, error) {
	query := `
		SELECT team_id, user_id, joined_at
		FROM team_recruitment_members
		WHERE team_id = $1
		ORDER BY joined_at
	`

	var members []entity.TeamMember
	err := r.db.SelectContext(ctx, &members, query, teamID)
	if err != nil {
		logger.Error("TeamRepository:GetMembers", err)
		return nil, err
	}
	return members, nil
}

func (r *TeamRepository) CountMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_recruitment_members WHERE team_id = $1`
	err := r.db.GetContext(ctx, &count, query, teamID)
	if err != nil {
		logger.Error("TeamRepository:CountMembers", err)
		return 0, err
	}
	return count, nil
}

func (r *TeamRepository) ActivateBoard(ctx context.Context, teamID uuid.UUID) error {
	query := `UPDATE team_recruitments SET is_board_activated = true, updated_at = NOW() WHERE id = $1`
	err := r.db.ExecContext(ctx, query, teamID)
	if err != nil {
		logger.Error("TeamRepository:ActivateBoard", err)
		return err
	}
	return nil
}
