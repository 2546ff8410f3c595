package repository

import (
	"context"
	"database/sql"

	"allmeet-api/core/database"
	"allmeet-api/core/logger"
	"allmeet-api/modules/availability/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TeamSnapshot is a consistent read of everything one orchestrator run needs:
// current members, who has submitted, and every member's availability entries
// split by scope. Taken in a single transaction so completeness is never
// evaluated against a membership list that changed mid-computation.
type TeamSnapshot struct {
	MemberIDs      []uuid.UUID
	SubmittedIDs   map[uuid.UUID]struct{}
	GeneralEntries map[uuid.UUID][]entity.AvailableTime
	TeamEntries    map[uuid.UUID][]entity.AvailableTime
}

// HasSubmitted reports whether the member holds a submission record.
func (s *TeamSnapshot) HasSubmitted(userID uuid.UUID) bool {
	_, ok := s.SubmittedIDs[userID]
	return ok
}

// AllMembersSubmitted is the completeness gate: true iff the team has at
// least one member and every current member holds a submission record.
func (s *TeamSnapshot) AllMembersSubmitted() bool {
	if len(s.MemberIDs) == 0 {
		return false
	}
	for _, id := range s.MemberIDs {
		if !s.HasSubmitted(id) {
			return false
		}
	}
	return true
}

type AvailabilityRepositoryInterface interface {
	CreateTime(ctx context.Context, t *entity.AvailableTime) error
	FindDuplicate(ctx context.Context, userID uuid.UUID, teamID *uuid.UUID, day, start, end string) (*entity.AvailableTime, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.AvailableTime, error)
	DeleteTime(ctx context.Context, id, userID uuid.UUID) (bool, error)
	RecordSubmission(ctx context.Context, teamID, userID uuid.UUID) error
	GetTeamSnapshot(ctx context.Context, teamID uuid.UUID) (*TeamSnapshot, error)
	ListMemberTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type AvailabilityRepository struct {
	db database.IDatabase
}

func NewAvailabilityRepository(db database.IDatabase) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) CreateTime(ctx context.Context, t *entity.AvailableTime) error {
	query := `
		INSERT INTO available_times (id, user_id, team_id, day_of_week, start_time, end_time, created_at, updated_at)
		VALUES (:id, :user_id, :team_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		logger.Error("AvailabilityRepository:CreateTime", err)
		return err
	}
	return nil
}

func (r *AvailabilityRepository) FindDuplicate(ctx context.Context, userID uuid.UUID, teamID *uuid.UUID, day, start, end string) (*entity.AvailableTime, error) {
	query := `
		SELECT id, user_id, team_id, day_of_week, start_time, end_time, created_at, updated_at
		FROM available_times
		WHERE user_id = $1
		  AND team_id IS NOT DISTINCT FROM $2
		  AND day_of_week = $3
		  AND start_time = $4
		  AND end_time = $5
	`

	var existing entity.AvailableTime
	err := r.db.GetContext(ctx, &existing, query, userID, teamID, day, start, end)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AvailabilityRepository:FindDuplicate", err)
		return nil, err
	}
	return &existing, nil
}

func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.AvailableTime, error) {
	query := `
		SELECT id, user_id, team_id, day_of_week, start_time, end_time, created_at, updated_at
		FROM available_times
		WHERE user_id = $1
		ORDER BY day_of_week, start_time
	`

	var times []entity.AvailableTime
	err := r.db.SelectContext(ctx, &times, query, userID)
	if err != nil {
		logger.Error("AvailabilityRepository:ListByUser", err)
		return nil, err
	}
	return times, nil
}

func (r *AvailabilityRepository) DeleteTime(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM available_times WHERE id = $1 AND user_id = $2 RETURNING id`

	var deleted uuid.UUID
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&deleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Error("AvailabilityRepository:DeleteTime", err)
		return false, err
	}
	return true, nil
}

// RecordSubmission inserts the (team, user) submission fact once. A replay or
// a concurrent duplicate lands on the unique pair and becomes a no-op.
func (r *AvailabilityRepository) RecordSubmission(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `
		INSERT INTO team_availability_submissions (team_id, user_id, submitted_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (team_id, user_id) DO NOTHING
	`
	err := r.db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		logger.Error("AvailabilityRepository:RecordSubmission", err)
		return err
	}
	return nil
}

// ListMemberTeamIDs returns the teams the user currently belongs to, for
// invalidating their cached common times after a general-scope change.
func (r *AvailabilityRepository) ListMemberTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT team_id FROM team_recruitment_members WHERE user_id = $1`

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		logger.Error("AvailabilityRepository:ListMemberTeamIDs", err)
		return nil, err
	}
	return ids, nil
}

func (r *AvailabilityRepository) GetTeamSnapshot(ctx context.Context, teamID uuid.UUID) (*TeamSnapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		logger.Error("AvailabilityRepository:GetTeamSnapshot:Begin", err)
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snapshot := &TeamSnapshot{
		SubmittedIDs:   make(map[uuid.UUID]struct{}),
		GeneralEntries: make(map[uuid.UUID][]entity.AvailableTime),
		TeamEntries:    make(map[uuid.UUID][]entity.AvailableTime),
	}

	err = tx.SelectContext(ctx, &snapshot.MemberIDs,
		`SELECT user_id FROM team_recruitment_members WHERE team_id = $1 ORDER BY joined_at`, teamID)
	if err != nil {
		logger.Error("AvailabilityRepository:GetTeamSnapshot:Members", err)
		return nil, err
	}
	if len(snapshot.MemberIDs) == 0 {
		return snapshot, tx.Commit()
	}

	var submittedIDs []uuid.UUID
	err = tx.SelectContext(ctx, &submittedIDs,
		`SELECT user_id FROM team_availability_submissions WHERE team_id = $1`, teamID)
	if err != nil {
		logger.Error("AvailabilityRepository:GetTeamSnapshot:Submissions", err)
		return nil, err
	}
	for _, id := range submittedIDs {
		snapshot.SubmittedIDs[id] = struct{}{}
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, team_id, day_of_week, start_time, end_time, created_at, updated_at
		FROM available_times
		WHERE user_id IN (?) AND (team_id IS NULL OR team_id = ?)
	`, snapshot.MemberIDs, teamID)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var entries []entity.AvailableTime
	if err := tx.SelectContext(ctx, &entries, query, args...); err != nil {
		logger.Error("AvailabilityRepository:GetTeamSnapshot:Entries", err)
		return nil, err
	}

	for _, e := range entries {
		if e.TeamID == nil {
			snapshot.GeneralEntries[e.UserID] = append(snapshot.GeneralEntries[e.UserID], e)
		} else {
			snapshot.TeamEntries[e.UserID] = append(snapshot.TeamEntries[e.UserID], e)
		}
	}

	return snapshot, tx.Commit()
}
