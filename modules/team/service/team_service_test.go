package service

import (
	"context"
	"testing"
	"time"

	"allmeet-api/core/errors"
	notifDto "allmeet-api/modules/notification/dto"
	"allmeet-api/modules/team/dto"
	"allmeet-api/modules/team/entity"

	"github.com/google/uuid"
)

type fakeTeamRepo struct {
	teams     map[uuid.UUID]*entity.TeamRecruitment
	members   map[uuid.UUID]map[uuid.UUID]time.Time
	activated map[uuid.UUID]bool
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:     make(map[uuid.UUID]*entity.TeamRecruitment),
		members:   make(map[uuid.UUID]map[uuid.UUID]time.Time),
		activated: make(map[uuid.UUID]bool),
	}
}

func (f *fakeTeamRepo) CreateRecruitment(_ context.Context, t *entity.TeamRecruitment) error {
	f.teams[t.ID] = t
	return nil
}

func (f *fakeTeamRepo) GetRecruitmentByID(_ context.Context, id uuid.UUID) (*entity.TeamRecruitment, error) {
	return f.teams[id], nil
}

func (f *fakeTeamRepo) ListByCourse(_ context.Context, courseID string) ([]entity.TeamRecruitment, error) {
	var result []entity.TeamRecruitment
	for _, t := range f.teams {
		if t.CourseID == courseID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, teamID, userID uuid.UUID) error {
	if f.members[teamID] == nil {
		f.members[teamID] = make(map[uuid.UUID]time.Time)
	}
	if _, ok := f.members[teamID][userID]; !ok {
		f.members[teamID][userID] = time.Now()
	}
	return nil
}

func (f *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID uuid.UUID) (bool, error) {
	if _, ok := f.members[teamID][userID]; !ok {
		return false, nil
	}
	delete(f.members[teamID], userID)
	return true, nil
}

func (f *fakeTeamRepo) IsMember(_ context.Context, teamID, userID uuid.UUID) (bool, error) {
	_, ok := f.members[teamID][userID]
	return ok, nil
}

func (f *fakeTeamRepo) GetMembers(_ context.Context, teamID uuid.UUID) ([]entity.TeamMember, error) {
	var result []entity.TeamMember
	for userID, joined := range f.members[teamID] {
		result = append(result, entity.TeamMember{TeamID: teamID, UserID: userID, JoinedAt: joined})
	}
	return result, nil
}

func (f *fakeTeamRepo) CountMembers(_ context.Context, teamID uuid.UUID) (int, error) {
	return len(f.members[teamID]), nil
}

func (f *fakeTeamRepo) ActivateBoard(_ context.Context, teamID uuid.UUID) error {
	f.activated[teamID] = true
	if t, ok := f.teams[teamID]; ok {
		t.IsBoardActivated = true
	}
	return nil
}

type fakeNotifier struct {
	sent []notifDto.CreateNotificationRequest
}

func (f *fakeNotifier) Enqueue(_ context.Context, req *notifDto.CreateNotificationRequest) error {
	f.sent = append(f.sent, *req)
	return nil
}

func createTeam(t *testing.T, svc TeamServiceInterface, author uuid.UUID, maxMembers int) *dto.RecruitmentResponse {
	t.Helper()
	resp, appErr := svc.CreateRecruitment(context.Background(), author, &dto.CreateRecruitmentRequest{
		CourseID:      "CS-301",
		Title:         "Project group",
		Description:   "Weekly project meetings",
		TeamBoardName: "Team Rocket",
		MaxMembers:    maxMembers,
	})
	if appErr != nil {
		t.Fatalf("CreateRecruitment: %v", appErr)
	}
	return resp
}

func TestCreateRecruitment(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(repo, nil, nil)
	author := uuid.New()

	resp := createTeam(t, svc, author, 3)
	if resp.MemberCount != 1 || !resp.IsMember {
		t.Errorf("author should be the first member: %+v", resp)
	}
	if resp.BoardSlug != "team-rocket" {
		t.Errorf("board slug = %q", resp.BoardSlug)
	}

	_, appErr := svc.CreateRecruitment(context.Background(), author, &dto.CreateRecruitmentRequest{
		CourseID: "CS-301", Title: "x", Description: "y", MaxMembers: 1,
	})
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Errorf("expected INVALID_INPUT for max_members 1, got %v", appErr)
	}
}

func TestJoinTeam(t *testing.T) {
	repo := newFakeTeamRepo()
	notifier := &fakeNotifier{}
	svc := NewTeamService(repo, notifier, nil)
	author := uuid.New()
	team := createTeam(t, svc, author, 2)
	teamID := uuid.MustParse(team.ID)

	joiner := uuid.New()
	resp, appErr := svc.JoinTeam(context.Background(), teamID, joiner)
	if appErr != nil {
		t.Fatalf("JoinTeam: %v", appErr)
	}
	if resp.MemberCount != 2 {
		t.Errorf("member count = %d", resp.MemberCount)
	}
	// Team reached capacity: the board activates.
	if !resp.IsBoardActivated {
		t.Error("board should activate when the team fills up")
	}
	// The author gets a join notification.
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != author {
		t.Errorf("expected one notification to the author, got %v", notifier.sent)
	}

	// A third member cannot join a full team.
	_, appErr = svc.JoinTeam(context.Background(), teamID, uuid.New())
	if appErr == nil || appErr.Code != errors.ErrTeamFull {
		t.Errorf("expected TEAM_FULL, got %v", appErr)
	}

	// Rejoining is a conflict.
	_, appErr = svc.JoinTeam(context.Background(), teamID, joiner)
	if appErr == nil || appErr.Code != errors.ErrAlreadyExists {
		t.Errorf("expected ALREADY_EXISTS, got %v", appErr)
	}

	// Unknown team.
	_, appErr = svc.JoinTeam(context.Background(), uuid.New(), joiner)
	if appErr == nil || appErr.Code != errors.ErrTeamNotFound {
		t.Errorf("expected TEAM_NOT_FOUND, got %v", appErr)
	}
}

func TestLeaveTeam(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(repo, nil, nil)
	author := uuid.New()
	team := createTeam(t, svc, author, 3)
	teamID := uuid.MustParse(team.ID)

	if appErr := svc.LeaveTeam(context.Background(), teamID, author); appErr != nil {
		t.Fatalf("LeaveTeam: %v", appErr)
	}
	if appErr := svc.LeaveTeam(context.Background(), teamID, author); appErr == nil || appErr.Code != errors.ErrNotTeamMember {
		t.Errorf("expected NOT_TEAM_MEMBER on replay, got %v", appErr)
	}
}
