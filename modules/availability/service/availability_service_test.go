package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"allmeet-api/core/constants"
	coreEntity "allmeet-api/core/entity"
	"allmeet-api/core/errors"
	"allmeet-api/core/params"
	"allmeet-api/modules/availability/dto"
	"allmeet-api/modules/availability/entity"
	"allmeet-api/modules/availability/repository"
	boardEntity "allmeet-api/modules/board/entity"
	notifDto "allmeet-api/modules/notification/dto"
	teamEntity "allmeet-api/modules/team/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type fakeAvailabilityRepo struct {
	times       []entity.AvailableTime
	submissions map[string]bool
	snapshot    *repository.TeamSnapshot
	snapshotErr error
	memberTeams map[uuid.UUID][]uuid.UUID
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		submissions: make(map[string]bool),
		memberTeams: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeAvailabilityRepo) CreateTime(_ context.Context, t *entity.AvailableTime) error {
	f.times = append(f.times, *t)
	return nil
}

func (f *fakeAvailabilityRepo) FindDuplicate(_ context.Context, userID uuid.UUID, teamID *uuid.UUID, day, start, end string) (*entity.AvailableTime, error) {
	for i := range f.times {
		t := &f.times[i]
		sameTeam := (t.TeamID == nil && teamID == nil) ||
			(t.TeamID != nil && teamID != nil && *t.TeamID == *teamID)
		if t.UserID == userID && sameTeam && t.DayOfWeek == day && t.StartTime == start && t.EndTime == end {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeAvailabilityRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.AvailableTime, error) {
	var result []entity.AvailableTime
	for _, t := range f.times {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeAvailabilityRepo) DeleteTime(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for i, t := range f.times {
		if t.ID == id && t.UserID == userID {
			f.times = append(f.times[:i], f.times[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAvailabilityRepo) RecordSubmission(_ context.Context, teamID, userID uuid.UUID) error {
	f.submissions[teamID.String()+"/"+userID.String()] = true
	return nil
}

func (f *fakeAvailabilityRepo) GetTeamSnapshot(_ context.Context, _ uuid.UUID) (*repository.TeamSnapshot, error) {
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeAvailabilityRepo) ListMemberTeamIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.memberTeams[userID], nil
}

type fakeTeamRepo struct {
	team    *teamEntity.TeamRecruitment
	members map[uuid.UUID]bool
}

func (f *fakeTeamRepo) CreateRecruitment(context.Context, *teamEntity.TeamRecruitment) error { return nil }
func (f *fakeTeamRepo) GetRecruitmentByID(_ context.Context, id uuid.UUID) (*teamEntity.TeamRecruitment, error) {
	if f.team != nil && f.team.ID == id {
		return f.team, nil
	}
	return nil, nil
}
func (f *fakeTeamRepo) ListByCourse(context.Context, string) ([]teamEntity.TeamRecruitment, error) {
	return nil, nil
}
func (f *fakeTeamRepo) AddMember(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakeTeamRepo) RemoveMember(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeTeamRepo) IsMember(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	return f.members[userID], nil
}
func (f *fakeTeamRepo) GetMembers(context.Context, uuid.UUID) ([]teamEntity.TeamMember, error) {
	return nil, nil
}
func (f *fakeTeamRepo) CountMembers(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (f *fakeTeamRepo) ActivateBoard(context.Context, uuid.UUID) error       { return nil }

type fakePostRepo struct {
	existingID *uuid.UUID
	createErr  error
	created    *boardEntity.Post
	poll       *boardEntity.Poll
	options    []boardEntity.PollOption
}

func (f *fakePostRepo) FindArtifact(context.Context, string, string, string, string) (*uuid.UUID, error) {
	return f.existingID, nil
}

func (f *fakePostRepo) CreateArtifact(_ context.Context, post *boardEntity.Post, poll *boardEntity.Poll, options []boardEntity.PollOption) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = post
	f.poll = poll
	f.options = options
	id := post.ID
	f.existingID = &id
	return nil
}

func (f *fakePostRepo) GetPostByID(context.Context, uuid.UUID) (*boardEntity.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) ListPosts(context.Context, string, string, params.QueryParams) (*boardEntity.PaginatedPostEntity, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent []notifDto.CreateNotificationRequest
}

func (f *fakeNotifier) Enqueue(_ context.Context, req *notifDto.CreateNotificationRequest) error {
	f.sent = append(f.sent, *req)
	return nil
}

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := f.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.store, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeCache) deletedKey(key string) bool {
	for _, k := range f.deleted {
		if k == key {
			return true
		}
	}
	return false
}

type fixture struct {
	svc      AvailabilityServiceInterface
	repo     *fakeAvailabilityRepo
	teams    *fakeTeamRepo
	posts    *fakePostRepo
	notifier *fakeNotifier
	cache    *fakeCache
	team     *teamEntity.TeamRecruitment
	members  []uuid.UUID
}

// newFixture builds a three-member team whose snapshot the fake repo serves.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	members := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	team := &teamEntity.TeamRecruitment{
		CourseID:      "CS-301",
		AuthorID:      members[0],
		Title:         "Project group",
		TeamBoardName: "Team Rocket",
		MaxMembers:    3,
		BaseEntity:    coreEntity.NewBaseEntity(),
	}

	repo := newFakeAvailabilityRepo()
	repo.snapshot = &repository.TeamSnapshot{
		MemberIDs:      members,
		SubmittedIDs:   make(map[uuid.UUID]struct{}),
		GeneralEntries: make(map[uuid.UUID][]entity.AvailableTime),
		TeamEntries:    make(map[uuid.UUID][]entity.AvailableTime),
	}

	teams := &fakeTeamRepo{team: team, members: map[uuid.UUID]bool{}}
	for _, m := range members {
		teams.members[m] = true
		repo.memberTeams[m] = []uuid.UUID{team.ID}
	}

	posts := &fakePostRepo{}
	notifier := &fakeNotifier{}
	c := newFakeCache()

	return &fixture{
		svc:      NewAvailabilityService(repo, teams, posts, notifier, c),
		repo:     repo,
		teams:    teams,
		posts:    posts,
		notifier: notifier,
		cache:    c,
		team:     team,
		members:  members,
	}
}

func (fx *fixture) markSubmitted(members ...uuid.UUID) {
	for _, m := range members {
		fx.repo.snapshot.SubmittedIDs[m] = struct{}{}
	}
}

func (fx *fixture) addGeneral(member uuid.UUID, day, start, end string) {
	fx.repo.snapshot.GeneralEntries[member] = append(fx.repo.snapshot.GeneralEntries[member],
		entity.AvailableTime{UserID: member, DayOfWeek: day, StartTime: start, EndTime: end})
}

func (fx *fixture) addTeamScoped(member uuid.UUID, day, start, end string) {
	teamID := fx.team.ID
	fx.repo.snapshot.TeamEntries[member] = append(fx.repo.snapshot.TeamEntries[member],
		entity.AvailableTime{UserID: member, TeamID: &teamID, DayOfWeek: day, StartTime: start, EndTime: end})
}

func teamIDString(fx *fixture) *string {
	s := fx.team.ID.String()
	return &s
}

func TestAddTimeValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	cases := []dto.AddTimeRequest{
		{DayOfWeek: "Funday", StartTime: "10:00", EndTime: "12:00"},
		{DayOfWeek: "Monday", StartTime: "banana", EndTime: "12:00"},
		{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "oops"},
		{DayOfWeek: "Monday", StartTime: "12:00", EndTime: "10:00"},
		{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "10:00"},
	}
	for _, req := range cases {
		_, appErr := fx.svc.AddTime(ctx, fx.members[0], &req)
		if appErr == nil || appErr.Code != errors.ErrInvalidInput {
			t.Errorf("AddTime(%+v): expected invalid input, got %v", req, appErr)
		}
	}
}

func TestAddTimeGeneralScope(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	req := &dto.AddTimeRequest{DayOfWeek: "Monday", StartTime: "14:00", EndTime: "16:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if !resp.Created {
		t.Error("expected entry to be created")
	}
	if resp.AutoPost != nil {
		t.Error("general-scope submission must not trigger auto-recommendation")
	}
	if len(fx.repo.times) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(fx.repo.times))
	}
}

func TestAddTimeDuplicate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	req := &dto.AddTimeRequest{DayOfWeek: "Monday", StartTime: "14:00", EndTime: "16:00"}
	if _, appErr := fx.svc.AddTime(ctx, fx.members[0], req); appErr != nil {
		t.Fatalf("first AddTime: %v", appErr)
	}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("second AddTime: %v", appErr)
	}
	if resp.Created {
		t.Error("duplicate entry should not be created again")
	}
	if len(fx.repo.times) != 1 {
		t.Errorf("expected 1 stored entry, got %d", len(fx.repo.times))
	}
}

func TestAddTimeTeamScopeRequiresMembership(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	outsider := uuid.New()

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Monday", StartTime: "14:00", EndTime: "16:00"}
	_, appErr := fx.svc.AddTime(ctx, outsider, req)
	if appErr == nil || appErr.Code != errors.ErrNotTeamMember {
		t.Fatalf("expected NOT_TEAM_MEMBER, got %v", appErr)
	}

	unknownTeam := uuid.New().String()
	req.TeamID = &unknownTeam
	_, appErr = fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr == nil || appErr.Code != errors.ErrTeamNotFound {
		t.Fatalf("expected TEAM_NOT_FOUND, got %v", appErr)
	}
}

func TestAddTimeNotReadyUntilEveryoneSubmits(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// Only the submitter will be marked; two members are still missing.
	fx.markSubmitted(fx.members[0])

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Monday", StartTime: "14:00", EndTime: "16:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost == nil {
		t.Fatal("team-scope submission should report auto-post status")
	}
	if resp.AutoPost.Status != dto.AutoPostNotReady {
		t.Errorf("expected not_ready, got %s", resp.AutoPost.Status)
	}
	if fx.posts.created != nil {
		t.Error("no artifact should be minted before everyone submits")
	}
	if !fx.repo.submissions[fx.team.ID.String()+"/"+fx.members[0].String()] {
		t.Error("submission should be recorded even when the gate is not met")
	}
}

func TestAddTimeCreatesArtifactWhenComplete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	for _, m := range fx.members {
		fx.addTeamScoped(m, "Wednesday", "18:00", "21:00")
	}

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[2], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost == nil || resp.AutoPost.Status != dto.AutoPostCreated {
		t.Fatalf("expected created, got %+v", resp.AutoPost)
	}
	if resp.AutoPost.PostID == nil {
		t.Fatal("created result must carry the post id")
	}
	if len(resp.AutoPost.Windows) != 1 {
		t.Fatalf("expected one recommended window, got %v", resp.AutoPost.Windows)
	}
	w := resp.AutoPost.Windows[0]
	if w.DayOfWeek != "Wednesday" || w.StartTime != "18:00" || w.EndTime != "21:00" {
		t.Errorf("unexpected window: %+v", w)
	}

	post := fx.posts.created
	if post == nil {
		t.Fatal("artifact not stored")
	}
	if post.AuthorType != constants.AuthorTypeSystem {
		t.Errorf("artifact author type = %q", post.AuthorType)
	}
	if post.AuthorID.String() != constants.SystemActorID {
		t.Errorf("artifact author id = %s", post.AuthorID)
	}
	if post.Category != constants.PostCategoryTeam {
		t.Errorf("artifact category = %q", post.Category)
	}
	if post.Title != "Auto-recommend: Team Rocket meeting time suggestion" {
		t.Errorf("artifact title = %q", post.Title)
	}
	if fx.posts.poll == nil || fx.posts.poll.PostID != post.ID {
		t.Error("poll missing or detached from post")
	}
	if len(fx.posts.options) != 1 {
		t.Errorf("expected one poll option, got %d", len(fx.posts.options))
	}

	if len(fx.notifier.sent) != len(fx.members) {
		t.Errorf("expected %d notifications, got %d", len(fx.members), len(fx.notifier.sent))
	}
	for _, n := range fx.notifier.sent {
		if n.Type != constants.NotificationTypeTeamPost {
			t.Errorf("notification type = %q", n.Type)
		}
	}
}

func TestAddTimeIdempotentArtifact(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	for _, m := range fx.members {
		fx.addTeamScoped(m, "Wednesday", "18:00", "21:00")
	}

	first := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00"}
	resp1, appErr := fx.svc.AddTime(ctx, fx.members[0], first)
	if appErr != nil {
		t.Fatalf("first AddTime: %v", appErr)
	}
	if resp1.AutoPost.Status != dto.AutoPostCreated {
		t.Fatalf("expected created, got %s", resp1.AutoPost.Status)
	}

	second := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Thursday", StartTime: "10:00", EndTime: "13:00"}
	resp2, appErr := fx.svc.AddTime(ctx, fx.members[1], second)
	if appErr != nil {
		t.Fatalf("second AddTime: %v", appErr)
	}
	if resp2.AutoPost.Status != dto.AutoPostAlreadyExists {
		t.Errorf("expected already_exists, got %s", resp2.AutoPost.Status)
	}
	if resp2.AutoPost.PostID == nil || *resp2.AutoPost.PostID != *resp1.AutoPost.PostID {
		t.Error("already_exists should point at the original post")
	}
}

func TestAddTimeNoCommonWindow(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	// Everyone free, but on different days.
	fx.addTeamScoped(fx.members[0], "Monday", "09:00", "18:00")
	fx.addTeamScoped(fx.members[1], "Tuesday", "09:00", "18:00")
	fx.addTeamScoped(fx.members[2], "Wednesday", "09:00", "18:00")

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Monday", StartTime: "09:00", EndTime: "18:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostNoCommonWindow {
		t.Errorf("expected no_common_window, got %s", resp.AutoPost.Status)
	}
	if fx.posts.created != nil {
		t.Error("no artifact should be minted without a common window")
	}
}

func TestAddTimeShortOverlapBelowThreshold(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	// 90 minutes of overlap; the default minimum is 120.
	fx.addTeamScoped(fx.members[0], "Friday", "14:00", "15:30")
	fx.addTeamScoped(fx.members[1], "Friday", "14:00", "16:00")
	fx.addTeamScoped(fx.members[2], "Friday", "13:00", "15:30")

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Friday", StartTime: "14:00", EndTime: "15:30"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostNoCommonWindow {
		t.Errorf("expected no_common_window for 90m overlap, got %s", resp.AutoPost.Status)
	}
}

func TestAddTimeArtifactRaceFallsBackToExisting(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	for _, m := range fx.members {
		fx.addTeamScoped(m, "Wednesday", "18:00", "21:00")
	}

	// Simulate losing the insert race: the unique index rejects the write and
	// a re-read finds the winner's post.
	winner := uuid.New()
	fx.posts.createErr = &pq.Error{Code: "23505"}
	raceRepo := &raceLosingPostRepo{fakePostRepo: fx.posts, afterRace: &winner}
	fx.svc = NewAvailabilityService(fx.repo, fx.teams, raceRepo, fx.notifier, fx.cache)

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostAlreadyExists {
		t.Errorf("expected already_exists after losing the race, got %s", resp.AutoPost.Status)
	}
	if resp.AutoPost.PostID == nil || *resp.AutoPost.PostID != winner.String() {
		t.Error("expected the winner's post id")
	}
}

// raceLosingPostRepo returns no artifact on the first lookup and the winner's
// id afterwards, mimicking a concurrent writer landing in between.
type raceLosingPostRepo struct {
	*fakePostRepo
	afterRace *uuid.UUID
	looked    bool
}

func (r *raceLosingPostRepo) FindArtifact(ctx context.Context, courseID, category, boardName, title string) (*uuid.UUID, error) {
	if !r.looked {
		r.looked = true
		return nil, nil
	}
	return r.afterRace, nil
}

func TestAddTimeArtifactFailureDoesNotFailSubmission(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	for _, m := range fx.members {
		fx.addTeamScoped(m, "Wednesday", "18:00", "21:00")
	}
	fx.posts.createErr = context.DeadlineExceeded

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("submission must succeed despite artifact failure, got %v", appErr)
	}
	if !resp.Created {
		t.Error("entry should still be created")
	}
	if resp.AutoPost.Status != dto.AutoPostSkipped {
		t.Errorf("expected skipped, got %s", resp.AutoPost.Status)
	}
}

func TestMergePolicyIgnoresTeamEntriesOfNonSubmitters(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// members[2] has a team-scoped entry but never submitted; only their
	// general entries count, and they have none, so the intersection is empty.
	fx.markSubmitted(fx.members[0], fx.members[1])
	fx.addTeamScoped(fx.members[0], "Wednesday", "18:00", "21:00")
	fx.addTeamScoped(fx.members[1], "Wednesday", "18:00", "21:00")
	fx.addTeamScoped(fx.members[2], "Wednesday", "18:00", "21:00")

	result, appErr := fx.svc.AutoRecommend(ctx, fx.team.ID, fx.members[0])
	if appErr != nil {
		t.Fatalf("AutoRecommend: %v", appErr)
	}
	if result.Status != dto.AutoPostNoCommonWindow {
		t.Errorf("expected no_common_window, got %s", result.Status)
	}

	// Once they submit, their team entry participates and the window appears.
	fx.markSubmitted(fx.members[2])
	result, appErr = fx.svc.AutoRecommend(ctx, fx.team.ID, fx.members[0])
	if appErr != nil {
		t.Fatalf("AutoRecommend: %v", appErr)
	}
	if result.Status != dto.AutoPostCreated {
		t.Errorf("expected created, got %s", result.Status)
	}
}

func TestMergePolicyUnionsGeneralAndTeamEntries(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	// members[0] covers the window only through the union of scopes.
	fx.addGeneral(fx.members[0], "Wednesday", "18:00", "19:30")
	fx.addTeamScoped(fx.members[0], "Wednesday", "19:30", "21:00")
	fx.addTeamScoped(fx.members[1], "Wednesday", "18:00", "21:00")
	fx.addTeamScoped(fx.members[2], "Wednesday", "18:00", "21:00")

	result, appErr := fx.svc.AutoRecommend(ctx, fx.team.ID, fx.members[0])
	if appErr != nil {
		t.Fatalf("AutoRecommend: %v", appErr)
	}
	if result.Status != dto.AutoPostCreated {
		t.Fatalf("expected created, got %s", result.Status)
	}
	if len(result.Windows) != 1 || result.Windows[0].StartTime != "18:00" || result.Windows[0].EndTime != "21:00" {
		t.Errorf("unexpected windows: %v", result.Windows)
	}
}

func TestAutoRecommendSkipsGate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// Nobody submitted, but the two members with availability overlap.
	fx.addGeneral(fx.members[0], "Monday", "10:00", "14:00")
	fx.addGeneral(fx.members[1], "Monday", "10:00", "14:00")
	fx.addGeneral(fx.members[2], "Monday", "10:00", "14:00")

	result, appErr := fx.svc.AutoRecommend(ctx, fx.team.ID, fx.members[0])
	if appErr != nil {
		t.Fatalf("AutoRecommend: %v", appErr)
	}
	if result.Status != dto.AutoPostCreated {
		t.Errorf("manual trigger should ignore the submission gate, got %s", result.Status)
	}
}

func TestAutoRecommendRequiresMembership(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, appErr := fx.svc.AutoRecommend(ctx, fx.team.ID, uuid.New())
	if appErr == nil || appErr.Code != errors.ErrNotTeamMember {
		t.Fatalf("expected NOT_TEAM_MEMBER, got %v", appErr)
	}
}

func TestDeleteTime(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	req := &dto.AddTimeRequest{DayOfWeek: "Monday", StartTime: "14:00", EndTime: "16:00"}
	if _, appErr := fx.svc.AddTime(ctx, fx.members[0], req); appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	entryID := fx.repo.times[0].ID

	// Someone else's entry cannot be deleted.
	if appErr := fx.svc.DeleteTime(ctx, fx.members[1], entryID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Errorf("expected NOT_FOUND for foreign entry, got %v", appErr)
	}

	if appErr := fx.svc.DeleteTime(ctx, fx.members[0], entryID); appErr != nil {
		t.Fatalf("DeleteTime: %v", appErr)
	}
	if appErr := fx.svc.DeleteTime(ctx, fx.members[0], entryID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Errorf("expected NOT_FOUND on replay, got %v", appErr)
	}
}

func TestGetTeamCommonTimes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members[0], fx.members[1])
	fx.addTeamScoped(fx.members[0], "Thursday", "10:00", "12:00")
	fx.addTeamScoped(fx.members[1], "Thursday", "11:00", "13:00")
	fx.addGeneral(fx.members[2], "Thursday", "10:00", "13:00")

	resp, appErr := fx.svc.GetTeamCommonTimes(ctx, fx.team.ID, fx.members[0])
	if appErr != nil {
		t.Fatalf("GetTeamCommonTimes: %v", appErr)
	}
	if resp.TeamSize != 3 || len(resp.Members) != 3 {
		t.Fatalf("unexpected member listing: %+v", resp)
	}
	// Common window is 11:00-12:00.
	if len(resp.DailyBlocks) != 1 {
		t.Fatalf("expected one day of blocks, got %v", resp.DailyBlocks)
	}
	b := resp.DailyBlocks[0]
	if b.DayOfWeek != "Thursday" || b.Blocks[0].StartTime != "11:00" || b.Blocks[0].EndTime != "12:00" {
		t.Errorf("unexpected common block: %+v", b)
	}
	if len(resp.OptimalSlots) != 2 {
		t.Errorf("expected 2 optimal slots, got %v", resp.OptimalSlots)
	}
	// The 11:00 slot is held by all three members.
	if resp.SlotCounts["3-11:00"] != 3 {
		t.Errorf("slot counts = %v", resp.SlotCounts)
	}

	if _, appErr := fx.svc.GetTeamCommonTimes(ctx, fx.team.ID, uuid.New()); appErr == nil || appErr.Code != errors.ErrNotTeamMember {
		t.Errorf("expected NOT_TEAM_MEMBER for outsider, got %v", appErr)
	}
}

func TestAddTimeNormalizesClockValues(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], &dto.AddTimeRequest{
		DayOfWeek: "Monday", StartTime: "9:30", EndTime: "11:0",
	})
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if !resp.Created {
		t.Fatal("expected entry to be created")
	}
	stored := fx.repo.times[0]
	if stored.StartTime != "09:30" || stored.EndTime != "11:00" {
		t.Errorf("stored times = %s-%s, want 09:30-11:00", stored.StartTime, stored.EndTime)
	}

	// The zero-padded spelling of the same range is the same entry.
	resp, appErr = fx.svc.AddTime(ctx, fx.members[0], &dto.AddTimeRequest{
		DayOfWeek: "Monday", StartTime: "09:30", EndTime: "11:00",
	})
	if appErr != nil {
		t.Fatalf("AddTime replay: %v", appErr)
	}
	if resp.Created {
		t.Error("unpadded and padded spellings must dedupe to one row")
	}
	if len(fx.repo.times) != 1 {
		t.Errorf("expected 1 stored entry, got %d", len(fx.repo.times))
	}
}

func TestGeneralScopeWritesInvalidateTeamCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cacheKey := constants.RedisKeyTeamCommonTimes + fx.team.ID.String()

	// Warm the cache.
	fx.addGeneral(fx.members[1], "Monday", "10:00", "14:00")
	if _, appErr := fx.svc.GetTeamCommonTimes(ctx, fx.team.ID, fx.members[0]); appErr != nil {
		t.Fatalf("GetTeamCommonTimes: %v", appErr)
	}
	if _, ok := fx.cache.store[cacheKey]; !ok {
		t.Fatal("expected common times to be cached")
	}

	// A general-scope add by a member drops the team's cached payload.
	if _, appErr := fx.svc.AddTime(ctx, fx.members[0], &dto.AddTimeRequest{
		DayOfWeek: "Monday", StartTime: "10:00", EndTime: "12:00",
	}); appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if _, ok := fx.cache.store[cacheKey]; ok {
		t.Error("general-scope add must invalidate the team's cached common times")
	}
	if !fx.cache.deletedKey(cacheKey) {
		t.Error("expected a delete of the team cache key")
	}
}

func TestDeleteTimeInvalidatesTeamCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cacheKey := constants.RedisKeyTeamCommonTimes + fx.team.ID.String()

	if _, appErr := fx.svc.AddTime(ctx, fx.members[0], &dto.AddTimeRequest{
		DayOfWeek: "Monday", StartTime: "10:00", EndTime: "12:00",
	}); appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	entryID := fx.repo.times[0].ID

	if _, appErr := fx.svc.GetTeamCommonTimes(ctx, fx.team.ID, fx.members[0]); appErr != nil {
		t.Fatalf("GetTeamCommonTimes: %v", appErr)
	}
	if _, ok := fx.cache.store[cacheKey]; !ok {
		t.Fatal("expected common times to be cached")
	}

	if appErr := fx.svc.DeleteTime(ctx, fx.members[0], entryID); appErr != nil {
		t.Fatalf("DeleteTime: %v", appErr)
	}
	if _, ok := fx.cache.store[cacheKey]; ok {
		t.Error("delete must invalidate the team's cached common times")
	}
}

func TestGateReopensWhenMemberJoins(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.markSubmitted(fx.members...)
	for _, m := range fx.members {
		fx.addTeamScoped(m, "Wednesday", "18:00", "21:00")
	}

	req := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00"}
	resp, appErr := fx.svc.AddTime(ctx, fx.members[0], req)
	if appErr != nil {
		t.Fatalf("AddTime: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostCreated {
		t.Fatalf("expected created while the team is complete, got %s", resp.AutoPost.Status)
	}

	// A new member joins without having submitted: the gate closes again and
	// no further auto-post is attempted, even though an artifact exists.
	newcomer := uuid.New()
	fx.teams.members[newcomer] = true
	fx.repo.snapshot.MemberIDs = append(fx.repo.snapshot.MemberIDs, newcomer)

	later := &dto.AddTimeRequest{TeamID: teamIDString(fx), DayOfWeek: "Thursday", StartTime: "10:00", EndTime: "13:00"}
	resp, appErr = fx.svc.AddTime(ctx, fx.members[1], later)
	if appErr != nil {
		t.Fatalf("AddTime after join: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostNotReady {
		t.Errorf("expected not_ready after membership grew, got %s", resp.AutoPost.Status)
	}

	// Once the newcomer submits, completeness holds again.
	fx.markSubmitted(newcomer)
	fx.addTeamScoped(newcomer, "Wednesday", "18:00", "21:00")
	resp, appErr = fx.svc.AddTime(ctx, newcomer, &dto.AddTimeRequest{
		TeamID: teamIDString(fx), DayOfWeek: "Wednesday", StartTime: "18:00", EndTime: "21:00",
	})
	if appErr != nil {
		t.Fatalf("AddTime by newcomer: %v", appErr)
	}
	if resp.AutoPost.Status != dto.AutoPostAlreadyExists {
		t.Errorf("expected already_exists once complete again, got %s", resp.AutoPost.Status)
	}
}
