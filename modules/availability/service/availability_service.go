package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"allmeet-api/core/config"
	"allmeet-api/core/constants"
	"allmeet-api/core/database"
	coreEntity "allmeet-api/core/entity"
	"allmeet-api/core/errors"
	"allmeet-api/core/logger"
	"allmeet-api/modules/availability/dto"
	"allmeet-api/modules/availability/entity"
	"allmeet-api/modules/availability/repository"
	boardEntity "allmeet-api/modules/board/entity"
	boardRepo "allmeet-api/modules/board/repository"
	notifDto "allmeet-api/modules/notification/dto"
	teamEntity "allmeet-api/modules/team/entity"
	teamRepo "allmeet-api/modules/team/repository"

	"github.com/google/uuid"
)

const defaultMinWindowMinutes = 120

// Notifier is the slice of the notification service this module needs.
type Notifier interface {
	Enqueue(ctx context.Context, req *notifDto.CreateNotificationRequest) error
}

// Cache is the slice of the redis cache this module uses for common-times
// payloads.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type AvailabilityService struct {
	repo     repository.AvailabilityRepositoryInterface
	teams    teamRepo.TeamRepositoryInterface
	posts    boardRepo.PostRepositoryInterface
	notifier Notifier
	cache    Cache
}

type AvailabilityServiceInterface interface {
	AddTime(ctx context.Context, userID uuid.UUID, req *dto.AddTimeRequest) (*dto.AddTimeResponse, *errors.AppError)
	GetMyTimes(ctx context.Context, userID uuid.UUID) ([]dto.AvailableTimeResponse, *errors.AppError)
	DeleteTime(ctx context.Context, userID, timeID uuid.UUID) *errors.AppError
	GetTeamCommonTimes(ctx context.Context, teamID, userID uuid.UUID) (*dto.TeamCommonTimesResponse, *errors.AppError)
	AutoRecommend(ctx context.Context, teamID, userID uuid.UUID) (*dto.AutoPostResult, *errors.AppError)
}

func NewAvailabilityService(
	repo repository.AvailabilityRepositoryInterface,
	teams teamRepo.TeamRepositoryInterface,
	posts boardRepo.PostRepositoryInterface,
	notifier Notifier,
	c Cache,
) AvailabilityServiceInterface {
	return &AvailabilityService{repo: repo, teams: teams, posts: posts, notifier: notifier, cache: c}
}

// AddTime records an availability entry. Team-scoped entries also record the
// submission and may trigger the auto-recommendation; whatever happens on
// that side channel is reported in the response but never fails the
// submission itself.
func (s *AvailabilityService) AddTime(ctx context.Context, userID uuid.UUID, req *dto.AddTimeRequest) (*dto.AddTimeResponse, *errors.AppError) {
	start, end, appErr := normalizeTimeRange(req.DayOfWeek, req.StartTime, req.EndTime)
	if appErr != nil {
		return nil, appErr
	}

	var teamID *uuid.UUID
	var team *teamEntity.TeamRecruitment
	if req.TeamID != nil && *req.TeamID != "" {
		parsed, err := uuid.Parse(*req.TeamID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "team_id is not a valid id", err)
		}
		teamID = &parsed

		var appErr *errors.AppError
		team, appErr = s.requireMembership(ctx, parsed, userID)
		if appErr != nil {
			return nil, appErr
		}
	}

	existing, err := s.repo.FindDuplicate(ctx, userID, teamID, req.DayOfWeek, start, end)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check existing entries", err)
	}

	created := existing == nil
	if created {
		entry := &entity.AvailableTime{
			UserID:     userID,
			TeamID:     teamID,
			DayOfWeek:  req.DayOfWeek,
			StartTime:  start,
			EndTime:    end,
			BaseEntity: coreEntity.NewBaseEntity(),
		}
		if err := s.repo.CreateTime(ctx, entry); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to save availability", err)
		}
	}

	resp := &dto.AddTimeResponse{Message: "Availability saved", Created: created}
	if !created {
		resp.Message = "Availability already recorded"
	}

	if team != nil {
		if err := s.repo.RecordSubmission(ctx, team.ID, userID); err != nil {
			logger.Error("AvailabilityService:AddTime:RecordSubmission", err)
		}
		s.invalidateCommonTimes(ctx, team.ID)
		resp.AutoPost = s.runAutoRecommend(ctx, team, true)
	} else if created {
		// General-scope entries feed every team's merge, so each team the
		// user belongs to may now compute different common times.
		s.invalidateMemberTeams(ctx, userID)
	}

	return resp, nil
}

func (s *AvailabilityService) GetMyTimes(ctx context.Context, userID uuid.UUID) ([]dto.AvailableTimeResponse, *errors.AppError) {
	times, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list availability", err)
	}

	result := make([]dto.AvailableTimeResponse, 0, len(times))
	for i := range times {
		result = append(result, dto.ToAvailableTimeResponse(&times[i]))
	}
	return result, nil
}

func (s *AvailabilityService) DeleteTime(ctx context.Context, userID, timeID uuid.UUID) *errors.AppError {
	deleted, err := s.repo.DeleteTime(ctx, timeID, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete availability", err)
	}
	if !deleted {
		return errors.NewAppError(errors.ErrNotFound, "Availability entry not found", nil)
	}
	s.invalidateMemberTeams(ctx, userID)
	return nil
}

// GetTeamCommonTimes computes the team's common availability for display.
// The result is cached; any membership or availability change invalidates it.
func (s *AvailabilityService) GetTeamCommonTimes(ctx context.Context, teamID, userID uuid.UUID) (*dto.TeamCommonTimesResponse, *errors.AppError) {
	team, appErr := s.requireMembership(ctx, teamID, userID)
	if appErr != nil {
		return nil, appErr
	}

	cacheKey := constants.RedisKeyTeamCommonTimes + teamID.String()
	if s.cache != nil {
		var cached dto.TeamCommonTimesResponse
		if found, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	snapshot, err := s.repo.GetTeamSnapshot(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load team availability", err)
	}

	memberSets := buildMemberSlotSets(snapshot)

	slotCounts := make(map[string]int)
	for _, set := range memberSets {
		for key := range set {
			slotCounts[key.String()]++
		}
	}

	common := IntersectSlotSets(memberSets)
	blocks := BuildDailyBlocks(common)

	members := make([]dto.MemberTimes, 0, len(snapshot.MemberIDs))
	for i, memberID := range snapshot.MemberIDs {
		entries := memberEntries(snapshot, memberID)
		times := make([]dto.AvailableTimeResponse, 0, len(entries))
		for j := range entries {
			times = append(times, dto.ToAvailableTimeResponse(&entries[j]))
		}
		members = append(members, dto.MemberTimes{
			UserID:    memberID.String(),
			Submitted: snapshot.HasSubmitted(memberID),
			SlotCount: len(memberSets[i]),
			Times:     times,
		})
	}

	resp := &dto.TeamCommonTimesResponse{
		TeamID:        team.ID.String(),
		TeamBoardName: team.TeamBoardName,
		CourseID:      team.CourseID,
		TeamSize:      len(snapshot.MemberIDs),
		Members:       members,
		OptimalSlots:  SortedSlotStrings(common),
		SlotCounts:    slotCounts,
		DailyBlocks:   blocks,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, resp, constants.TeamCommonTimesTTL); err != nil {
			logger.Warn("AvailabilityService:GetTeamCommonTimes:CacheSet", "error", err)
		}
	}
	return resp, nil
}

// AutoRecommend runs the recommendation pipeline on demand, skipping the
// all-members-submitted gate. Members can force a recommendation from
// whatever availability is already in.
func (s *AvailabilityService) AutoRecommend(ctx context.Context, teamID, userID uuid.UUID) (*dto.AutoPostResult, *errors.AppError) {
	team, appErr := s.requireMembership(ctx, teamID, userID)
	if appErr != nil {
		return nil, appErr
	}
	return s.runAutoRecommend(ctx, team, false), nil
}

// runAutoRecommend executes the pipeline: gate (optional), idempotency check,
// slot construction, intersection, block assembly, window filter, artifact
// mint, member fan-out. It never returns an error; failures degrade to a
// skipped status so the caller's own operation is unaffected.
func (s *AvailabilityService) runAutoRecommend(ctx context.Context, team *teamEntity.TeamRecruitment, requireGate bool) *dto.AutoPostResult {
	result := &dto.AutoPostResult{
		TeamID:        team.ID.String(),
		TeamBoardName: team.TeamBoardName,
	}

	snapshot, err := s.repo.GetTeamSnapshot(ctx, team.ID)
	if err != nil {
		logger.Error("AvailabilityService:runAutoRecommend:Snapshot", err)
		result.Status = dto.AutoPostSkipped
		return result
	}

	if requireGate && !snapshot.AllMembersSubmitted() {
		result.Status = dto.AutoPostNotReady
		return result
	}

	title := artifactTitle(team.TeamBoardName)
	existingID, err := s.posts.FindArtifact(ctx, team.CourseID, constants.PostCategoryTeam, team.TeamBoardName, title)
	if err != nil {
		logger.Error("AvailabilityService:runAutoRecommend:FindArtifact", err)
		result.Status = dto.AutoPostSkipped
		return result
	}
	if existingID != nil {
		id := existingID.String()
		result.Status = dto.AutoPostAlreadyExists
		result.PostID = &id
		return result
	}

	common := IntersectSlotSets(buildMemberSlotSets(snapshot))
	windows := FindContinuousWindows(BuildDailyBlocks(common), minWindowMinutes())
	if len(windows) == 0 {
		result.Status = dto.AutoPostNoCommonWindow
		return result
	}
	result.Windows = windows

	postID, err := s.mintArtifact(ctx, team, title, windows)
	if err != nil {
		if database.IsUniqueViolation(err) {
			// Lost the race to a concurrent run; the other writer's post is
			// the artifact.
			if raceID, findErr := s.posts.FindArtifact(ctx, team.CourseID, constants.PostCategoryTeam, team.TeamBoardName, title); findErr == nil && raceID != nil {
				id := raceID.String()
				result.Status = dto.AutoPostAlreadyExists
				result.PostID = &id
				return result
			}
		}
		logger.Error("AvailabilityService:runAutoRecommend:CreateArtifact", err)
		result.Status = dto.AutoPostSkipped
		return result
	}

	id := postID.String()
	result.Status = dto.AutoPostCreated
	result.PostID = &id

	s.notifyMembers(ctx, team, snapshot.MemberIDs, postID)
	s.invalidateCommonTimes(ctx, team.ID)
	return result
}

// mintArtifact assembles the post, poll and one poll option per window, and
// writes them in one transaction under the system actor.
func (s *AvailabilityService) mintArtifact(ctx context.Context, team *teamEntity.TeamRecruitment, title string, windows []entity.RecommendedWindow) (uuid.UUID, error) {
	boardName := team.TeamBoardName
	post := &boardEntity.Post{
		CourseID:      team.CourseID,
		AuthorID:      uuid.MustParse(constants.SystemActorID),
		AuthorType:    constants.AuthorTypeSystem,
		Title:         title,
		Content:       renderArtifactContent(team.TeamBoardName, windows),
		Category:      constants.PostCategoryTeam,
		TeamBoardName: &boardName,
		BaseEntity:    coreEntity.NewBaseEntity(),
	}

	poll := &boardEntity.Poll{
		PostID:     post.ID,
		Question:   "When should we meet?",
		BaseEntity: coreEntity.NewBaseEntity(),
	}

	options := make([]boardEntity.PollOption, 0, len(windows))
	for _, w := range windows {
		options = append(options, boardEntity.PollOption{
			PollID:     poll.ID,
			Text:       fmt.Sprintf("%s %s - %s (%s)", w.DayOfWeek, w.StartTime, w.EndTime, FormatDuration(w.DurationMinutes)),
			BaseEntity: coreEntity.NewBaseEntity(),
		})
	}

	if err := s.posts.CreateArtifact(ctx, post, poll, options); err != nil {
		return uuid.Nil, err
	}
	return post.ID, nil
}

func (s *AvailabilityService) notifyMembers(ctx context.Context, team *teamEntity.TeamRecruitment, memberIDs []uuid.UUID, postID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	courseID := team.CourseID
	for _, memberID := range memberIDs {
		err := s.notifier.Enqueue(ctx, &notifDto.CreateNotificationRequest{
			UserID:        memberID,
			Type:          constants.NotificationTypeTeamPost,
			Content:       fmt.Sprintf("%s posted a meeting time suggestion for team %s", constants.SystemActorName, team.TeamBoardName),
			RelatedPostID: &postID,
			CourseID:      &courseID,
		})
		if err != nil {
			logger.Warn("AvailabilityService:notifyMembers", "error", err, "user_id", memberID.String())
		}
	}
}

func (s *AvailabilityService) requireMembership(ctx context.Context, teamID, userID uuid.UUID) (*teamEntity.TeamRecruitment, *errors.AppError) {
	team, err := s.teams.GetRecruitmentByID(ctx, teamID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load team", err)
	}
	if team == nil {
		return nil, errors.NewAppError(errors.ErrTeamNotFound, "Team not found", nil)
	}

	isMember, err := s.teams.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check membership", err)
	}
	if !isMember {
		return nil, errors.NewAppError(errors.ErrNotTeamMember, "Not a member of this team", nil)
	}
	return team, nil
}

func (s *AvailabilityService) invalidateCommonTimes(ctx context.Context, teamID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.RedisKeyTeamCommonTimes+teamID.String()); err != nil {
		logger.Warn("AvailabilityService:invalidateCommonTimes", "error", err)
	}
}

// invalidateMemberTeams drops the cached common times of every team the user
// belongs to. Used for general-scope writes and deletes, where the affected
// teams are not named by the entry itself.
func (s *AvailabilityService) invalidateMemberTeams(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	teamIDs, err := s.repo.ListMemberTeamIDs(ctx, userID)
	if err != nil {
		logger.Warn("AvailabilityService:invalidateMemberTeams", "error", err)
		return
	}
	for _, teamID := range teamIDs {
		s.invalidateCommonTimes(ctx, teamID)
	}
}

// buildMemberSlotSets produces one slot set per member, in MemberIDs order.
// Members who have submitted on the team board contribute their general and
// team-scoped entries merged; everyone else contributes general entries only,
// so a stale team entry from a board they left does not leak in.
func buildMemberSlotSets(snapshot *repository.TeamSnapshot) []entity.SlotSet {
	sets := make([]entity.SlotSet, 0, len(snapshot.MemberIDs))
	for _, memberID := range snapshot.MemberIDs {
		sets = append(sets, BuildTimeSlots(memberEntries(snapshot, memberID)))
	}
	return sets
}

func memberEntries(snapshot *repository.TeamSnapshot, memberID uuid.UUID) []entity.AvailableTime {
	entries := snapshot.GeneralEntries[memberID]
	if snapshot.HasSubmitted(memberID) {
		entries = append(entries[:len(entries):len(entries)], snapshot.TeamEntries[memberID]...)
	}
	return entries
}

// normalizeTimeRange validates the range and returns both clock values in
// canonical zero-padded form, so "9:30" and "09:30" land on the same stored
// row.
func normalizeTimeRange(day, start, end string) (string, string, *errors.AppError) {
	if DayIndex(day) < 0 {
		return "", "", errors.NewAppError(errors.ErrInvalidInput, "day_of_week must be an English weekday name", nil)
	}
	startMin, err := ParseClock(start)
	if err != nil {
		return "", "", errors.NewAppError(errors.ErrInvalidInput, "start_time must be HH:MM", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return "", "", errors.NewAppError(errors.ErrInvalidInput, "end_time must be HH:MM", err)
	}
	if startMin >= endMin {
		return "", "", errors.NewAppError(errors.ErrInvalidInput, "start_time must be before end_time", nil)
	}
	return FormatClock(startMin), FormatClock(endMin), nil
}

func minWindowMinutes() int {
	if cfg, ok := config.GetSafe(); ok && cfg.Scheduler.MinWindowMinutes > 0 {
		return cfg.Scheduler.MinWindowMinutes
	}
	return defaultMinWindowMinutes
}

func artifactTitle(teamBoardName string) string {
	return fmt.Sprintf("Auto-recommend: %s meeting time suggestion", teamBoardName)
}

func renderArtifactContent(teamBoardName string, windows []entity.RecommendedWindow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Every member of team %s has submitted their availability.\n", teamBoardName)
	b.WriteString("These continuous time windows work for everyone:\n\n")
	for _, w := range windows {
		fmt.Fprintf(&b, "- %s %s - %s (%s)\n", w.DayOfWeek, w.StartTime, w.EndTime, FormatDuration(w.DurationMinutes))
	}
	b.WriteString("\nVote for the slot that suits you best in the attached poll.")
	return b.String()
}
