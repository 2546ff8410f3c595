package constants

import "time"

const (
	// ContextTokenData is the echo context key holding parsed token claims.
	ContextTokenData = "token_data"

	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes

	RedisKeyTeamCommonTimes = "team:common-times:"
	RedisKeyUnreadCount     = "notification:unread:"

	TeamCommonTimesTTL = 10 * time.Minute

	// System actor used as the author of auto-generated posts. Not a user
	// row; author_type distinguishes it from real accounts.
	SystemActorID   = "00000000-0000-0000-0000-00000000b001"
	SystemActorName = "All Meet Bot"

	AuthorTypeUser   = "user"
	AuthorTypeSystem = "system"

	PostCategoryTeam = "team"

	NotificationTypeTeamPost = "team_post"
	NotificationTypeTeamJoin = "team_join"

	TaskTypeNotificationDeliver = "notification:deliver"
)
