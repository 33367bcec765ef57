package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (1 hour)
	AccessTokenTTL = time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// MFAChallengeTTL bounds how long a TOTP challenge can be verified
	MFAChallengeTTL = 5 * time.Minute

	// RoleCacheTTL is how long a resolved user role stays in redis
	RoleCacheTTL = 5 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Lead constants
const (
	DefaultProfileImageURL = "https://abs.twimg.com/sticky/default_profile_images/default_profile.png"

	DefaultLeadPageSize = 20
	MaxPageSize         = 100

	// MockFollowerCeiling is the exclusive upper bound for mocked follower counts
	MockFollowerCeiling = 10000

	// OfflineSyncTTL keeps temp id receipts for replayed offline writes
	OfflineSyncTTL = 24 * time.Hour
)

// Video and storage constants
const (
	VideosBucket = "videos"

	// MaxVideoSize is the per-object upload limit (100MB)
	MaxVideoSize = int64(100 * 1024 * 1024)

	DefaultDownloadFilename = "video.mp4"

	ThumbnailPrefix = "thumbnails/"
)

// Realtime constants
const (
	ChangeFeedChannel = "leadboard_changes"

	// RealtimeDedupWindow is how long a locally produced change suppresses its echo
	RealtimeDedupWindow = 5 * time.Second
)

// Chart constants
const (
	UncategorizedLabel = "Uncategorized"
	UncategorizedColor = "#CCCCCC"
)
