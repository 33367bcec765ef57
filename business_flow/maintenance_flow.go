package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/sirupsen/logrus"
)

// MaintenanceFlow holds the periodic cleanup jobs run by the scheduler
type MaintenanceFlow interface {
	FailStaleUploads(ctx context.Context, olderThan time.Duration) (int64, error)
	PurgeActivityLogs(ctx context.Context, retentionDays int) (int64, error)
	PurgeExpiredChallenges(ctx context.Context) (int64, error)
}

// MaintenanceFlowImpl implements MaintenanceFlow
type MaintenanceFlowImpl struct {
	videoRepo     repository.VideoRepository
	logRepo       repository.UserActivityLogRepository
	challengeRepo repository.MFAChallengeRepository
	now           func() time.Time
}

func NewMaintenanceFlow(videoRepo repository.VideoRepository, logRepo repository.UserActivityLogRepository, challengeRepo repository.MFAChallengeRepository) MaintenanceFlow {
	return &MaintenanceFlowImpl{
		videoRepo:     videoRepo,
		logRepo:       logRepo,
		challengeRepo: challengeRepo,
		now:           utils.UTCNow,
	}
}

// FailStaleUploads marks videos still processing after olderThan as failed
func (f *MaintenanceFlowImpl) FailStaleUploads(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := f.videoRepo.MarkStaleAsFailed(ctx, f.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logrus.WithField("count", n).Warn("marked stale uploads as failed")
	}
	return n, nil
}

// PurgeActivityLogs is a no-op when retentionDays is zero or negative
func (f *MaintenanceFlowImpl) PurgeActivityLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := f.now().AddDate(0, 0, -retentionDays)
	n, err := f.logRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"count": n, "cutoff": cutoff}).Info("purged activity logs")
	return n, nil
}

func (f *MaintenanceFlowImpl) PurgeExpiredChallenges(ctx context.Context) (int64, error) {
	n, err := f.challengeRepo.DeleteExpired(ctx, f.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logrus.WithField("count", n).Debug("purged expired mfa challenges")
	}
	return n, nil
}
