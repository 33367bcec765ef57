// Package scheduler runs periodic housekeeping jobs
package scheduler

import (
	"context"
	"fmt"
	"time"

	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/amirphl/leadboard/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

type job struct {
	name string
	spec string
	run  func(ctx context.Context) (int64, error)
}

// StoreSweeper evicts expired entries from an in-process key/value store
type StoreSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// MaintenanceScheduler fails stuck uploads and purges expired rows on cron schedules
type MaintenanceScheduler struct {
	flow    businessflow.MaintenanceFlow
	cfg     config.SchedulerConfig
	cron    *cron.Cron
	logger  *logrus.Entry
	sweeper StoreSweeper
}

func NewMaintenanceScheduler(flow businessflow.MaintenanceFlow, cfg config.SchedulerConfig) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		flow:   flow,
		cfg:    cfg,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logrus.WithField("component", "scheduler"),
	}
}

// WithStoreSweep adds a job that evicts expired entries from sweeper on KVSweepSpec
func (s *MaintenanceScheduler) WithStoreSweep(sweeper StoreSweeper) *MaintenanceScheduler {
	s.sweeper = sweeper
	return s
}

func (s *MaintenanceScheduler) jobs() []job {
	jobs := []job{
		{
			name: "fail_stale_uploads",
			spec: s.cfg.StaleUploadSpec,
			run: func(ctx context.Context) (int64, error) {
				return s.flow.FailStaleUploads(ctx, s.cfg.StaleUploadAge)
			},
		},
		{
			name: "purge_expired_challenges",
			spec: s.cfg.ChallengePurgeSpec,
			run:  s.flow.PurgeExpiredChallenges,
		},
	}
	if s.cfg.LogRetentionDays > 0 {
		jobs = append(jobs, job{
			name: "purge_activity_logs",
			spec: s.cfg.LogRetentionSpec,
			run: func(ctx context.Context) (int64, error) {
				return s.flow.PurgeActivityLogs(ctx, s.cfg.LogRetentionDays)
			},
		})
	}
	if s.sweeper != nil && s.cfg.KVSweepSpec != "" {
		jobs = append(jobs, job{
			name: "sweep_kv_store",
			spec: s.cfg.KVSweepSpec,
			run:  s.sweeper.Sweep,
		})
	}
	return jobs
}

// Start registers every job and starts the cron loop. The returned func stops it and waits for running jobs.
func (s *MaintenanceScheduler) Start(parent context.Context) (func(), error) {
	ctx, cancel := context.WithCancel(parent)

	for _, j := range s.jobs() {
		if _, err := s.cron.AddFunc(j.spec, func() { s.runJob(ctx, j) }); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", j.spec, j.name, err)
		}
		s.logger.WithFields(logrus.Fields{"job": j.name, "spec": j.spec}).Info("scheduled job")
	}

	s.cron.Start()
	return func() {
		cancel()
		<-s.cron.Stop().Done()
	}, nil
}

func (s *MaintenanceScheduler) runJob(parent context.Context, j job) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	affected, err := j.run(ctx)
	entry := s.logger.WithFields(logrus.Fields{"job": j.name, "duration": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Error("job failed")
		return
	}
	entry.WithField("affected", affected).Info("job completed")
}
