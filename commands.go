package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/handlers"
	"github.com/amirphl/leadboard/app/middleware"
	"github.com/amirphl/leadboard/app/realtime"
	"github.com/amirphl/leadboard/app/router"
	"github.com/amirphl/leadboard/app/scheduler"
	"github.com/amirphl/leadboard/app/services"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/amirphl/leadboard/migrations"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// own writes are not echoed on the change feed within this window
const recentWriteWindow = 5 * time.Second

var (
	// migrate flags
	skipChangeFeed bool
	skipSeed       bool

	// generate-data flags
	generateCount int
	generateAs    string

	// issue-token flags
	tokenUserID string
	tokenRole   string
	tokenAAL    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, realtime change feed and scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the schema, install change-feed triggers and seed sales lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

var generateDataCmd = &cobra.Command{
	Use:   "generate-data",
	Short: "Insert fake leads",
	Long: `Insert fake leads spread over the existing categories.

Examples:
  leadboard generate-data                 # 10 leads
  leadboard generate-data --count 500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerateData(cmd.Context())
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Mint an access/refresh token pair for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssueToken(cmd.Context())
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&skipChangeFeed, "skip-change-feed", false, "Do not install the change-feed triggers")
	migrateCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Do not seed the sales lookup tables")

	generateDataCmd.Flags().IntVarP(&generateCount, "count", "n", 10, "Number of leads to generate (1-1000)")
	generateDataCmd.Flags().StringVar(&generateAs, "as", "", "User id recorded in the activity log")

	issueTokenCmd.Flags().StringVar(&tokenUserID, "user", "", "User id (a random one when empty)")
	issueTokenCmd.Flags().StringVar(&tokenRole, "role", models.RoleUser, "Role claim: admin or user")
	issueTokenCmd.Flags().StringVar(&tokenAAL, "aal", models.AAL1, "Assurance level: aal1 or aal2")
}

func runServe(parent context.Context) error {
	infra, err := bootstrap()
	if err != nil {
		return err
	}
	defer infra.Close()
	cfg := infra.cfg

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stopFuncs []func()
	stopFuncs = append(stopFuncs, startCacheHealthMonitor(ctx, infra.redis, cfg.Cache.HealthInterval))

	storage, err := initializeStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	var thumbnailer services.Thumbnailer
	if cfg.Storage.FFmpegPath != "" {
		thumbnailer = services.NewFFmpegThumbnailer(cfg.Storage.FFmpegPath)
	}

	db := infra.db
	categoryRepo := repository.NewCategoryRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	logRepo := repository.NewUserActivityLogRepository(db)
	challengeRepo := repository.NewMFAChallengeRepository(db)

	writes := services.NewRecentWriteTracker(infra.kv, recentWriteWindow)
	activityFlow := businessflow.NewUserActivityLogFlow(logRepo)
	categoryFlow := businessflow.NewCategoryFlow(categoryRepo, leadRepo, activityFlow, writes)
	leadFlow := businessflow.NewLeadFlow(leadRepo, categoryRepo, activityFlow, writes, infra.kv)
	generatorFlow := businessflow.NewDataGeneratorFlow(leadRepo, categoryRepo, activityFlow, nil)
	videoFlow := businessflow.NewVideoFlow(videoRepo, categoryRepo, storage, thumbnailer, activityFlow, writes)
	userRoleFlow := businessflow.NewUserRoleFlow(repository.NewUserRoleRepository(db), infra.kv, activityFlow)
	authFlow := businessflow.NewAuthFlow(infra.tokens)
	mfaFlow := businessflow.NewMFAFlow(
		repository.NewMFAFactorRepository(db),
		challengeRepo,
		infra.tokens,
		activityFlow,
		cfg.MFA.Issuer,
		cfg.MFA.RecoveryCodeCount,
		cfg.Security.BcryptCost,
	)
	salesFlow := businessflow.NewSalesFlow(repository.NewSalesRecordRepository(db), repository.NewSalesLookupRepository(db))

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	var cachePing handlers.PingFunc
	if infra.redis != nil {
		cachePing = func(ctx context.Context) error { return infra.redis.Ping(ctx).Err() }
	}

	h := router.Handlers{
		Category: handlers.NewCategoryHandler(categoryFlow),
		Lead:     handlers.NewLeadHandler(leadFlow, generatorFlow),
		Video:    handlers.NewVideoHandler(videoFlow),
		UserLog:  handlers.NewUserLogHandler(activityFlow),
		UserRole: handlers.NewUserRoleHandler(userRoleFlow),
		Auth:     handlers.NewAuthHandler(authFlow),
		MFA:      handlers.NewMFAHandler(mfaFlow),
		Sales:    handlers.NewSalesHandler(salesFlow),
		Health:   handlers.NewHealthHandler(sqlDB.PingContext, cachePing, cfg.Deployment.Version, "leadboard-api"),
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewMaintenanceScheduler(
			businessflow.NewMaintenanceFlow(videoRepo, logRepo, challengeRepo),
			cfg.Scheduler,
		)
		if mem, ok := infra.kv.(*services.MemoryStore); ok {
			sched.WithStoreSweep(mem)
		}
		stopScheduler, err := sched.Start(ctx)
		if err != nil {
			return err
		}
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	var stopRealtime func()
	if cfg.Realtime.Enabled {
		hub := realtime.NewHub(cfg.Realtime.SubscriberBuffer, writes)
		listener := realtime.NewListener(realtime.PgxConnector(cfg.Database.DSN()), hub, cfg.Realtime.ReconnectBackoff)

		listenCtx, cancelListen := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := listener.Run(listenCtx); err != nil {
				logrus.WithError(err).Error("change feed listener stopped")
			}
		}()
		stopRealtime = func() {
			cancelListen()
			<-done
			hub.Close()
		}
		h.Realtime = handlers.NewRealtimeHandler(hub, cfg.Realtime.HeartbeatEvery)
		logrus.Info("realtime change feed enabled")
	}

	appRouter := router.NewFiberRouter(cfg, h, middleware.NewAuthMiddleware(infra.tokens, userRoleFlow), infra.accessLog)
	appRouter.SetupRoutes()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- appRouter.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case <-ctx.Done():
		logrus.Info("shutting down gracefully")
	case err := <-serveErr:
		if err != nil {
			logrus.WithError(err).Error("server stopped unexpectedly")
		}
	}

	// open event streams only end once their subscriptions are closed
	if stopRealtime != nil {
		stopRealtime()
	}

	if err := appRouter.GetApp().ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logrus.WithError(err).Warn("error during shutdown")
	}

	for _, fn := range stopFuncs {
		fn()
	}

	logrus.Info("server stopped")
	return nil
}

func runMigrate(ctx context.Context) error {
	infra, err := bootstrap()
	if err != nil {
		return err
	}
	defer infra.Close()

	opts := migrations.DefaultOptions()
	opts.ChangeFeed = !skipChangeFeed
	opts.SeedLookups = !skipSeed

	if err := migrations.Run(ctx, infra.db, opts); err != nil {
		return err
	}
	logrus.Info("migration complete")
	return nil
}

func runGenerateData(ctx context.Context) error {
	infra, err := bootstrap()
	if err != nil {
		return err
	}
	defer infra.Close()

	actor := businessflow.Actor{Role: models.RoleAdmin, AAL: models.AAL1}
	if generateAs != "" {
		actor.UserID, err = uuid.Parse(generateAs)
		if err != nil {
			return fmt.Errorf("invalid --as user id: %w", err)
		}
	}

	db := infra.db
	flow := businessflow.NewDataGeneratorFlow(
		repository.NewLeadRepository(db),
		repository.NewCategoryRepository(db),
		businessflow.NewUserActivityLogFlow(repository.NewUserActivityLogRepository(db)),
		nil,
	)

	count := generateCount
	result, err := flow.GenerateLeads(ctx, actor, &dto.GenerateDataRequest{Count: &count}, businessflow.NewClientMetadata("127.0.0.1", "leadboard-cli"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runIssueToken(ctx context.Context) error {
	infra, err := bootstrap()
	if err != nil {
		return err
	}
	defer infra.Close()

	userID := uuid.New()
	if tokenUserID != "" {
		userID, err = uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user id: %w", err)
		}
	}

	pair, err := businessflow.NewAuthFlow(infra.tokens).IssueToken(ctx, userID, tokenRole, tokenAAL)
	if err != nil {
		return err
	}
	return printJSON(struct {
		UserID string `json:"user_id"`
		*dto.TokenPairResponse
	}{UserID: userID.String(), TokenPairResponse: pair})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
