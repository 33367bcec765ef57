package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	testingutil "github.com/amirphl/leadboard/testing"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewCategoryRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	zeta, err := fixtures.CreateTestCategory("Zeta")
	require.NoError(t, err)
	alpha, err := fixtures.CreateTestCategory("Alpha")
	require.NoError(t, err)

	t.Run("ListByName", func(t *testing.T) {
		rows, err := repo.ListByName(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Alpha", rows[0].Name)
		assert.Equal(t, "Zeta", rows[1].Name)
	})

	t.Run("First", func(t *testing.T) {
		first, err := repo.First(ctx)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, alpha.ID, first.ID)
	})

	t.Run("ByIDNotFound", func(t *testing.T) {
		row, err := repo.ByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("DeleteAndDetach", func(t *testing.T) {
		lead, err := fixtures.CreateTestLead(&zeta.ID)
		require.NoError(t, err)
		video, err := fixtures.CreateTestVideo(&zeta.ID)
		require.NoError(t, err)

		deleted, err := repo.DeleteAndDetach(ctx, zeta.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		var reloadedLead models.Lead
		require.NoError(t, testDB.DB.First(&reloadedLead, "id = ?", lead.ID).Error)
		assert.Nil(t, reloadedLead.CategoryID)

		var reloadedVideo models.Video
		require.NoError(t, testDB.DB.First(&reloadedVideo, "id = ?", video.ID).Error)
		assert.Nil(t, reloadedVideo.CategoryID)

		deleted, err = repo.DeleteAndDetach(ctx, zeta.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestLeadRepository(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewLeadRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	category, err := fixtures.CreateTestCategory("Founders")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := fixtures.CreateTestLead(&category.ID)
		require.NoError(t, err)
	}
	_, err = fixtures.CreateTestLead(nil)
	require.NoError(t, err)

	t.Run("ListPage", func(t *testing.T) {
		rows, err := repo.ListPage(ctx, 3, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		for i := 1; i < len(rows); i++ {
			assert.False(t, rows[i].CreatedAt.After(rows[i-1].CreatedAt))
		}

		rows, err = repo.ListPage(ctx, 3, 3)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx, models.LeadFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		count, err = repo.Count(ctx, models.LeadFilter{CategoryID: &category.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("CountByCategory", func(t *testing.T) {
		rows, err := repo.CountByCategory(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byName := map[string]int64{}
		for _, row := range rows {
			byName[utils.Deref(row.Name)] = row.Count
		}
		assert.Equal(t, int64(3), byName["Founders"])
		assert.Equal(t, int64(1), byName[""])
	})

	t.Run("UpdateCategory", func(t *testing.T) {
		lead, err := fixtures.CreateTestLead(nil)
		require.NoError(t, err)

		before := time.Now()
		ok, err := repo.UpdateCategory(ctx, lead.ID, &category.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		reloaded, err := repo.ByIDWithCategory(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.Category)
		assert.Equal(t, "Founders", reloaded.Category.Name)
		assert.WithinDuration(t, before, reloaded.UpdatedAt, time.Minute)

		ok, err = repo.UpdateCategory(ctx, uuid.New(), nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestVideoRepositoryMarkStaleAsFailed(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewVideoRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	stale := &models.Video{
		Title: "stale", Filename: "a.mp4", Filepath: "stale.mp4", Filesize: 1, MimeType: "video/mp4",
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	fresh := &models.Video{
		Title: "fresh", Filename: "b.mp4", Filepath: "fresh.mp4", Filesize: 1, MimeType: "video/mp4",
	}
	require.NoError(t, repo.Save(ctx, stale))
	require.NoError(t, repo.Save(ctx, fresh))

	n, err := repo.MarkStaleAsFailed(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reloaded, err := repo.ByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusFailed, reloaded.UploadStatus)

	reloaded, err = repo.ByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusProcessing, reloaded.UploadStatus)
}

func TestUserActivityLogRepository(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewUserActivityLogRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	userID := uuid.New()
	now := time.Now().UTC()
	_, err := fixtures.CreateTestActivity(userID, models.ActivityCreateLead, now.Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = fixtures.CreateTestActivity(userID, models.ActivityDeleteLead, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = fixtures.CreateTestActivity(uuid.New(), models.ActivityCreateLead, now)
	require.NoError(t, err)

	t.Run("ScopedToUser", func(t *testing.T) {
		rows, err := repo.ByFilter(ctx, models.UserActivityLogFilter{UserID: &userID}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, models.ActivityDeleteLead, rows[0].Action)
	})

	t.Run("DateRange", func(t *testing.T) {
		after := now.Add(-24 * time.Hour)
		count, err := repo.Count(ctx, models.UserActivityLogFilter{UserID: &userID, CreatedAfter: &after})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ActionFilter", func(t *testing.T) {
		action := models.ActivityCreateLead
		rows, err := repo.ByFilter(ctx, models.UserActivityLogFilter{Action: &action}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, models.ActivityCreateLead, row.Action)
		}

		count, err := repo.Count(ctx, models.UserActivityLogFilter{UserID: &userID, Action: &action})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("DeleteOlderThan", func(t *testing.T) {
		n, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestUserRoleRepositoryUpsert(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewUserRoleRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()
	userID := uuid.New()

	missing, err := repo.ByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	row, err := repo.Upsert(ctx, userID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, row.Role)

	row, err = repo.Upsert(ctx, userID, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, row.Role)

	count, err := repo.Count(ctx, models.UserRoleFilter{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSalesRepositories(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	records := repository.NewSalesRecordRepository(testDB.DB)
	lookups := repository.NewSalesLookupRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	all, err := lookups.All(ctx)
	require.NoError(t, err)
	require.Len(t, all.SaleStatuses, len(models.DefaultSaleStatuses))

	// seeding twice is a no-op
	require.NoError(t, lookups.EnsureDefaults(ctx))
	again, err := lookups.All(ctx)
	require.NoError(t, err)
	assert.Len(t, again.SaleStatuses, len(models.DefaultSaleStatuses))

	statusID := all.SaleStatuses[0].ID
	ok, err := lookups.Exists(ctx, repository.LookupSaleStatus, statusID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = lookups.Exists(ctx, repository.LookupDesigner, statusID)
	require.NoError(t, err)
	assert.False(t, ok)

	record := &models.SalesRecord{
		Client:       "Acme",
		SaleStatusID: &statusID,
		EstDealValue: utils.ToPtr(1000.0),
		EstPayout:    utils.ToPtr(250.0),
	}
	record.RecomputeEarnings()
	require.NoError(t, records.Save(ctx, record))

	record.EstPayout = nil
	require.NoError(t, records.Update(ctx, record))

	reloaded, err := records.ByIDWithLookups(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.SaleStatus)
	assert.Nil(t, reloaded.EstEarnings)

	n, err := records.DeleteByIDs(ctx, []uuid.UUID{record.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMFAChallengeConsume(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	factors := repository.NewMFAFactorRepository(testDB.DB)
	challenges := repository.NewMFAChallengeRepository(testDB.DB)
	ctx := context.Background()
	userID := uuid.New()

	factor := &models.MFAFactor{UserID: userID, FactorType: models.FactorTypeTOTP, Secret: "JBSWY3DPEHPK3PXP", Status: models.FactorStatusUnverified}
	require.NoError(t, factors.Save(ctx, factor))

	now := time.Now().UTC()
	challenge := &models.MFAChallenge{FactorID: factor.ID, UserID: userID, ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, challenges.Save(ctx, challenge))

	ok, err := challenges.Consume(ctx, challenge.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = challenges.Consume(ctx, challenge.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "a challenge is single-use")

	expired := &models.MFAChallenge{FactorID: factor.ID, UserID: userID, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, challenges.Save(ctx, expired))
	n, err := challenges.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := factors.DeleteUnverifiedByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestWithTransactionRollsBack(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	repo := repository.NewCategoryRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, &models.Category{Name: "Temp", Color: "#000000"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	count, err := repo.Count(ctx, models.CategoryFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

type deferredRow struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code string
}

func (deferredRow) TableName() string { return "deferred_rows" }

func TestBaseRepositoryReportsCommitFailure(t *testing.T) {
	testDB := testingutil.SkipUnlessDB(t)
	ctx := testingutil.CreateTestContext()
	require.NoError(t, testDB.DB.Exec(`CREATE TABLE deferred_rows (
		id uuid PRIMARY KEY,
		code text NOT NULL,
		CONSTRAINT deferred_rows_code_key UNIQUE (code) DEFERRABLE INITIALLY DEFERRED
	)`).Error)
	repo := repository.NewBaseRepository[deferredRow, struct{}](testDB.DB)

	require.NoError(t, repo.Save(ctx, &deferredRow{ID: uuid.New(), Code: "a"}))

	err := repo.Save(ctx, &deferredRow{ID: uuid.New(), Code: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")

	err = repo.SaveBatch(ctx, []*deferredRow{{ID: uuid.New(), Code: "b"}, {ID: uuid.New(), Code: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")

	var count int64
	require.NoError(t, testDB.DB.Model(&deferredRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
