package businessflow

import (
	"context"
	"math"
	"testing"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryFlow(t *testing.T) {
	ctx := context.Background()
	fx := newLeadFixture()
	flow := NewCategoryFlow(fx.categories, fx.leads, fx.activity, fx.writes)

	t.Run("CreateValidates", func(t *testing.T) {
		_, err := flow.CreateCategory(ctx, fx.actor, &dto.CreateCategoryRequest{Name: "x"}, nil)
		requireCode(t, err, CodeValidation)
		be, _ := AsBusinessError(err)
		assert.Equal(t, "Name and color are required", be.Message)

		_, err = flow.CreateCategory(ctx, fx.actor, &dto.CreateCategoryRequest{Name: "x", Color: "red"}, nil)
		requireCode(t, err, CodeValidation)
	})

	var hot *models.Category
	t.Run("CreateEchoesInput", func(t *testing.T) {
		resp, err := flow.CreateCategory(ctx, fx.actor, &dto.CreateCategoryRequest{Name: "Hot", Color: "#FF0000"}, nil)
		require.NoError(t, err)
		hot = resp.Category
		assert.Equal(t, "Hot", hot.Name)
		assert.Equal(t, "#FF0000", hot.Color)
		assert.NotEqual(t, uuid.Nil, hot.ID)
	})

	t.Run("ListOrderedByName", func(t *testing.T) {
		_, err := flow.CreateCategory(ctx, fx.actor, &dto.CreateCategoryRequest{Name: "Cold", Color: "#0000FF"}, nil)
		require.NoError(t, err)

		resp, err := flow.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, resp.Categories, 2)
		assert.Equal(t, "Cold", resp.Categories[0].Name)
		assert.Equal(t, "Hot", resp.Categories[1].Name)
	})

	t.Run("Chart", func(t *testing.T) {
		require.NoError(t, fx.leads.Save(ctx, &models.Lead{Name: "a", TwitterHandle: "a", CategoryID: &hot.ID}))
		require.NoError(t, fx.leads.Save(ctx, &models.Lead{Name: "b", TwitterHandle: "b", CategoryID: &hot.ID}))
		require.NoError(t, fx.leads.Save(ctx, &models.Lead{Name: "c", TwitterHandle: "c"}))

		resp, err := flow.CategoryChart(ctx)
		require.NoError(t, err)
		assert.Equal(t, []dto.ChartEntry{
			{Name: "Hot", Value: 2, Color: "#FF0000"},
			{Name: utils.UncategorizedLabel, Value: 1, Color: utils.UncategorizedColor},
		}, resp.ChartData)
	})

	t.Run("DeleteDetachesLeads", func(t *testing.T) {
		require.NoError(t, flow.DeleteCategory(ctx, fx.actor, hot.ID.String(), nil))
		for _, l := range fx.leads.rows {
			assert.Nil(t, l.CategoryID)
		}
		assert.Contains(t, fx.activity.actions(), models.ActivityDeleteCategory)

		err := flow.DeleteCategory(ctx, fx.actor, hot.ID.String(), nil)
		requireCode(t, err, CodeCategoryNotFound)

		err = flow.DeleteCategory(ctx, fx.actor, "nope", nil)
		requireCode(t, err, CodeValidation)
	})
}

func TestUserActivityLogFlow(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLogRepo{}
	flow := NewUserActivityLogFlow(repo)
	user := Actor{UserID: uuid.New(), Role: models.RoleUser}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	t.Run("CreateRequiresAction", func(t *testing.T) {
		err := flow.CreateLog(ctx, user, &dto.CreateUserLogRequest{}, nil)
		requireCode(t, err, CodeValidation)
	})

	t.Run("CreateStoresClient", func(t *testing.T) {
		md := NewClientMetadata("10.0.0.1", "curl/8")
		require.NoError(t, flow.CreateLog(ctx, user, &dto.CreateUserLogRequest{Action: "view_page"}, md))
		require.Len(t, repo.rows, 1)
		assert.Equal(t, "10.0.0.1", *repo.rows[0].IPAddress)
		assert.Equal(t, "curl/8", *repo.rows[0].UserAgent)
		assert.Equal(t, user.UserID, repo.rows[0].UserID)
	})

	t.Run("ListIsScopedToCaller", func(t *testing.T) {
		other := uuid.NewString()
		resp, err := flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{UserID: other, Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, user.UserID, *repo.lastFilter.UserID)
		assert.Equal(t, 10, repo.lastOffset)
		assert.Equal(t, 2, resp.CurrentPage)
		assert.Equal(t, 1, resp.TotalPages)
	})

	t.Run("AdminMayOverrideUser", func(t *testing.T) {
		target := uuid.New()
		_, err := flow.ListLogs(ctx, admin, &dto.ListUserLogsRequest{UserID: target.String()})
		require.NoError(t, err)
		assert.Equal(t, target, *repo.lastFilter.UserID)
		assert.Equal(t, utils.DefaultLeadPageSize, repo.lastLimit)
		assert.Equal(t, 0, repo.lastOffset)
	})

	t.Run("ActionAndObjectTypeFilters", func(t *testing.T) {
		_, err := flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{Action: " create_lead ", ObjectType: "lead"})
		require.NoError(t, err)
		require.NotNil(t, repo.lastFilter.Action)
		assert.Equal(t, "create_lead", *repo.lastFilter.Action)
		require.NotNil(t, repo.lastFilter.ObjectType)
		assert.Equal(t, "lead", *repo.lastFilter.ObjectType)

		_, err = flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{})
		require.NoError(t, err)
		assert.Nil(t, repo.lastFilter.Action)
		assert.Nil(t, repo.lastFilter.ObjectType)
	})

	t.Run("PageOutOfRange", func(t *testing.T) {
		_, err := flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{Page: math.MaxInt, Limit: 10})
		requireCode(t, err, CodeValidation)
	})

	t.Run("DateFilters", func(t *testing.T) {
		_, err := flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{FromDate: "2025-01-01", ToDate: "2025-01-31"})
		require.NoError(t, err)
		require.NotNil(t, repo.lastFilter.CreatedAfter)
		require.NotNil(t, repo.lastFilter.CreatedBefore)
		assert.Equal(t, 31, repo.lastFilter.CreatedBefore.Day())
		assert.Equal(t, 23, repo.lastFilter.CreatedBefore.Hour())

		_, err = flow.ListLogs(ctx, user, &dto.ListUserLogsRequest{FromDate: "yesterday"})
		requireCode(t, err, CodeValidation)
	})

	t.Run("RecordIsBestEffort", func(t *testing.T) {
		before := len(repo.rows)
		flow.Record(ctx, user, models.ActivityCreateLead, models.ObjectTypeLead, "abc", map[string]any{"name": "x"}, nil)
		require.Len(t, repo.rows, before+1)
		assert.JSONEq(t, `{"name":"x"}`, string(repo.rows[before].Metadata))
	})
}
