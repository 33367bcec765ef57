package businessflow

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leadFixture struct {
	flow       LeadFlow
	leads      *fakeLeadRepo
	categories *fakeCategoryRepo
	activity   *fakeActivity
	writes     services.RecentWriteTracker
	receipts   *services.MemoryStore
	actor      Actor
}

func newLeadFixture() *leadFixture {
	c := newClock()
	categories := newFakeCategoryRepo(c)
	leads := newFakeLeadRepo(c, categories)
	activity := &fakeActivity{}
	receipts := services.NewMemoryStore()
	writes := services.NewRecentWriteTracker(services.NewMemoryStore(), utils.RealtimeDedupWindow)
	return &leadFixture{
		flow:       NewLeadFlow(leads, categories, activity, writes, receipts),
		leads:      leads,
		categories: categories,
		activity:   activity,
		writes:     writes,
		receipts:   receipts,
		actor:      Actor{UserID: uuid.New(), Role: models.RoleUser, AAL: models.AAL1},
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	be, ok := AsBusinessError(err)
	require.True(t, ok, "expected BusinessError, got %v", err)
	assert.Equal(t, code, be.Code)
}

func TestLeadFlow_ListLeads(t *testing.T) {
	fx := newLeadFixture()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, fx.leads.Save(ctx, &models.Lead{Name: fmt.Sprintf("lead-%d", i), TwitterHandle: "h"}))
	}

	t.Run("FirstPage", func(t *testing.T) {
		resp, err := fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 0, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, resp.Leads, 20)
		assert.Equal(t, "lead-24", resp.Leads[0].Name)
		assert.Equal(t, int64(25), resp.Pagination.TotalCount)
		assert.True(t, resp.Pagination.HasMore)
		assert.Equal(t, dto.Range{Start: 1, End: 20}, resp.Pagination.CurrentRange)
	})

	t.Run("LastPage", func(t *testing.T) {
		resp, err := fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, resp.Leads, 5)
		assert.False(t, resp.Pagination.HasMore)
		assert.Equal(t, dto.Range{Start: 21, End: 25}, resp.Pagination.CurrentRange)
	})

	t.Run("PastTheEnd", func(t *testing.T) {
		resp, err := fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 5, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, resp.Leads)
		assert.NotNil(t, resp.Leads)
		assert.Equal(t, dto.Range{}, resp.Pagination.CurrentRange)
		assert.False(t, resp.Pagination.HasMore)
	})

	t.Run("PageOutOfRange", func(t *testing.T) {
		_, err := fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: math.MaxInt/100 + 1, Limit: 100})
		requireCode(t, err, CodeValidation)

		_, err = fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: math.MaxInt})
		requireCode(t, err, CodeValidation)
	})

	t.Run("LimitDefaultsAndCaps", func(t *testing.T) {
		resp, err := fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{})
		require.NoError(t, err)
		assert.Len(t, resp.Leads, utils.DefaultLeadPageSize)

		resp, err = fx.flow.ListLeads(ctx, &dto.ListLeadsRequest{Limit: 1000})
		require.NoError(t, err)
		assert.Len(t, resp.Leads, 25)
	})
}

func TestLeadFlow_CreateLead(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsImage", func(t *testing.T) {
		fx := newLeadFixture()
		resp, err := fx.flow.CreateLead(ctx, fx.actor, &dto.CreateLeadRequest{Name: "Jack", TwitterHandle: "@jack"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "jack", resp.Lead.TwitterHandle)
		assert.Equal(t, utils.DefaultProfileImageURL, *resp.Lead.ProfileImageURL)
		assert.False(t, *resp.Lead.IsVerified)
		assert.Equal(t, []string{models.ActivityCreateLead}, fx.activity.actions())
		assert.True(t, fx.writes.WasRecent(ctx, fx.actor.UserID, "leads", resp.Lead.ID.String()))
	})

	t.Run("WithCategory", func(t *testing.T) {
		fx := newLeadFixture()
		cat := fx.categories.add("Hot", "#FF0000")
		id := cat.ID.String()
		resp, err := fx.flow.CreateLead(ctx, fx.actor, &dto.CreateLeadRequest{Name: "Jack", TwitterHandle: "jack", CategoryID: &id}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.Lead.Category)
		assert.Equal(t, "Hot", resp.Lead.Category.Name)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		fx := newLeadFixture()
		id := uuid.NewString()
		_, err := fx.flow.CreateLead(ctx, fx.actor, &dto.CreateLeadRequest{Name: "Jack", TwitterHandle: "jack", CategoryID: &id}, nil)
		requireCode(t, err, CodeInvalidCategory)
		assert.Empty(t, fx.leads.rows)
	})

	t.Run("MissingFields", func(t *testing.T) {
		fx := newLeadFixture()
		_, err := fx.flow.CreateLead(ctx, fx.actor, &dto.CreateLeadRequest{Name: " "}, nil)
		requireCode(t, err, CodeValidation)
	})
}

func TestLeadFlow_UpdateLead(t *testing.T) {
	ctx := context.Background()
	fx := newLeadFixture()
	cat := fx.categories.add("Warm", "#00FF00")
	lead := &models.Lead{Name: "A", TwitterHandle: "a", CategoryID: &cat.ID}
	require.NoError(t, fx.leads.Save(ctx, lead))

	t.Run("AbsentField", func(t *testing.T) {
		_, err := fx.flow.UpdateLead(ctx, fx.actor, lead.ID.String(), &dto.UpdateLeadRequest{}, nil)
		requireCode(t, err, CodeNoValidFields)
	})

	t.Run("NullClearsCategory", func(t *testing.T) {
		resp, err := fx.flow.UpdateLead(ctx, fx.actor, lead.ID.String(), &dto.UpdateLeadRequest{CategoryID: dto.Null[string]()}, nil)
		require.NoError(t, err)
		assert.Nil(t, resp.Lead.CategoryID)
		assert.Nil(t, resp.Lead.Category)
	})

	t.Run("MovesCategory", func(t *testing.T) {
		resp, err := fx.flow.UpdateLead(ctx, fx.actor, lead.ID.String(), &dto.UpdateLeadRequest{CategoryID: dto.Some(cat.ID.String())}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.Lead.Category)
		assert.Equal(t, cat.ID, resp.Lead.Category.ID)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		_, err := fx.flow.UpdateLead(ctx, fx.actor, lead.ID.String(), &dto.UpdateLeadRequest{CategoryID: dto.Some(uuid.NewString())}, nil)
		requireCode(t, err, CodeInvalidCategory)
	})

	t.Run("UnknownLead", func(t *testing.T) {
		_, err := fx.flow.UpdateLead(ctx, fx.actor, uuid.NewString(), &dto.UpdateLeadRequest{CategoryID: dto.Null[string]()}, nil)
		requireCode(t, err, CodeLeadNotFound)
	})
}

func TestLeadFlow_DeleteLead(t *testing.T) {
	ctx := context.Background()
	fx := newLeadFixture()
	lead := &models.Lead{Name: "Gone", TwitterHandle: "gone"}
	require.NoError(t, fx.leads.Save(ctx, lead))

	require.NoError(t, fx.flow.DeleteLead(ctx, fx.actor, lead.ID.String(), nil))
	assert.Empty(t, fx.leads.rows)
	require.Len(t, fx.activity.entries, 1)
	assert.Equal(t, "Gone", fx.activity.entries[0].Details["name"])

	err := fx.flow.DeleteLead(ctx, fx.actor, lead.ID.String(), nil)
	requireCode(t, err, CodeLeadNotFound)

	err = fx.flow.DeleteLead(ctx, fx.actor, "not-a-uuid", nil)
	requireCode(t, err, CodeValidation)
}

func TestParseTwitterUsername(t *testing.T) {
	valid := map[string]string{
		"https://x.com/jack":                 "jack",
		"https://twitter.com/jack/":          "jack",
		"https://www.twitter.com/@jack?s=20": "jack",
		"x.com/jack":                         "jack",
		"@jack":                              "jack",
		"jack":                               "jack",
		"https://x.com/jack/status/12345":    "12345",
	}
	for in, want := range valid {
		got, err := ParseTwitterUsername(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "@", "https://example.com/jack", "https://x.com/", "https://x.com"} {
		_, err := ParseTwitterUsername(in)
		assert.Error(t, err, in)
	}
}

func TestLeadFlow_CreateLeadFromTwitter(t *testing.T) {
	ctx := context.Background()

	t.Run("NoCategories", func(t *testing.T) {
		fx := newLeadFixture()
		_, err := fx.flow.CreateLeadFromTwitter(ctx, fx.actor, &dto.CreateLeadFromTwitterRequest{TwitterURL: "https://x.com/jack"}, nil)
		requireCode(t, err, CodeNoCategories)
	})

	t.Run("MissingURL", func(t *testing.T) {
		fx := newLeadFixture()
		_, err := fx.flow.CreateLeadFromTwitter(ctx, fx.actor, &dto.CreateLeadFromTwitterRequest{}, nil)
		requireCode(t, err, CodeValidation)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		fx := newLeadFixture()
		fx.categories.add("A", "#000000")
		_, err := fx.flow.CreateLeadFromTwitter(ctx, fx.actor, &dto.CreateLeadFromTwitterRequest{TwitterURL: "https://example.com/jack"}, nil)
		requireCode(t, err, CodeInvalidTwitterURL)
	})

	t.Run("UsesFirstCategoryByName", func(t *testing.T) {
		fx := newLeadFixture()
		fx.categories.add("Zeta", "#000000")
		alpha := fx.categories.add("Alpha", "#111111")

		resp, err := fx.flow.CreateLeadFromTwitter(ctx, fx.actor, &dto.CreateLeadFromTwitterRequest{TwitterURL: "https://twitter.com/jack"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Mock User (jack)", resp.Lead.Name)
		assert.Equal(t, "jack", resp.Lead.TwitterHandle)
		assert.Equal(t, alpha.ID, *resp.Lead.CategoryID)
		assert.GreaterOrEqual(t, resp.Lead.FollowerCount, 0)
		assert.Less(t, resp.Lead.FollowerCount, utils.MockFollowerCeiling)
		assert.NotNil(t, resp.Lead.LastPostDate)
		assert.False(t, *resp.Lead.IsVerified)
	})
}

func TestLeadFlow_SyncLeads(t *testing.T) {
	ctx := context.Background()
	fx := newLeadFixture()
	fx.categories.add("Default", "#222222")

	req := &dto.SyncLeadsRequest{Items: []dto.SyncLeadItem{
		{TempID: "t1", TwitterURL: "https://x.com/one"},
		{TempID: "t2", TwitterURL: "https://example.com/bad"},
		{TempID: "", TwitterURL: "https://x.com/three"},
	}}

	first, err := fx.flow.SyncLeads(ctx, fx.actor, req, nil)
	require.NoError(t, err)
	require.Len(t, first.Results, 3)
	assert.Equal(t, dto.SyncStatusCreated, first.Results[0].Status)
	require.NotNil(t, first.Results[0].LeadID)
	assert.Equal(t, dto.SyncStatusFailed, first.Results[1].Status)
	assert.Equal(t, "Invalid Twitter URL", first.Results[1].Error)
	assert.Equal(t, dto.SyncStatusFailed, first.Results[2].Status)
	assert.Len(t, fx.leads.rows, 1)

	t.Run("ReplayIsDuplicate", func(t *testing.T) {
		again, err := fx.flow.SyncLeads(ctx, fx.actor, &dto.SyncLeadsRequest{Items: req.Items[:1]}, nil)
		require.NoError(t, err)
		require.Len(t, again.Results, 1)
		assert.Equal(t, dto.SyncStatusDuplicate, again.Results[0].Status)
		assert.Equal(t, *first.Results[0].LeadID, *again.Results[0].LeadID)
		assert.Len(t, fx.leads.rows, 1)
	})

	t.Run("FailedItemCanBeRetried", func(t *testing.T) {
		retry := &dto.SyncLeadsRequest{Items: []dto.SyncLeadItem{{TempID: "t2", TwitterURL: "https://x.com/two"}}}
		resp, err := fx.flow.SyncLeads(ctx, fx.actor, retry, nil)
		require.NoError(t, err)
		assert.Equal(t, dto.SyncStatusCreated, resp.Results[0].Status)
	})

	t.Run("TempIDsAreScopedPerUser", func(t *testing.T) {
		other := Actor{UserID: uuid.New(), Role: models.RoleUser}
		resp, err := fx.flow.SyncLeads(ctx, other, &dto.SyncLeadsRequest{Items: req.Items[:1]}, nil)
		require.NoError(t, err)
		assert.Equal(t, dto.SyncStatusCreated, resp.Results[0].Status)
	})
}
