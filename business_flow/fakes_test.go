package businessflow

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/google/uuid"
)

var errFake = errors.New("fake store failure")

// clock hands out strictly increasing timestamps so ordering by created_at is stable
type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordedActivity struct {
	Actor      Actor
	Action     string
	ObjectType string
	ObjectID   string
	Details    map[string]any
}

type fakeActivity struct {
	entries []recordedActivity
}

func (f *fakeActivity) Record(_ context.Context, actor Actor, action, objectType, objectID string, details map[string]any, _ *ClientMetadata) {
	f.entries = append(f.entries, recordedActivity{actor, action, objectType, objectID, details})
}

func (f *fakeActivity) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// categories

type fakeCategoryRepo struct {
	rows  map[uuid.UUID]*models.Category
	leads *fakeLeadRepo
	clock *clock
}

func newFakeCategoryRepo(c *clock) *fakeCategoryRepo {
	return &fakeCategoryRepo{rows: map[uuid.UUID]*models.Category{}, clock: c}
}

func (r *fakeCategoryRepo) add(name, color string) *models.Category {
	c := &models.Category{ID: uuid.New(), Name: name, Color: color, CreatedAt: r.clock.next()}
	r.rows[c.ID] = c
	return c
}

func (r *fakeCategoryRepo) ByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) ByFilter(ctx context.Context, _ models.CategoryFilter, _ string, _, _ int) ([]*models.Category, error) {
	return r.ListByName(ctx)
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.clock.next()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) SaveBatch(ctx context.Context, cs []*models.Category) error {
	for _, c := range cs {
		_ = r.Save(ctx, c)
	}
	return nil
}

func (r *fakeCategoryRepo) Count(context.Context, models.CategoryFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeCategoryRepo) Exists(context.Context, models.CategoryFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeCategoryRepo) ListByName(context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCategoryRepo) First(ctx context.Context) (*models.Category, error) {
	rows, _ := r.ListByName(ctx)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeCategoryRepo) ListIDs(context.Context) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(r.rows))
	for id := range r.rows {
		out = append(out, id)
	}
	return out, nil
}

func (r *fakeCategoryRepo) DeleteAndDetach(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	if r.leads != nil {
		for _, l := range r.leads.rows {
			if l.CategoryID != nil && *l.CategoryID == id {
				l.CategoryID = nil
			}
		}
	}
	delete(r.rows, id)
	return true, nil
}

// leads

type fakeLeadRepo struct {
	rows       map[uuid.UUID]*models.Lead
	categories *fakeCategoryRepo
	clock      *clock
	batches    []int
	failSave   bool
}

func newFakeLeadRepo(c *clock, categories *fakeCategoryRepo) *fakeLeadRepo {
	r := &fakeLeadRepo{rows: map[uuid.UUID]*models.Lead{}, categories: categories, clock: c}
	categories.leads = r
	return r
}

func (r *fakeLeadRepo) withCategory(l *models.Lead) *models.Lead {
	cp := *l
	if cp.CategoryID != nil {
		if c, ok := r.categories.rows[*cp.CategoryID]; ok {
			cc := *c
			cp.Category = &cc
		}
	}
	return &cp
}

func (r *fakeLeadRepo) ByID(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeadRepo) ByIDWithCategory(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return r.withCategory(l), nil
}

func (r *fakeLeadRepo) sorted() []*models.Lead {
	out := make([]*models.Lead, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeLeadRepo) ByFilter(_ context.Context, _ models.LeadFilter, _ string, limit, offset int) ([]*models.Lead, error) {
	return page(r.sorted(), limit, offset), nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (r *fakeLeadRepo) Save(_ context.Context, l *models.Lead) error {
	if r.failSave {
		return errFake
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.clock.next()
	}
	cp := *l
	r.rows[l.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) SaveBatch(ctx context.Context, ls []*models.Lead) error {
	r.batches = append(r.batches, len(ls))
	for _, l := range ls {
		if err := r.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeLeadRepo) Count(context.Context, models.LeadFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeLeadRepo) Exists(context.Context, models.LeadFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeLeadRepo) ListPage(_ context.Context, limit, offset int) ([]*models.Lead, error) {
	rows := page(r.sorted(), limit, offset)
	out := make([]*models.Lead, 0, len(rows))
	for _, l := range rows {
		out = append(out, r.withCategory(l))
	}
	return out, nil
}

func (r *fakeLeadRepo) UpdateCategory(_ context.Context, id uuid.UUID, categoryID *uuid.UUID) (bool, error) {
	l, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	l.CategoryID = categoryID
	return true, nil
}

func (r *fakeLeadRepo) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *fakeLeadRepo) CountByCategory(context.Context) ([]models.CategoryLeadCount, error) {
	counts := map[uuid.UUID]int64{}
	var uncategorized int64
	for _, l := range r.rows {
		if l.CategoryID == nil {
			uncategorized++
			continue
		}
		counts[*l.CategoryID]++
	}

	var out []models.CategoryLeadCount
	cats, _ := r.categories.ListByName(context.Background())
	for _, c := range cats {
		out = append(out, models.CategoryLeadCount{
			CategoryID: &c.ID,
			Name:       &c.Name,
			Color:      &c.Color,
			Count:      counts[c.ID],
		})
	}
	if uncategorized > 0 {
		out = append(out, models.CategoryLeadCount{Count: uncategorized})
	}
	return out, nil
}

// videos

type fakeVideoRepo struct {
	rows       map[uuid.UUID]*models.Video
	categories *fakeCategoryRepo
	clock      *clock
}

func newFakeVideoRepo(c *clock, categories *fakeCategoryRepo) *fakeVideoRepo {
	return &fakeVideoRepo{rows: map[uuid.UUID]*models.Video{}, categories: categories, clock: c}
}

func (r *fakeVideoRepo) ByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	v, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) ByIDWithCategory(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := r.ByID(ctx, id)
	if v == nil || err != nil {
		return v, err
	}
	if v.CategoryID != nil {
		if c, ok := r.categories.rows[*v.CategoryID]; ok {
			cc := *c
			v.Category = &cc
		}
	}
	return v, nil
}

func (r *fakeVideoRepo) ByFilter(_ context.Context, _ models.VideoFilter, _ string, limit, offset int) ([]*models.Video, error) {
	return page(r.sorted(), limit, offset), nil
}

func (r *fakeVideoRepo) sorted() []*models.Video {
	out := make([]*models.Video, 0, len(r.rows))
	for _, v := range r.rows {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeVideoRepo) Save(_ context.Context, v *models.Video) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = r.clock.next()
	}
	cp := *v
	r.rows[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) SaveBatch(ctx context.Context, vs []*models.Video) error {
	for _, v := range vs {
		_ = r.Save(ctx, v)
	}
	return nil
}

func (r *fakeVideoRepo) Count(context.Context, models.VideoFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeVideoRepo) Exists(context.Context, models.VideoFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeVideoRepo) ListWithCategory(ctx context.Context) ([]*models.Video, error) {
	out := []*models.Video{}
	for _, v := range r.sorted() {
		withCat, _ := r.ByIDWithCategory(ctx, v.ID)
		out = append(out, withCat)
	}
	return out, nil
}

func (r *fakeVideoRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	v, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	for k, val := range fields {
		switch k {
		case "title":
			v.Title = val.(string)
		case "description":
			v.Description, _ = val.(*string)
		case "category_id":
			v.CategoryID, _ = val.(*uuid.UUID)
		case "upload_status":
			v.UploadStatus = val.(string)
		case "thumbnail_url":
			s := val.(string)
			v.ThumbnailURL = &s
		case "updated_at":
			v.UpdatedAt = val.(time.Time)
		}
	}
	return true, nil
}

func (r *fakeVideoRepo) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *fakeVideoRepo) MarkStaleAsFailed(_ context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, v := range r.rows {
		if v.UploadStatus == models.VideoStatusProcessing && v.CreatedAt.Before(olderThan) {
			v.UploadStatus = models.VideoStatusFailed
			n++
		}
	}
	return n, nil
}

// activity logs

type fakeLogRepo struct {
	rows       []*models.UserActivityLog
	lastFilter models.UserActivityLogFilter
	lastLimit  int
	lastOffset int
	cutoff     time.Time
}

func (r *fakeLogRepo) ByID(context.Context, uuid.UUID) (*models.UserActivityLog, error) {
	return nil, nil
}

func (r *fakeLogRepo) ByFilter(_ context.Context, filter models.UserActivityLogFilter, _ string, limit, offset int) ([]*models.UserActivityLog, error) {
	r.lastFilter, r.lastLimit, r.lastOffset = filter, limit, offset
	return page(r.rows, limit, offset), nil
}

func (r *fakeLogRepo) Save(_ context.Context, l *models.UserActivityLog) error {
	r.rows = append(r.rows, l)
	return nil
}

func (r *fakeLogRepo) SaveBatch(ctx context.Context, ls []*models.UserActivityLog) error {
	r.rows = append(r.rows, ls...)
	return nil
}

func (r *fakeLogRepo) Count(_ context.Context, filter models.UserActivityLogFilter) (int64, error) {
	r.lastFilter = filter
	return int64(len(r.rows)), nil
}

func (r *fakeLogRepo) Exists(context.Context, models.UserActivityLogFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	return 3, nil
}

// roles

type fakeRoleRepo struct {
	rows    map[uuid.UUID]*models.UserRole
	lookups int
	fail    bool
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{rows: map[uuid.UUID]*models.UserRole{}}
}

func (r *fakeRoleRepo) ByID(context.Context, uuid.UUID) (*models.UserRole, error) { return nil, nil }

func (r *fakeRoleRepo) ByFilter(context.Context, models.UserRoleFilter, string, int, int) ([]*models.UserRole, error) {
	return nil, nil
}

func (r *fakeRoleRepo) Save(_ context.Context, role *models.UserRole) error {
	r.rows[role.UserID] = role
	return nil
}

func (r *fakeRoleRepo) SaveBatch(context.Context, []*models.UserRole) error { return nil }

func (r *fakeRoleRepo) Count(context.Context, models.UserRoleFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeRoleRepo) Exists(context.Context, models.UserRoleFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeRoleRepo) ByUserID(_ context.Context, userID uuid.UUID) (*models.UserRole, error) {
	r.lookups++
	if r.fail {
		return nil, errFake
	}
	return r.rows[userID], nil
}

func (r *fakeRoleRepo) Upsert(_ context.Context, userID uuid.UUID, role string) (*models.UserRole, error) {
	row, ok := r.rows[userID]
	if !ok {
		row = &models.UserRole{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().UTC()}
		r.rows[userID] = row
	}
	row.Role = role
	return row, nil
}

// mfa

type fakeFactorRepo struct {
	rows map[uuid.UUID]*models.MFAFactor
}

func newFakeFactorRepo() *fakeFactorRepo {
	return &fakeFactorRepo{rows: map[uuid.UUID]*models.MFAFactor{}}
}

func (r *fakeFactorRepo) ByID(_ context.Context, id uuid.UUID) (*models.MFAFactor, error) {
	f, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	cp.RecoveryCodeHashes = slices.Clone(f.RecoveryCodeHashes)
	return &cp, nil
}

func (r *fakeFactorRepo) matching(filter models.MFAFactorFilter) []*models.MFAFactor {
	var out []*models.MFAFactor
	for _, f := range r.rows {
		if filter.UserID != nil && f.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && f.Status != *filter.Status {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out
}

func (r *fakeFactorRepo) ByFilter(_ context.Context, filter models.MFAFactorFilter, _ string, _, _ int) ([]*models.MFAFactor, error) {
	return r.matching(filter), nil
}

func (r *fakeFactorRepo) Save(_ context.Context, f *models.MFAFactor) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	r.rows[f.ID] = &cp
	return nil
}

func (r *fakeFactorRepo) SaveBatch(context.Context, []*models.MFAFactor) error { return nil }

func (r *fakeFactorRepo) Count(_ context.Context, filter models.MFAFactorFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *fakeFactorRepo) Exists(_ context.Context, filter models.MFAFactorFilter) (bool, error) {
	return len(r.matching(filter)) > 0, nil
}

func (r *fakeFactorRepo) Update(_ context.Context, f *models.MFAFactor) error {
	cp := *f
	r.rows[f.ID] = &cp
	return nil
}

func (r *fakeFactorRepo) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *fakeFactorRepo) DeleteUnverifiedByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for id, f := range r.rows {
		if f.UserID == userID && f.Status == models.FactorStatusUnverified {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeChallengeRepo struct {
	rows map[uuid.UUID]*models.MFAChallenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{rows: map[uuid.UUID]*models.MFAChallenge{}}
}

func (r *fakeChallengeRepo) ByID(_ context.Context, id uuid.UUID) (*models.MFAChallenge, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChallengeRepo) ByFilter(context.Context, models.MFAChallengeFilter, string, int, int) ([]*models.MFAChallenge, error) {
	return nil, nil
}

func (r *fakeChallengeRepo) Save(_ context.Context, c *models.MFAChallenge) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeChallengeRepo) SaveBatch(context.Context, []*models.MFAChallenge) error { return nil }

func (r *fakeChallengeRepo) Count(context.Context, models.MFAChallengeFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeChallengeRepo) Exists(context.Context, models.MFAChallengeFilter) (bool, error) {
	return len(r.rows) > 0, nil
}

func (r *fakeChallengeRepo) Consume(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	c, ok := r.rows[id]
	if !ok || !c.IsUsable(at) {
		return false, nil
	}
	c.VerifiedAt = &at
	return true, nil
}

func (r *fakeChallengeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, c := range r.rows {
		if c.VerifiedAt == nil && !now.Before(c.ExpiresAt) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// sales

type fakeSalesRecordRepo struct {
	rows  map[uuid.UUID]*models.SalesRecord
	clock *clock
}

func newFakeSalesRecordRepo(c *clock) *fakeSalesRecordRepo {
	return &fakeSalesRecordRepo{rows: map[uuid.UUID]*models.SalesRecord{}, clock: c}
}

func (r *fakeSalesRecordRepo) ByID(_ context.Context, id uuid.UUID) (*models.SalesRecord, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSalesRecordRepo) ByIDWithLookups(ctx context.Context, id uuid.UUID) (*models.SalesRecord, error) {
	return r.ByID(ctx, id)
}

func (r *fakeSalesRecordRepo) list(filter models.SalesRecordFilter) []*models.SalesRecord {
	var out []*models.SalesRecord
	for _, s := range r.rows {
		if filter.SaleStatusID != nil && (s.SaleStatusID == nil || *s.SaleStatusID != *filter.SaleStatusID) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeSalesRecordRepo) ByFilter(_ context.Context, filter models.SalesRecordFilter, _ string, limit, offset int) ([]*models.SalesRecord, error) {
	return page(r.list(filter), limit, offset), nil
}

func (r *fakeSalesRecordRepo) ListWithLookups(_ context.Context, filter models.SalesRecordFilter) ([]*models.SalesRecord, error) {
	return r.list(filter), nil
}

func (r *fakeSalesRecordRepo) Save(_ context.Context, s *models.SalesRecord) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.clock.next()
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeSalesRecordRepo) SaveBatch(context.Context, []*models.SalesRecord) error { return nil }

func (r *fakeSalesRecordRepo) Count(_ context.Context, filter models.SalesRecordFilter) (int64, error) {
	return int64(len(r.list(filter))), nil
}

func (r *fakeSalesRecordRepo) Exists(_ context.Context, filter models.SalesRecordFilter) (bool, error) {
	return len(r.list(filter)) > 0, nil
}

func (r *fakeSalesRecordRepo) Update(_ context.Context, s *models.SalesRecord) error {
	s.RecomputeEarnings()
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeSalesRecordRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeLookupRepo struct {
	known map[repository.LookupKind]map[uuid.UUID]string
}

func newFakeLookupRepo() *fakeLookupRepo {
	return &fakeLookupRepo{known: map[repository.LookupKind]map[uuid.UUID]string{}}
}

func (r *fakeLookupRepo) add(kind repository.LookupKind, name string) uuid.UUID {
	if r.known[kind] == nil {
		r.known[kind] = map[uuid.UUID]string{}
	}
	id := uuid.New()
	r.known[kind][id] = name
	return id
}

func (r *fakeLookupRepo) All(context.Context) (*models.SalesLookups, error) {
	out := &models.SalesLookups{
		ChatLocations: []*models.ChatLocation{},
		SaleStatuses:  []*models.SaleStatus{},
		LeadSources:   []*models.LeadSource{},
		Designers:     []*models.Designer{},
	}
	for id, name := range r.known[repository.LookupSaleStatus] {
		out.SaleStatuses = append(out.SaleStatuses, &models.SaleStatus{ID: id, Name: name})
	}
	return out, nil
}

func (r *fakeLookupRepo) Exists(_ context.Context, kind repository.LookupKind, id uuid.UUID) (bool, error) {
	_, ok := r.known[kind][id]
	return ok, nil
}

func (r *fakeLookupRepo) EnsureDefaults(context.Context) error { return nil }

var (
	_ repository.CategoryRepository        = (*fakeCategoryRepo)(nil)
	_ repository.LeadRepository            = (*fakeLeadRepo)(nil)
	_ repository.VideoRepository           = (*fakeVideoRepo)(nil)
	_ repository.UserActivityLogRepository = (*fakeLogRepo)(nil)
	_ repository.UserRoleRepository        = (*fakeRoleRepo)(nil)
	_ repository.MFAFactorRepository       = (*fakeFactorRepo)(nil)
	_ repository.MFAChallengeRepository    = (*fakeChallengeRepo)(nil)
	_ repository.SalesRecordRepository     = (*fakeSalesRecordRepo)(nil)
	_ repository.SalesLookupRepository     = (*fakeLookupRepo)(nil)
)
