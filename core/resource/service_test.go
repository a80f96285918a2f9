package resource

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tradelore/tradelore/core/audit"
)

type fakeRepo struct {
	resources map[string]Resource
	versions  []Version
	seq       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{resources: make(map[string]Resource)}
}

func (r *fakeRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("id%d", r.seq)
}

func (r *fakeRepo) CreateResource(ctx context.Context, res Resource) (Resource, error) {
	res.ID = r.nextID()
	r.resources[res.ID] = res
	return res, nil
}

func (r *fakeRepo) GetResourceByID(ctx context.Context, id string) (Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return Resource{}, ErrNotFound
	}
	return res, nil
}

func (r *fakeRepo) UpdateResource(ctx context.Context, res Resource) (Resource, error) {
	if _, ok := r.resources[res.ID]; !ok {
		return Resource{}, ErrNotFound
	}
	r.resources[res.ID] = res
	return res, nil
}

func (r *fakeRepo) DeleteResource(ctx context.Context, id string) error {
	if _, ok := r.resources[id]; !ok {
		return ErrNotFound
	}
	delete(r.resources, id)
	return nil
}

func (r *fakeRepo) QueryActiveResources(ctx context.Context) ([]Resource, error) {
	var out []Resource
	for _, res := range r.resources {
		if !res.IsDeleted {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeRepo) QueryTrashedResources(ctx context.Context) ([]Resource, error) {
	var out []Resource
	for _, res := range r.resources {
		if res.IsDeleted {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeRepo) FilterResources(ctx context.Context, filter QueryFilter) ([]Resource, error) {
	var out []Resource
	for _, res := range r.resources {
		if filter.PublicOnly && !res.IsPublic() {
			continue
		}
		if filter.Category != "" && res.Category != filter.Category {
			continue
		}
		if filter.FileType != "" && res.FileType != filter.FileType {
			continue
		}
		if filter.FeaturedOnly && !res.IsFeatured {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *fakeRepo) CountResources(ctx context.Context) (int, error) {
	return len(r.resources), nil
}

func (r *fakeRepo) CreateVersion(ctx context.Context, ver Version) (Version, error) {
	ver.ID = r.nextID()
	r.versions = append(r.versions, ver)
	return ver, nil
}

func (r *fakeRepo) QueryVersions(ctx context.Context, resourceID string) ([]Version, error) {
	var out []Version
	for i := len(r.versions) - 1; i >= 0; i-- {
		if r.versions[i].ResourceID == resourceID {
			out = append(out, r.versions[i])
		}
	}
	return out, nil
}

func (r *fakeRepo) NextVersionNumber(ctx context.Context, resourceID string) (int, error) {
	max := 0
	for _, ver := range r.versions {
		if ver.ResourceID == resourceID && ver.VersionNumber > max {
			max = ver.VersionNumber
		}
	}
	return max + 1, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
	err     error
}

func (r *fakeAuditRepo) CreateEntry(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	if r.err != nil {
		return audit.Entry{}, r.err
	}
	entry.ID = fmt.Sprintf("a%d", len(r.entries)+1)
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *fakeAuditRepo) RecentEntries(ctx context.Context, limit int) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *fakeAuditRepo) lastAction() string {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

func newTestService() (*Service, *fakeRepo, *fakeAuditRepo) {
	repo := newFakeRepo()
	auditRepo := &fakeAuditRepo{}
	return NewService(repo, audit.NewService(auditRepo, nil)), repo, auditRepo
}

func newResource() NewResource {
	return NewResource{
		Title:       "RSI Basics",
		Description: "Momentum oscillators explained",
		Category:    CategoryEquity,
		FileType:    FileTypePDF,
		FileURL:     "https://cdn.test/rsi-basics.pdf",
		IsPublished: true,
		Visibility:  VisibilityPublic,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, auditRepo := newTestService()

	res, err := svc.Create(ctx, "admin1", newResource())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.ID == "" {
		t.Fatal("Create() should assign an id")
	}
	if got := res.State(); got != StatePublished {
		t.Errorf("State() = %v, want %v", got, StatePublished)
	}

	vers, err := svc.Versions(ctx, res.ID)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(vers) != 1 || vers[0].VersionNumber != 1 {
		t.Errorf("Versions() = %+v, want a single version numbered 1", vers)
	}
	if vers[0].FileURL != res.FileURL {
		t.Errorf("version FileURL = %v, want %v", vers[0].FileURL, res.FileURL)
	}

	if auditRepo.lastAction() != audit.ActionResourceCreated {
		t.Errorf("audit action = %v, want %v", auditRepo.lastAction(), audit.ActionResourceCreated)
	}

	active, _ := svc.QueryActive(ctx)
	if len(active) != 1 {
		t.Errorf("QueryActive() = %d, want 1", len(active))
	}
}

func TestUpdateAppendsVersions(t *testing.T) {
	ctx := context.Background()
	svc, _, auditRepo := newTestService()

	res, _ := svc.Create(ctx, "admin1", newResource())

	for i, url := range []string{"https://cdn.test/v2.pdf", "https://cdn.test/v3.pdf"} {
		res2, err := svc.Update(ctx, "admin1", res.ID, UpdateResource{
			Title:       "RSI Basics (revised)",
			Description: res.Description,
			Category:    res.Category,
			FileType:    res.FileType,
			FileURL:     url,
			IsPublished: res.IsPublished,
			Visibility:  res.Visibility,
		})
		if err != nil {
			t.Fatalf("Update() #%d error = %v", i+1, err)
		}
		if res2.FileURL != url {
			t.Errorf("FileURL = %v, want %v", res2.FileURL, url)
		}
	}

	vers, _ := svc.Versions(ctx, res.ID)
	if len(vers) != 3 {
		t.Fatalf("Versions() = %d, want 3", len(vers))
	}
	// newest first: 3, 2, 1
	for i, want := range []int{3, 2, 1} {
		if vers[i].VersionNumber != want {
			t.Errorf("vers[%d].VersionNumber = %d, want %d", i, vers[i].VersionNumber, want)
		}
	}

	if auditRepo.lastAction() != audit.ActionResourceUpdated {
		t.Errorf("audit action = %v, want %v", auditRepo.lastAction(), audit.ActionResourceUpdated)
	}
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, auditRepo := newTestService()

	res, _ := svc.Create(ctx, "admin1", newResource())

	trashed, err := svc.SoftDelete(ctx, "admin1", res.ID)
	if err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if got := trashed.State(); got != StateTrashed {
		t.Errorf("State() = %v, want %v", got, StateTrashed)
	}
	if trashed.DeletedAt == nil {
		t.Error("DeletedAt should be set")
	}
	if !trashed.IsPublished {
		t.Error("trashing must keep the published flag for restore")
	}
	if auditRepo.lastAction() != audit.ActionResourceTrashed {
		t.Errorf("audit action = %v, want %v", auditRepo.lastAction(), audit.ActionResourceTrashed)
	}

	// double soft-delete is rejected
	if _, err = svc.SoftDelete(ctx, "admin1", res.ID); err != ErrAlreadyTrashed {
		t.Errorf("SoftDelete() error = %v, want %v", err, ErrAlreadyTrashed)
	}

	active, _ := svc.QueryActive(ctx)
	if len(active) != 0 {
		t.Errorf("QueryActive() = %d, want 0 after trash", len(active))
	}
	trash, _ := svc.QueryTrashed(ctx)
	if len(trash) != 1 {
		t.Errorf("QueryTrashed() = %d, want 1", len(trash))
	}

	restored, err := svc.Restore(ctx, "admin1", res.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := restored.State(); got != StatePublished {
		t.Errorf("State() = %v, want %v (pre-trash state)", got, StatePublished)
	}
	if restored.DeletedAt != nil {
		t.Error("DeletedAt should be cleared")
	}
	if auditRepo.lastAction() != audit.ActionResourceRestored {
		t.Errorf("audit action = %v, want %v", auditRepo.lastAction(), audit.ActionResourceRestored)
	}

	// restoring an active resource is rejected
	if _, err = svc.Restore(ctx, "admin1", res.ID); err != ErrNotTrashed {
		t.Errorf("Restore() error = %v, want %v", err, ErrNotTrashed)
	}
}

func TestRestoreDraftStaysDraft(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	nr := newResource()
	nr.IsPublished = false
	res, _ := svc.Create(ctx, "admin1", nr)

	if _, err := svc.SoftDelete(ctx, "admin1", res.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	restored, err := svc.Restore(ctx, "admin1", res.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := restored.State(); got != StateDraft {
		t.Errorf("State() = %v, want %v", got, StateDraft)
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	svc, repo, auditRepo := newTestService()

	res, _ := svc.Create(ctx, "admin1", newResource())

	// purge of an active resource is rejected
	if err := svc.Purge(ctx, "admin1", res.ID); err != ErrNotTrashed {
		t.Fatalf("Purge() error = %v, want %v", err, ErrNotTrashed)
	}

	if _, err := svc.SoftDelete(ctx, "admin1", res.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if err := svc.Purge(ctx, "admin1", res.ID); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	if _, err := svc.GetByID(ctx, res.ID); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, ErrNotFound)
	}

	// versions survive as historical record
	if len(repo.versions) != 1 {
		t.Errorf("versions = %d, want 1 retained after purge", len(repo.versions))
	}

	last := auditRepo.entries[len(auditRepo.entries)-1]
	if last.Action != audit.ActionResourcePurged {
		t.Errorf("audit action = %v, want %v", last.Action, audit.ActionResourcePurged)
	}
	if last.Details["title"] != "RSI Basics" {
		t.Errorf("audit details title = %v, want RSI Basics", last.Details["title"])
	}

	// purging twice fails with not found
	if err := svc.Purge(ctx, "admin1", res.ID); err != ErrNotFound {
		t.Errorf("Purge() error = %v, want %v", err, ErrNotFound)
	}
}

func TestAuditFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	auditRepo := &fakeAuditRepo{err: errors.New("insert failed")}
	svc := NewService(repo, audit.NewService(auditRepo, nil))

	res, err := svc.Create(ctx, "admin1", newResource())
	if err != nil {
		t.Fatalf("Create() error = %v, audit failures must not block", err)
	}
	if _, err = svc.GetByID(ctx, res.ID); err != nil {
		t.Errorf("GetByID() error = %v, resource should exist", err)
	}
}

func TestFilterPublicOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	published, _ := svc.Create(ctx, "admin1", newResource())

	draft := newResource()
	draft.Title = "Draft Guide"
	draft.IsPublished = false
	svc.Create(ctx, "admin1", draft)

	adminOnly := newResource()
	adminOnly.Title = "Internal Playbook"
	adminOnly.Visibility = VisibilityAdmin
	svc.Create(ctx, "admin1", adminOnly)

	trashed := newResource()
	trashed.Title = "Old Guide"
	tr, _ := svc.Create(ctx, "admin1", trashed)
	svc.SoftDelete(ctx, "admin1", tr.ID)

	got, err := svc.Filter(ctx, QueryFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != published.ID {
		t.Errorf("Filter(PublicOnly) = %+v, want only the published public resource", got)
	}
}

func TestExpiryDoesNotUnpublish(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	res := Resource{IsPublished: true, Visibility: VisibilityPublic, ExpiresAt: &past}

	if !res.IsExpired(time.Now().UTC()) {
		t.Error("IsExpired() = false, want true")
	}
	if got := res.State(); got != StatePublished {
		t.Errorf("State() = %v, expiry must not change lifecycle state", got)
	}
	if !res.IsPublic() {
		t.Error("IsPublic() = false, expiry affects display only")
	}
}
