package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tradelore/tradelore/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) query() []resource.Resource {
	resources := make([]resource.Resource, 0, len(repo.db.table))
	for _, res := range repo.db.table {
		resources = append(resources, *res)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].CreatedAt.After(resources[j].CreatedAt) })
	return resources
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	res.ID = uuid.New().String()
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id string) (resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.table[id]; ok {
		return *res, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[res.ID]; !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return resource.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *resourceRepository) QueryActiveResources(ctx context.Context) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []resource.Resource
	for _, res := range repo.query() {
		if !res.IsDeleted {
			out = append(out, res)
		}
	}
	return out, nil
}

func (repo *resourceRepository) QueryTrashedResources(ctx context.Context) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []resource.Resource
	for _, res := range repo.query() {
		if res.IsDeleted {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeletedAt == nil || out[j].DeletedAt == nil {
			return false
		}
		return out[i].DeletedAt.After(*out[j].DeletedAt)
	})
	return out, nil
}

func (repo *resourceRepository) FilterResources(ctx context.Context, filter resource.QueryFilter) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []resource.Resource
	kw := strings.ToLower(filter.Search)
	for _, res := range repo.query() {
		if res.IsDeleted {
			continue
		}
		if filter.PublicOnly && !res.IsPublic() {
			continue
		}
		if kw != "" &&
			!strings.Contains(strings.ToLower(res.Title), kw) &&
			!strings.Contains(strings.ToLower(res.Description), kw) {
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

func (repo *resourceRepository) CountResources(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *resourceRepository) CreateVersion(ctx context.Context, ver resource.Version) (resource.Version, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ver.ID = uuid.New().String()
	repo.db.versions = append(repo.db.versions, ver)
	return ver, nil
}

func (repo *resourceRepository) QueryVersions(ctx context.Context, resourceID string) ([]resource.Version, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []resource.Version
	for _, ver := range repo.db.versions {
		if ver.ResourceID == resourceID {
			out = append(out, ver)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (repo *resourceRepository) NextVersionNumber(ctx context.Context, resourceID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	max := 0
	for _, ver := range repo.db.versions {
		if ver.ResourceID == resourceID && ver.VersionNumber > max {
			max = ver.VersionNumber
		}
	}
	return max + 1, nil
}
