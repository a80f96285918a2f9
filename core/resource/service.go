package resource

import (
	"context"
	"errors"
	"time"

	"github.com/tradelore/tradelore/core/audit"
)

var (
	// errors
	ErrNotFound = errors.New("resource not found")
	// ErrNotTrashed guards restore and purge: both only apply to trashed resources.
	ErrNotTrashed = errors.New("resource is not in the trash")
	// ErrAlreadyTrashed guards double soft-deletes.
	ErrAlreadyTrashed = errors.New("resource is already in the trash")
)

const entityType = "resource"

type (
	Repository interface {
		CreateResource(ctx context.Context, res Resource) (Resource, error)
		GetResourceByID(ctx context.Context, id string) (Resource, error)
		UpdateResource(ctx context.Context, res Resource) (Resource, error)
		// DeleteResource removes the row permanently. Versions and audit
		// entries are not cascaded; they remain as historical record.
		DeleteResource(ctx context.Context, id string) error
		// QueryActiveResources returns non-deleted rows, created_at descending.
		QueryActiveResources(ctx context.Context) ([]Resource, error)
		// QueryTrashedResources returns deleted rows, deleted_at descending.
		QueryTrashedResources(ctx context.Context) ([]Resource, error)
		// FilterResources applies AND on available QueryFilter fields,
		// created_at descending.
		FilterResources(ctx context.Context, filter QueryFilter) ([]Resource, error)
		CountResources(ctx context.Context) (int, error)

		CreateVersion(ctx context.Context, ver Version) (Version, error)
		// QueryVersions returns a resource's versions, created_at descending.
		QueryVersions(ctx context.Context, resourceID string) ([]Version, error)
		// NextVersionNumber returns max(version_number)+1 for the resource,
		// starting at 1.
		NextVersionNumber(ctx context.Context, resourceID string) (int, error)
	}

	Service struct {
		repo  Repository
		audit *audit.Service
	}
)

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc}
}

// Create inserts a new resource in Draft or Published state depending on the
// payload, snapshots the initial version (number 1) and records the action.
// The version and audit writes follow the row insert sequentially; a failed
// audit write never rolls the insert back.
func (svc *Service) Create(ctx context.Context, actorID string, nr NewResource) (Resource, error) {
	now := time.Now().UTC()
	res := Resource{
		Title:       nr.Title,
		Description: nr.Description,
		Category:    nr.Category,
		FileType:    nr.FileType,
		FileURL:     nr.FileURL,
		IsFeatured:  nr.IsFeatured,
		IsPublished: nr.IsPublished,
		Visibility:  nr.Visibility,
		ExpiresAt:   nr.ExpiresAt,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := svc.repo.CreateResource(ctx, res)
	if err != nil {
		return Resource{}, err
	}

	if _, err = svc.repo.CreateVersion(ctx, Version{
		ResourceID:    res.ID,
		FileURL:       res.FileURL,
		UploadedBy:    actorID,
		VersionNumber: 1,
		CreatedAt:     now,
	}); err != nil {
		return Resource{}, err
	}

	svc.audit.Log(ctx, actorID, audit.ActionResourceCreated, entityType, res.ID)
	return res, nil
}

// Update replaces a resource's attributes, snapshots a new version with the
// next sequential number and records the action. Editing never changes the
// deletion flags.
func (svc *Service) Update(ctx context.Context, actorID, id string, ur UpdateResource) (Resource, error) {
	orig, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return Resource{}, err
	}

	now := time.Now().UTC()
	orig.Title = ur.Title
	orig.Description = ur.Description
	orig.Category = ur.Category
	orig.FileType = ur.FileType
	orig.FileURL = ur.FileURL
	orig.IsFeatured = ur.IsFeatured
	orig.IsPublished = ur.IsPublished
	orig.Visibility = ur.Visibility
	orig.ExpiresAt = ur.ExpiresAt
	orig.UpdatedAt = now

	res, err := svc.repo.UpdateResource(ctx, orig)
	if err != nil {
		return Resource{}, err
	}

	verNum, err := svc.repo.NextVersionNumber(ctx, res.ID)
	if err != nil {
		return Resource{}, err
	}
	if _, err = svc.repo.CreateVersion(ctx, Version{
		ResourceID:    res.ID,
		FileURL:       res.FileURL,
		UploadedBy:    actorID,
		VersionNumber: verNum,
		CreatedAt:     now,
	}); err != nil {
		return Resource{}, err
	}

	svc.audit.Log(ctx, actorID, audit.ActionResourceUpdated, entityType, res.ID)
	return res, nil
}

// SoftDelete moves a resource to the trash. The published flag is kept so a
// later restore returns the resource to its pre-trash state.
func (svc *Service) SoftDelete(ctx context.Context, actorID, id string) (Resource, error) {
	res, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	if res.IsDeleted {
		return Resource{}, ErrAlreadyTrashed
	}

	now := time.Now().UTC()
	res.IsDeleted = true
	res.DeletedAt = &now
	res.UpdatedAt = now

	res, err = svc.repo.UpdateResource(ctx, res)
	if err != nil {
		return Resource{}, err
	}

	svc.audit.Log(ctx, actorID, audit.ActionResourceTrashed, entityType, res.ID)
	return res, nil
}

// Restore takes a resource out of the trash, back to whichever of Draft or
// Published it was when trashed.
func (svc *Service) Restore(ctx context.Context, actorID, id string) (Resource, error) {
	res, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	if !res.IsDeleted {
		return Resource{}, ErrNotTrashed
	}

	res.IsDeleted = false
	res.DeletedAt = nil
	res.UpdatedAt = time.Now().UTC()

	res, err = svc.repo.UpdateResource(ctx, res)
	if err != nil {
		return Resource{}, err
	}

	svc.audit.Log(ctx, actorID, audit.ActionResourceRestored, entityType, res.ID)
	return res, nil
}

// Purge permanently removes a trashed resource. Versions and audit entries
// are retained as historical record. The audit entry is written after the
// physical delete, on purpose: it documents what existed even though the
// entity id no longer resolves.
func (svc *Service) Purge(ctx context.Context, actorID, id string) error {
	res, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return err
	}
	if !res.IsDeleted {
		return ErrNotTrashed
	}

	if err = svc.repo.DeleteResource(ctx, id); err != nil {
		return err
	}

	svc.audit.Log(ctx, actorID, audit.ActionResourcePurged, entityType, id, map[string]interface{}{
		"title": res.Title,
	})
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResourceByID(ctx, id)
}

// QueryActive returns all non-deleted resources, newest first.
func (svc *Service) QueryActive(ctx context.Context) ([]Resource, error) {
	return svc.repo.QueryActiveResources(ctx)
}

// QueryTrashed returns the trash, most recently deleted first.
func (svc *Service) QueryTrashed(ctx context.Context) ([]Resource, error) {
	return svc.repo.QueryTrashedResources(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Resource, error) {
	return svc.repo.FilterResources(ctx, filter)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountResources(ctx)
}

// Versions returns a resource's version history, newest first.
func (svc *Service) Versions(ctx context.Context, resourceID string) ([]Version, error) {
	return svc.repo.QueryVersions(ctx, resourceID)
}
