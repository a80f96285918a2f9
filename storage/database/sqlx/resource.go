package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/resource"
)

// psql builds queries with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var createdAtDesc = core.DBOrdering{Field: "created_at"}.String()

type resourceRow struct {
	ID          string      `db:"id"`
	Title       null.String `db:"title"`
	Description null.String `db:"description"`
	Category    null.String `db:"category"`
	FileType    null.String `db:"file_type"`
	FileURL     null.String `db:"file_url"`
	IsFeatured  bool        `db:"is_featured"`
	IsPublished bool        `db:"is_published"`
	Visibility  null.String `db:"visibility"`
	ExpiresAt   null.Time   `db:"expires_at"`
	IsDeleted   bool        `db:"is_deleted"`
	DeletedAt   null.Time   `db:"deleted_at"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type versionRow struct {
	ID            string      `db:"id"`
	ResourceID    string      `db:"resource_id"`
	FileURL       null.String `db:"file_url"`
	UploadedBy    null.String `db:"uploaded_by"`
	VersionNumber int         `db:"version_number"`
	CreatedAt     null.Time   `db:"created_at"`
}

type resourceRepository struct {
	db sqlx.ExtContext
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db sqlx.ExtContext) *resourceRepository {
	return &resourceRepository{db: db}
}

func (repo resourceRepository) pack(res resource.Resource) resourceRow {
	return resourceRow{
		ID:          res.ID,
		Title:       null.NewString(res.Title, res.Title != ""),
		Description: null.NewString(res.Description, res.Description != ""),
		Category:    null.NewString(res.Category, res.Category != ""),
		FileType:    null.NewString(res.FileType, res.FileType != ""),
		FileURL:     null.NewString(res.FileURL, res.FileURL != ""),
		IsFeatured:  res.IsFeatured,
		IsPublished: res.IsPublished,
		Visibility:  null.NewString(res.Visibility, res.Visibility != ""),
		ExpiresAt:   null.TimeFromPtr(res.ExpiresAt),
		IsDeleted:   res.IsDeleted,
		DeletedAt:   null.TimeFromPtr(res.DeletedAt),
		CreatedBy:   null.NewString(res.CreatedBy, res.CreatedBy != ""),
		CreatedAt:   null.NewTime(res.CreatedAt.UTC(), !res.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(res.UpdatedAt.UTC(), !res.UpdatedAt.IsZero()),
	}
}

func (repo resourceRepository) unpack(row resourceRow) resource.Resource {
	return resource.Resource{
		ID:          row.ID,
		Title:       row.Title.String,
		Description: row.Description.String,
		Category:    row.Category.String,
		FileType:    row.FileType.String,
		FileURL:     row.FileURL.String,
		IsFeatured:  row.IsFeatured,
		IsPublished: row.IsPublished,
		Visibility:  row.Visibility.String,
		ExpiresAt:   row.ExpiresAt.Ptr(),
		IsDeleted:   row.IsDeleted,
		DeletedAt:   row.DeletedAt.Ptr(),
		CreatedBy:   row.CreatedBy.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo resourceRepository) unpackSlice(rows []resourceRow) []resource.Resource {
	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, repo.unpack(row))
	}
	return resources
}

// trapNoRowsErr maps psql "no rows" err to resource.ErrNotFound
func (repo resourceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return resource.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	res.ID = uuid.New().String()
	row := repo.pack(res)

	query, args, err := psql.Insert("resource").
		Columns(
			"id", "title", "description", "category", "file_type", "file_url",
			"is_featured", "is_published", "visibility", "expires_at",
			"is_deleted", "deleted_at", "created_by", "created_at", "updated_at").
		Values(
			row.ID, row.Title, row.Description, row.Category, row.FileType, row.FileURL,
			row.IsFeatured, row.IsPublished, row.Visibility, row.ExpiresAt,
			row.IsDeleted, row.DeletedAt, row.CreatedBy, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "building resource insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo resourceRepository) GetResourceByID(ctx context.Context, id string) (resource.Resource, error) {
	query, args, err := psql.Select("*").From("resource").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "building resource query")
	}

	var row resourceRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return resource.Resource{}, repo.trapNoRowsErr(err, "getting resource")
	}
	return repo.unpack(row), nil
}

func (repo resourceRepository) UpdateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	row := repo.pack(res)

	query, args, err := psql.Update("resource").
		Set("title", row.Title).
		Set("description", row.Description).
		Set("category", row.Category).
		Set("file_type", row.FileType).
		Set("file_url", row.FileURL).
		Set("is_featured", row.IsFeatured).
		Set("is_published", row.IsPublished).
		Set("visibility", row.Visibility).
		Set("expires_at", row.ExpiresAt).
		Set("is_deleted", row.IsDeleted).
		Set("deleted_at", row.DeletedAt).
		Set("updated_at", row.UpdatedAt).
		Where(sq.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "building resource update")
	}

	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "updating resource")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return resource.Resource{}, resource.ErrNotFound
	}
	return res, nil
}

func (repo resourceRepository) DeleteResource(ctx context.Context, id string) error {
	query, args, err := psql.Delete("resource").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building resource delete")
	}

	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func (repo resourceRepository) QueryActiveResources(ctx context.Context) ([]resource.Resource, error) {
	return repo.queryResources(ctx, psql.Select("*").From("resource").
		Where(sq.Eq{"is_deleted": false}).
		OrderBy(createdAtDesc))
}

func (repo resourceRepository) QueryTrashedResources(ctx context.Context) ([]resource.Resource, error) {
	return repo.queryResources(ctx, psql.Select("*").From("resource").
		Where(sq.Eq{"is_deleted": true}).
		OrderBy(core.DBOrdering{Field: "deleted_at"}.String()))
}

func (repo resourceRepository) FilterResources(ctx context.Context, filter resource.QueryFilter) ([]resource.Resource, error) {
	builder := psql.Select("*").From("resource").Where(sq.Eq{"is_deleted": false})

	if filter.PublicOnly {
		builder = builder.Where(sq.Eq{"is_published": true, "visibility": resource.VisibilityPublic})
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": val},
			sq.ILike{"description": val},
		})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.FileType != "" {
		builder = builder.Where(sq.Eq{"file_type": filter.FileType})
	}
	if filter.FeaturedOnly {
		builder = builder.Where(sq.Eq{"is_featured": true})
	}
	return repo.queryResources(ctx, builder.OrderBy(createdAtDesc))
}

func (repo resourceRepository) queryResources(ctx context.Context, builder sq.SelectBuilder) ([]resource.Resource, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building resource query")
	}

	var rows []resourceRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return repo.unpackSlice(rows), nil
}

func (repo resourceRepository) CountResources(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("resource").ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building resource count")
	}

	var count int
	if err = sqlx.GetContext(ctx, repo.db, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting resources")
	}
	return count, nil
}

func (repo resourceRepository) CreateVersion(ctx context.Context, ver resource.Version) (resource.Version, error) {
	ver.ID = uuid.New().String()

	query, args, err := psql.Insert("resource_version").
		Columns("id", "resource_id", "file_url", "uploaded_by", "version_number", "created_at").
		Values(
			ver.ID, ver.ResourceID,
			null.NewString(ver.FileURL, ver.FileURL != ""),
			null.NewString(ver.UploadedBy, ver.UploadedBy != ""),
			ver.VersionNumber,
			null.NewTime(ver.CreatedAt.UTC(), !ver.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return resource.Version{}, errors.Wrap(err, "building version insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return resource.Version{}, errors.Wrap(err, "inserting version")
	}
	return ver, nil
}

func (repo resourceRepository) QueryVersions(ctx context.Context, resourceID string) ([]resource.Version, error) {
	query, args, err := psql.Select("*").From("resource_version").
		Where(sq.Eq{"resource_id": resourceID}).
		OrderBy(core.DBOrdering{Field: "version_number"}.String()).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building version query")
	}

	var rows []versionRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying versions")
	}

	versions := make([]resource.Version, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, resource.Version{
			ID:            row.ID,
			ResourceID:    row.ResourceID,
			FileURL:       row.FileURL.String,
			UploadedBy:    row.UploadedBy.String,
			VersionNumber: row.VersionNumber,
			CreatedAt:     row.CreatedAt.Time,
		})
	}
	return versions, nil
}

func (repo resourceRepository) NextVersionNumber(ctx context.Context, resourceID string) (int, error) {
	query, args, err := psql.Select("COALESCE(MAX(version_number), 0)").From("resource_version").
		Where(sq.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building version number query")
	}

	var max int
	if err = sqlx.GetContext(ctx, repo.db, &max, query, args...); err != nil {
		return 0, errors.Wrap(err, "getting max version number")
	}
	return max + 1, nil
}
