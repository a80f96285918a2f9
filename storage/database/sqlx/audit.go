package sqlxrepos

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tradelore/tradelore/core/audit"
)

type auditRow struct {
	ID         string      `db:"id"`
	AdminID    null.String `db:"admin_id"`
	Action     string      `db:"action"`
	EntityType null.String `db:"entity_type"`
	EntityID   null.String `db:"entity_id"`
	Details    null.JSON   `db:"details"`
	CreatedAt  null.Time   `db:"created_at"`
}

type auditRepository struct {
	db sqlx.ExtContext
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db sqlx.ExtContext) *auditRepository {
	return &auditRepository{db: db}
}

func (repo auditRepository) unpack(row auditRow) (audit.Entry, error) {
	entry := audit.Entry{
		ID:         row.ID,
		AdminID:    row.AdminID.String,
		Action:     row.Action,
		EntityType: row.EntityType.String,
		EntityID:   row.EntityID.String,
		CreatedAt:  row.CreatedAt.Time,
	}
	if row.Details.Valid {
		if err := json.Unmarshal(row.Details.JSON, &entry.Details); err != nil {
			return audit.Entry{}, errors.Wrap(err, "decoding audit details")
		}
	}
	return entry, nil
}

func (repo auditRepository) CreateEntry(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	entry.ID = uuid.New().String()

	details := null.JSON{}
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return audit.Entry{}, errors.Wrap(err, "encoding audit details")
		}
		details = null.JSONFrom(raw)
	}

	query, args, err := psql.Insert("audit_log").
		Columns("id", "admin_id", "action", "entity_type", "entity_id", "details", "created_at").
		Values(
			entry.ID,
			null.NewString(entry.AdminID, entry.AdminID != ""),
			entry.Action,
			null.NewString(entry.EntityType, entry.EntityType != ""),
			null.NewString(entry.EntityID, entry.EntityID != ""),
			details,
			null.NewTime(entry.CreatedAt.UTC(), !entry.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "building audit insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return entry, nil
}

func (repo auditRepository) RecentEntries(ctx context.Context, limit int) ([]audit.Entry, error) {
	query, args, err := psql.Select("*").From("audit_log").
		OrderBy(createdAtDesc).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building audit query")
	}

	var rows []auditRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := repo.unpack(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
