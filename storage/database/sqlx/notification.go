package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tradelore/tradelore/core/notification"
)

type notificationRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Title     null.String `db:"title"`
	Message   null.String `db:"message"`
	IsRead    bool        `db:"is_read"`
	CreatedAt null.Time   `db:"created_at"`
}

type notificationRepository struct {
	db sqlx.ExtContext
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db sqlx.ExtContext) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) unpack(row notificationRow) notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title.String,
		Message:   row.Message.String,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt.Time,
	}
}

func (repo notificationRepository) CreateNotifications(ctx context.Context, ns []notification.Notification) ([]notification.Notification, error) {
	if len(ns) == 0 {
		return ns, nil
	}

	builder := psql.Insert("notification").
		Columns("id", "user_id", "title", "message", "is_read", "created_at")
	for i := range ns {
		ns[i].ID = uuid.New().String()
		builder = builder.Values(
			ns[i].ID, ns[i].UserID,
			null.NewString(ns[i].Title, ns[i].Title != ""),
			null.NewString(ns[i].Message, ns[i].Message != ""),
			ns[i].IsRead,
			null.NewTime(ns[i].CreatedAt.UTC(), !ns[i].CreatedAt.IsZero()))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building notification insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return nil, errors.Wrap(err, "inserting notifications")
	}
	return ns, nil
}

func (repo notificationRepository) RecentNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	query, args, err := psql.Select("*").From("notification").
		Where(sq.Eq{"user_id": userID}).
		OrderBy(createdAtDesc).
		Limit(notification.RecentLimit).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building notification query")
	}

	var rows []notificationRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}

	ns := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		ns = append(ns, repo.unpack(row))
	}
	return ns, nil
}

func (repo notificationRepository) MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Update("notification").
		Set("is_read", true).
		Where(sq.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building notification update")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}

func (repo notificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	query, args, err := psql.Update("notification").
		Set("is_read", true).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building notification update")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}
