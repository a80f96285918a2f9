package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tradelore/tradelore/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

type userRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db sqlx.ExtContext) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) pack(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unpack(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unpackSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unpack(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	check := func(column, val string) error {
		if val == "" {
			return nil
		}
		builder := psql.Select("COUNT(*)").From(`"user"`).Where(sq.Eq{column: val})
		if len(excludedUsers) > 0 {
			ids := make([]string, 0, len(excludedUsers))
			for _, u := range excludedUsers {
				ids = append(ids, u.ID)
			}
			builder = builder.Where(sq.NotEq{"id": ids})
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}

		var count int
		if err = sqlx.GetContext(ctx, repo.db, &count, query, args...); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if count > 0 {
			if column == "username" {
				return user.ErrUsernameExists
			}
			return user.ErrEmailExists
		}
		return nil
	}

	if err := check("username", username); err != nil {
		return err
	}
	return check("email", email)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.pack(usr)

	query, args, err := psql.Insert(`"user"`).
		Columns(
			"id", "name", "username", "email", "is_active", "roles",
			"password_hash", "created_at", "updated_at", "last_login").
		Values(
			row.ID, row.Name, row.Username, row.Email, row.IsActive, row.Roles,
			row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.queryUsers(ctx, psql.Select("*").From(`"user"`).OrderBy(createdAtDesc))
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"username": username})
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"email": email})
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Or{sq.Eq{"username": username}, sq.Eq{"email": username}})
}

func (repo userRepository) getUser(ctx context.Context, pred interface{}) (user.User, error) {
	query, args, err := psql.Select("*").From(`"user"`).Where(pred).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user query")
	}

	var row userRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	builder := psql.Select("*").From(`"user"`)

	// users with search keyword matching any Name, Username or Email
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": val},
			sq.ILike{"username": val},
			sq.ILike{"email": val},
		})
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		preds := make(sq.Or, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			preds = append(preds, sq.Expr(
				`id IN (SELECT id FROM "user", UNNEST(roles) user_role WHERE user_role ILIKE ?)`,
				role+"%"))
		}
		builder = builder.Where(preds)
	}
	if filter.IsActive != nil {
		builder = builder.Where(sq.Eq{"is_active": *filter.IsActive})
	}
	if !filter.CreatedFrom.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
	}
	if !filter.CreatedTo.IsZero() {
		builder = builder.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
	}
	return repo.queryUsers(ctx, builder.OrderBy(createdAtDesc))
}

func (repo userRepository) queryUsers(ctx context.Context, builder sq.SelectBuilder) ([]user.User, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building user query")
	}

	var rows []userRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	builder := psql.Update(`"user"`).
		Set("updated_at", null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero())).
		Where(sq.Eq{"id": usr.ID})

	if usr.Name != "" {
		builder = builder.Set("name", usr.Name)
	}
	if usr.Username != "" {
		builder = builder.Set("username", usr.Username)
	}
	if usr.Email != "" {
		builder = builder.Set("email", usr.Email)
	}
	if usr.Roles != nil {
		builder = builder.Set("roles", pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		builder = builder.Set("password_hash", usr.PasswordHash)
	}
	if isActive != nil {
		builder = builder.Set("is_active", *isActive)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user update")
	}

	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Delete(`"user"`).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building user delete")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	query, args, err := psql.Update(`"user"`).
		Set("last_login", t.UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building last login update")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "setting last login")
	}
	return nil
}

func (repo userRepository) CountUsers(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(`"user"`).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building user count")
	}

	var count int
	if err = sqlx.GetContext(ctx, repo.db, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return count, nil
}

func (repo userRepository) ActiveUserIDs(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("id").From(`"user"`).Where(sq.Eq{"is_active": true}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building active user query")
	}

	var ids []string
	if err = sqlx.SelectContext(ctx, repo.db, &ids, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying active user ids")
	}
	return ids, nil
}
