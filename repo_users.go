package marketplace

import (
	"context"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

const pgUniqueViolation = "23505"

// SQLite extended result codes for UNIQUE and PRIMARY KEY constraint failures
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Users is the bun backed UserStore
type Users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ UserStore                    = (*Users)(nil)
	_ repository.Repository[*User] = (*Users)(nil)
)

// NewUsersRepository creates a new users repository. Identifiers that are
// not UUIDs are looked up by email.
func NewUsersRepository(db *bun.DB) *Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
	}
}

// FindByEmail returns the record with the exact email
func (r *Users) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := r.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// FindByID returns the record for id. Ids that are not UUIDs can never match
// and are reported as missing.
func (r *Users) FindByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	user, err := r.GetByID(ctx, uid.String())
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// Insert stores a new record. A taken email is ErrDuplicateRegistration.
func (r *Users) Insert(ctx context.Context, user *User) (*User, error) {
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}

	created, err := r.Create(ctx, user)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateRegistration
		}
		return nil, storeUnavailable(err)
	}
	return created, nil
}

// Count returns the number of registered users
func (r *Users) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return n, nil
}

// IsUniqueViolation reports whether err is a unique constraint failure from
// postgres or sqlite. It inspects driver error codes only.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}

	return false
}

func mapStoreError(err error) error {
	if repository.IsRecordNotFound(err) {
		return ErrRecordNotFound
	}
	return storeUnavailable(err)
}
