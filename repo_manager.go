package marketplace

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() *Users
	Templates() TemplateStore
	Purchases() PurchaseStore
	Stats(ctx context.Context) (Stats, error)
}

type mngr struct {
	db        *bun.DB
	users     *Users
	templates TemplateStore
	purchases PurchaseStore
}

// NewRepositoryManager wires every bun repository to db
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		templates: NewTemplatesRepository(db),
		purchases: NewPurchasesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager needs a database")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.templates == nil {
		return errors.New("repository templates should be initialized")
	}

	if m.purchases == nil {
		return errors.New("repository purchases should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return runInTx(ctx, m.db, opts, f)
}

// runInTx is the single transaction entry point for the manager and the
// stores. A cancelled context never opens a transaction.
func runInTx(ctx context.Context, db *bun.DB, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() *Users {
	return m.users
}

func (m mngr) Templates() TemplateStore {
	return m.templates
}

func (m mngr) Purchases() PurchaseStore {
	return m.purchases
}

// Stats counts users, templates and purchases
func (m mngr) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error

	if out.Users, err = m.users.Count(ctx); err != nil {
		return Stats{}, err
	}
	if out.Templates, err = m.templates.Count(ctx); err != nil {
		return Stats{}, err
	}
	if out.Purchases, err = m.purchases.Count(ctx); err != nil {
		return Stats{}, err
	}

	return out, nil
}
