package marketplace

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PurchaseStore is the purchase persistence contract
type PurchaseStore interface {
	ListByUser(ctx context.Context, userID string) ([]*Purchase, error)
	Find(ctx context.Context, userID, templateID string) (*Purchase, error)
	Create(ctx context.Context, purchase *Purchase) (*Purchase, error)
	Count(ctx context.Context) (int, error)
}

// Purchases is the bun backed PurchaseStore
type Purchases struct {
	db      *bun.DB
	records repository.Repository[*Purchase]
}

var _ PurchaseStore = (*Purchases)(nil)

// NewPurchasesRepository creates a new purchases repository
func NewPurchasesRepository(db *bun.DB) *Purchases {
	return &Purchases{
		db:      db,
		records: newPurchaseRecords(db),
	}
}

func newPurchaseRecords(db bun.IDB) repository.Repository[*Purchase] {
	return repository.NewRepository[*Purchase](db, repository.ModelHandlers[*Purchase]{
		NewRecord: func() *Purchase { return &Purchase{} },
		GetID: func(p *Purchase) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Purchase, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})
}

// ListByUser returns the user's purchases newest first with the template
// embedded
func (r *Purchases) ListByUser(ctx context.Context, userID string) ([]*Purchase, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []*Purchase{}, nil
	}

	records, _, err := r.records.List(ctx,
		unbounded(),
		repository.Relation("Template"),
		repository.SelectBy("user_id", "=", uid.String()),
		orderBy("?TableAlias.purchased_at DESC"),
	)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return records, nil
}

// Find returns the purchase of templateID by userID, ErrRecordNotFound when
// there is none
func (r *Purchases) Find(ctx context.Context, userID, templateID string) (*Purchase, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	tid, err := uuid.Parse(templateID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	record, err := r.records.Get(ctx,
		repository.SelectBy("user_id", "=", uid.String()),
		repository.SelectBy("template_id", "=", tid.String()),
	)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return record, nil
}

// Create stores the purchase. Buying the same template twice is
// ErrAlreadyPurchased.
func (r *Purchases) Create(ctx context.Context, record *Purchase) (*Purchase, error) {
	if record.PurchasedAt.IsZero() {
		record.PurchasedAt = now()
	}

	created, err := r.records.Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAlreadyPurchased
		}
		return nil, storeUnavailable(err)
	}
	return created, nil
}

// Count returns the number of purchases
func (r *Purchases) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*Purchase)(nil)).Count(ctx)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return n, nil
}
