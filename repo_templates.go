package marketplace

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TemplateFilter narrows a catalog listing
type TemplateFilter struct {
	Category string `json:"category,omitempty"`
	Featured bool   `json:"featured,omitempty"`
	Search   string `json:"search,omitempty"`
}

// TemplatePatch carries the fields of a partial update. Nil fields are kept.
type TemplatePatch struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	PreviewImageURL *string          `json:"preview_image_url,omitempty"`
	TemplateFileURL *string          `json:"template_file_url,omitempty"`
	Tags            *[]string        `json:"tags,omitempty"`
	Featured        *bool            `json:"featured,omitempty"`
}

func (p TemplatePatch) apply(t *Template) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.PreviewImageURL != nil {
		t.PreviewImageURL = *p.PreviewImageURL
	}
	if p.TemplateFileURL != nil {
		t.TemplateFileURL = *p.TemplateFileURL
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.Featured != nil {
		t.Featured = *p.Featured
	}
}

// TemplateStore is the catalog persistence contract
type TemplateStore interface {
	List(ctx context.Context, filter TemplateFilter) ([]*Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	Create(ctx context.Context, template *Template) (*Template, error)
	Update(ctx context.Context, id string, patch TemplatePatch) (*Template, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Templates is the bun backed TemplateStore
type Templates struct {
	db        *bun.DB
	records   repository.Repository[*Template]
	purchases repository.Repository[*Purchase]
}

var _ TemplateStore = (*Templates)(nil)

// NewTemplatesRepository creates a new templates repository
func NewTemplatesRepository(db *bun.DB) *Templates {
	return &Templates{
		db:        db,
		records:   newTemplateRecords(db),
		purchases: newPurchaseRecords(db),
	}
}

func newTemplateRecords(db bun.IDB) repository.Repository[*Template] {
	return repository.NewRepository[*Template](db, repository.ModelHandlers[*Template]{
		NewRecord: func() *Template { return &Template{} },
		GetID: func(t *Template) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Template, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})
}

// List returns templates newest first. Category "all" is no filter and
// search matches title or description ignoring case.
func (r *Templates) List(ctx context.Context, filter TemplateFilter) ([]*Template, error) {
	criteria := []repository.SelectCriteria{
		unbounded(),
		orderBy("?TableAlias.created_at DESC"),
	}

	if filter.Category != "" && filter.Category != "all" {
		criteria = append(criteria, repository.SelectBy("category", "=", filter.Category))
	}

	if filter.Featured {
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.featured = ?", true)
		})
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(?TableAlias.title) LIKE ?", pattern).
					WhereOr("LOWER(?TableAlias.description) LIKE ?", pattern)
			})
		})
	}

	records, _, err := r.records.List(ctx, criteria...)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return records, nil
}

// Get returns a template by id
func (r *Templates) Get(ctx context.Context, id string) (*Template, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrTemplateNotFound
	}

	record, err := r.records.GetByID(ctx, uid.String())
	if err != nil {
		return nil, templateError(err)
	}
	return record, nil
}

// Create stores a new template
func (r *Templates) Create(ctx context.Context, record *Template) (*Template, error) {
	if record.Tags == nil {
		record.Tags = []string{}
	}

	ts := now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = ts
	}
	record.UpdatedAt = ts

	created, err := r.records.Create(ctx, record)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return created, nil
}

// Update applies patch to the template and bumps updated_at. The update
// writes every column so a patch can clear featured or tags.
func (r *Templates) Update(ctx context.Context, id string, patch TemplatePatch) (*Template, error) {
	record, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.apply(record)
	record.UpdatedAt = now()

	if _, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, storeUnavailable(err)
	}
	return record, nil
}

// Delete removes the template. Purchases referencing it go with it in the
// same transaction.
func (r *Templates) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrTemplateNotFound
	}

	return runInTx(ctx, r.db, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := r.records.GetByIDTx(ctx, tx, uid.String())
		if err != nil {
			return templateError(err)
		}

		if err := r.purchases.DeleteWhereTx(ctx, tx,
			repository.DeleteBy("template_id", "=", uid.String()),
		); err != nil {
			return storeUnavailable(err)
		}

		if err := r.records.DeleteTx(ctx, tx, record); err != nil {
			return storeUnavailable(err)
		}
		return nil
	})
}

// Count returns the number of templates
func (r *Templates) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*Template)(nil)).Count(ctx)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return n, nil
}

func templateError(err error) error {
	if repository.IsRecordNotFound(err) {
		return ErrTemplateNotFound
	}
	return storeUnavailable(err)
}

func unbounded() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(0).Offset(0)
	}
}

func orderBy(expr string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr(expr)
	}
}
