package marketplace

import (
	"context"
)

// CatalogCache stores template listings per filter. Implementations must
// treat every failure as a miss.
type CatalogCache interface {
	Load(ctx context.Context, filter TemplateFilter) ([]*Template, bool)
	Store(ctx context.Context, filter TemplateFilter, templates []*Template)
	Invalidate(ctx context.Context)
}

type noopCatalogCache struct{}

func (noopCatalogCache) Load(context.Context, TemplateFilter) ([]*Template, bool) {
	return nil, false
}

func (noopCatalogCache) Store(context.Context, TemplateFilter, []*Template) {}

func (noopCatalogCache) Invalidate(context.Context) {}

// Catalog serves template reads through the cache and invalidates it on
// every write
type Catalog struct {
	store  TemplateStore
	cache  CatalogCache
	logger Logger
}

// NewCatalog creates a catalog. A nil cache disables caching.
func NewCatalog(store TemplateStore, cache CatalogCache) *Catalog {
	if cache == nil {
		cache = noopCatalogCache{}
	}
	return &Catalog{
		store:  store,
		cache:  cache,
		logger: defLogger{},
	}
}

// WithLogger sets the logger
func (c *Catalog) WithLogger(logger Logger) *Catalog {
	c.logger = normalizeLogger(logger)
	return c
}

// List returns the filtered listing, newest first
func (c *Catalog) List(ctx context.Context, filter TemplateFilter) ([]*Template, error) {
	if filter.Category == "all" {
		filter.Category = ""
	}

	if cached, ok := c.cache.Load(ctx, filter); ok {
		return cached, nil
	}

	templates, err := c.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.cache.Store(ctx, filter, templates)
	return templates, nil
}

// Get returns one template
func (c *Catalog) Get(ctx context.Context, id string) (*Template, error) {
	return c.store.Get(ctx, id)
}

// Create inserts a template authored by createdBy
func (c *Catalog) Create(ctx context.Context, payload TemplatePayload, createdBy string) (*Template, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	record, err := c.store.Create(ctx, payload.Template(createdBy))
	if err != nil {
		return nil, err
	}

	c.cache.Invalidate(ctx)
	c.logger.Info("template created", "id", record.ID.String(), "created_by", createdBy)
	return record, nil
}

// Update applies a partial update
func (c *Catalog) Update(ctx context.Context, id string, patch TemplatePatch) (*Template, error) {
	record, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	c.cache.Invalidate(ctx)
	return record, nil
}

// Delete removes a template
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.cache.Invalidate(ctx)
	c.logger.Info("template deleted", "id", id)
	return nil
}
