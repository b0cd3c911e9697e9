package marketplace

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Purchasing records template purchases for user accounts
type Purchasing struct {
	purchases PurchaseStore
	templates TemplateStore
	logger    Logger
}

// NewPurchasing creates the purchase service
func NewPurchasing(purchases PurchaseStore, templates TemplateStore) *Purchasing {
	return &Purchasing{
		purchases: purchases,
		templates: templates,
		logger:    defLogger{},
	}
}

// WithLogger sets the logger
func (p *Purchasing) WithLogger(logger Logger) *Purchasing {
	p.logger = normalizeLogger(logger)
	return p
}

// List returns the user's purchases newest first
func (p *Purchasing) List(ctx context.Context, userID string) ([]*Purchase, error) {
	return p.purchases.ListByUser(ctx, userID)
}

// Buy records the purchase of templateID by userID
func (p *Purchasing) Buy(ctx context.Context, userID string, in PurchasePayload) (*Purchase, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	template, err := p.templates.Get(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}

	if _, err := p.purchases.Find(ctx, userID, in.TemplateID); err == nil {
		return nil, ErrAlreadyPurchased
	} else if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	record, err := p.purchases.Create(ctx, &Purchase{
		UserID:     uid,
		TemplateID: template.ID,
	})
	if err != nil {
		return nil, err
	}

	record.Template = template
	p.logger.Info("template purchased", "user_id", userID, "template_id", template.ID.String())
	return record, nil
}
