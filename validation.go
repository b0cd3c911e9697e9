package marketplace

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"
)

const (
	msgInvalidEmail          = "Please enter a valid email address"
	msgShortPassword         = "Password must be at least 8 characters long"
	msgMissingTemplateFields = "Missing required fields"
	msgTemplateIDRequired    = "Template ID required"
)

// CredentialsPayload is the body of login and registration
type CredentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email format and password length. Registration also
// caps the password at the 72 bytes bcrypt can hash.
func (p CredentialsPayload) Validate() error {
	return firstFieldError(validation.ValidateStruct(&p,
		validation.Field(&p.Email,
			validation.Required.Error(msgInvalidEmail),
			is.Email.Error(msgInvalidEmail),
		),
		validation.Field(&p.Password,
			validation.Required.Error(msgShortPassword),
			validation.Length(8, 0).Error(msgShortPassword),
		),
	), "email", "password")
}

// ValidateRegistration is Validate plus the bcrypt length cap
func (p CredentialsPayload) ValidateRegistration() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(p.Password) > 72 {
		return &ValidationError{Field: "password", Message: "Password must be at most 72 characters long"}
	}
	return nil
}

// TemplatePayload is the body of a template create request
type TemplatePayload struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	PreviewImageURL string          `json:"preview_image_url"`
	TemplateFileURL string          `json:"template_file_url"`
	Tags            []string        `json:"tags"`
	Featured        bool            `json:"featured"`
}

// Validate requires title, category and template_file_url
func (p TemplatePayload) Validate() error {
	return firstFieldError(validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error(msgMissingTemplateFields)),
		validation.Field(&p.Category, validation.Required.Error(msgMissingTemplateFields)),
		validation.Field(&p.TemplateFileURL, validation.Required.Error(msgMissingTemplateFields)),
	), "title", "category", "template_file_url")
}

// Template builds the record to insert
func (p TemplatePayload) Template(createdBy string) *Template {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Template{
		Title:           p.Title,
		Description:     p.Description,
		Category:        p.Category,
		Price:           p.Price,
		PreviewImageURL: p.PreviewImageURL,
		TemplateFileURL: p.TemplateFileURL,
		Tags:            tags,
		Featured:        p.Featured,
		CreatedBy:       createdBy,
	}
}

// PurchasePayload is the body of a purchase request
type PurchasePayload struct {
	TemplateID string `json:"template_id"`
}

// Validate requires template_id
func (p PurchasePayload) Validate() error {
	return firstFieldError(validation.ValidateStruct(&p,
		validation.Field(&p.TemplateID, validation.Required.Error(msgTemplateIDRequired)),
	), "template_id")
}

// firstFieldError reduces ozzo errors to the first failing field in order
func firstFieldError(err error, order ...string) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	for _, field := range order {
		if ferr, ok := errs[field]; ok && ferr != nil {
			return &ValidationError{Field: field, Message: ferr.Error()}
		}
	}

	for field, ferr := range errs {
		return &ValidationError{Field: field, Message: ferr.Error()}
	}
	return nil
}
