package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the credential record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          string    `bun:"role,notnull,default:'user'" json:"role"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Identity adapts the record into an Identity
func (u *User) Identity() Identity {
	return NewIdentityFromUser(u)
}

// Template is a catalog entry
type Template struct {
	bun.BaseModel   `bun:"table:templates,alias:tpl"`
	ID              uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	Title           string          `bun:"title,notnull" json:"title"`
	Description     string          `bun:"description,notnull" json:"description"`
	Category        string          `bun:"category,notnull" json:"category"`
	Price           decimal.Decimal `bun:"price,type:numeric(10,2),notnull" json:"price"`
	PreviewImageURL string          `bun:"preview_image_url,notnull" json:"preview_image_url"`
	TemplateFileURL string          `bun:"template_file_url,notnull" json:"template_file_url"`
	Tags            []string        `bun:"tags" json:"tags"`
	Featured        bool            `bun:"featured,notnull" json:"featured"`
	CreatedBy       string          `bun:"created_by" json:"created_by"`
	CreatedAt       time.Time       `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull" json:"updated_at"`
}

// Purchase links a user to a template they bought
type Purchase struct {
	bun.BaseModel `bun:"table:purchases,alias:pch"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	TemplateID    uuid.UUID `bun:"template_id,type:uuid,notnull" json:"template_id"`
	PurchasedAt   time.Time `bun:"purchased_at,notnull" json:"purchased_at"`
	Template      *Template `bun:"rel:belongs-to,join:template_id=id" json:"template,omitempty"`
}

// Stats holds the admin dashboard counters
type Stats struct {
	Users     int `json:"users"`
	Templates int `json:"templates"`
	Purchases int `json:"purchases"`
}

func now() time.Time {
	return time.Now().UTC()
}
