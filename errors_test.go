package marketplace_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	assert.Equal(t, "configuration error: JWT_SECRET is not set", marketplace.ErrMissingSigningKey.Error())
	assert.Equal(t, "configuration error: PORT", (&marketplace.ConfigError{Key: "PORT"}).Error())

	var cerr *marketplace.ConfigError
	assert.True(t, errors.As(fmt.Errorf("boot: %w", marketplace.ErrMissingSigningKey), &cerr))
	assert.Equal(t, "JWT_SECRET", cerr.Key)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, marketplace.IsRecordNotFound(fmt.Errorf("lookup: %w", marketplace.ErrRecordNotFound)))
	assert.False(t, marketplace.IsRecordNotFound(marketplace.ErrTemplateNotFound))

	verr := &marketplace.ValidationError{Field: "email", Message: "bad"}
	assert.True(t, marketplace.IsValidationError(fmt.Errorf("wrapped: %w", verr)))
	assert.False(t, marketplace.IsValidationError(marketplace.ErrUnauthorized))
	assert.Equal(t, "bad", verr.Error())
	assert.True(t, marketplace.IsValidationError(goerrors.NewValidation("bad")))
}

func TestSentinelCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category goerrors.Category
	}{
		{"token", marketplace.ErrInvalidToken, goerrors.CategoryAuth},
		{"credentials", marketplace.ErrInvalidCredentials, goerrors.CategoryAuth},
		{"unauthorized", marketplace.ErrUnauthorized, goerrors.CategoryAuth},
		{"duplicate", marketplace.ErrDuplicateRegistration, goerrors.CategoryConflict},
		{"purchased", marketplace.ErrAlreadyPurchased, goerrors.CategoryConflict},
		{"template", marketplace.ErrTemplateNotFound, goerrors.CategoryNotFound},
		{"record", marketplace.ErrRecordNotFound, goerrors.CategoryNotFound},
		{"store", marketplace.ErrStoreUnavailable, goerrors.CategoryExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, goerrors.IsCategory(fmt.Errorf("wrapped: %w", tt.err), tt.category))
		})
	}
}

func TestIsStoreUnavailable(t *testing.T) {
	assert.True(t, marketplace.IsStoreUnavailable(marketplace.ErrStoreUnavailable))
	assert.True(t, marketplace.IsStoreUnavailable(fmt.Errorf("insert: %w", marketplace.ErrStoreUnavailable)))
	assert.False(t, marketplace.IsStoreUnavailable(errors.New("dial tcp")))
	assert.False(t, marketplace.IsStoreUnavailable(marketplace.ErrRecordNotFound))
}
