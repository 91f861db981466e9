package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyPredicates(t *testing.T) {
	validation := Validation("missing fields", "name", "price")
	notFound := NotFound("product", 42)
	conflict := Conflict("order", 7, "already approved")
	storage := Storage("list products", errors.New("connection refused"))

	assert.True(t, IsValidation(validation))
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsStorage(storage))

	assert.False(t, IsValidation(notFound))
	assert.False(t, IsNotFound(conflict))
	assert.False(t, IsConflict(storage))
	assert.False(t, IsStorage(validation))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NotFound("order", 3))
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Resource)
}

func TestStorageUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("get order", cause)
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Storage("noop", nil))
}

func TestValidationErrorMessageListsFields(t *testing.T) {
	err := Validation("missing or invalid product fields", "name", "price")
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "price")
}
