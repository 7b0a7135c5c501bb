package referral

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

func TestError_Message(t *testing.T) {
	cause := fmt.Errorf("insert account 4: %w", store.ErrDuplicateID)

	assert.Equal(t,
		"item 2: conflict: account 4 already exists: insert account 4: account id already exists",
		newConflictError(2, 4, cause).Error())

	v := newValidationError(NoIndex, &account.FieldError{Field: "account_id", Err: account.ErrMissing})
	assert.Equal(t, "validation: account_id is required", v.Error())
}

func TestError_Classification(t *testing.T) {
	storage := newStorageError(NoIndex, errors.New("broken pipe"))
	wrapped := fmt.Errorf("handler: %w", storage)

	assert.Equal(t, KindStorage, KindOf(wrapped))
	assert.True(t, IsStorage(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestClassify(t *testing.T) {
	item := account.Item{AccountID: 9, IntroducerID: 1}

	dup := classify(0, item, fmt.Errorf("insert: %w", store.ErrDuplicateID))
	assert.Equal(t, KindConflict, dup.Kind)
	assert.ErrorIs(t, dup, store.ErrDuplicateID)

	other := classify(3, item, errors.New("timeout"))
	assert.Equal(t, KindStorage, other.Kind)
	assert.Equal(t, 3, other.Index)
	assert.ErrorContains(t, other, "account 9: timeout")
}
