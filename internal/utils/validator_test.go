// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Email string `validate:"required,email"`
	State string `validate:"required,us_state"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sampleForm{Email: "a@example.com", State: "TX"}))
	assert.Error(t, ValidateStruct(&sampleForm{Email: "not-an-email", State: "TX"}))
	assert.Error(t, ValidateStruct(&sampleForm{Email: "a@example.com", State: "Texas"}))
	assert.Error(t, ValidateStruct(&sampleForm{Email: "a@example.com", State: "tx"}))
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&sampleForm{State: "ZZZ"})
	require.Error(t, err)

	errors := GetValidationErrors(err)
	require.Len(t, errors, 2)
	assert.Equal(t, "email", errors[0].Field)
	assert.Equal(t, "required", errors[0].Tag)
	assert.Equal(t, "state", errors[1].Field)
	assert.Equal(t, "us_state", errors[1].Tag)

	assert.Empty(t, GetValidationErrors(nil))
}
