package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movielab-go/apperror"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Text  string `json:"text" validate:"min=10"`
	Year  int    `json:"year" validate:"gte=1888,lte=9999"`
}

func TestValidateStructOK(t *testing.T) {
	err := ValidateStruct(sample{Email: "a@b.io", Text: "long enough text", Year: 2020})
	assert.NoError(t, err)
}

func TestValidateStructCollectsFields(t *testing.T) {
	err := ValidateStruct(sample{Email: "nope", Text: "short", Year: 1500})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	var rve *RequestValidationError
	require.True(t, errors.As(err, &rve))
	require.Len(t, rve.Fields, 3)

	fields := map[string]string{}
	for _, f := range rve.Fields {
		fields[f.Field] = f.Tag
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["text"])
	assert.Equal(t, "gte", fields["year"])

	appErr, _ := apperror.FromError(err)
	assert.Contains(t, appErr.Message, "text must be at least 10 characters long")
}

func TestGetValidatorIsSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
