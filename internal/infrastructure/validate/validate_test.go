package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdoodle/pairing/internal/infrastructure/validate"
)

func TestRequired(t *testing.T) {
	v := validate.Required()

	assert.NoError(t, v("hello"))
	assert.Error(t, v(""))
	assert.Error(t, v("   "))
}

func TestLengthValidators(t *testing.T) {
	assert.NoError(t, validate.MinLength(3)("abc"))
	assert.Error(t, validate.MinLength(3)("ab"))

	assert.NoError(t, validate.MaxLength(3)("abc"))
	assert.Error(t, validate.MaxLength(3)("abcd"))

	assert.NoError(t, validate.Length(6)("ABC234"))
	assert.Error(t, validate.Length(6)("ABC23"))
	assert.Error(t, validate.Length(6)("ABC2345"))
}

func TestEmail(t *testing.T) {
	v := validate.Email()

	assert.NoError(t, v("ada@example.com"))
	assert.Error(t, v("not-an-email"))
	assert.Error(t, v(""))
}

func TestMatches(t *testing.T) {
	v := validate.Matches(`^[A-Z2-9]+$`, "invalid characters")

	assert.NoError(t, v("ABC234"))

	err := v("abc-0!")
	assert.EqualError(t, err, "invalid characters")
}

func TestField_PrefixesErrorsWithTheFieldName(t *testing.T) {
	v := validate.Field("code", validate.Required(), validate.Length(6))

	assert.NoError(t, v("ABC234"))

	err := v("")
	assert.ErrorContains(t, err, "code")

	err = v("ABC")
	assert.ErrorContains(t, err, "code")
	assert.ErrorContains(t, err, "exactly 6")
}

func TestCompose_FirstErrorWins(t *testing.T) {
	v := validate.Compose(validate.MinLength(3), validate.MaxLength(5))

	assert.NoError(t, v("abcd"))
	assert.ErrorContains(t, v("ab"), "at least 3")
	assert.ErrorContains(t, v("abcdef"), "no more than 5")
}
