package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewSealer("portal-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("eyJhbGciOi.token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "eyJhbGciOi")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token", opened)
}

func TestSealerRejectsForeignKey(t *testing.T) {
	a, _ := NewSealer("first")
	b, _ := NewSealer("second")

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrSealedValueInvalid)

	_, err = a.Open("not-base64!!")
	assert.ErrorIs(t, err, ErrSealedValueInvalid)
}

func TestNewSealerEmptySecret(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}

func TestFormatValidationErrorsIsStable(t *testing.T) {
	msg := FormatValidationErrors(map[string]string{
		"Email": "Invalid email format",
		"Date":  "This field is required",
	})
	assert.Equal(t, "Date: This field is required; Email: Invalid email format", msg)
}
