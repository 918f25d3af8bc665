package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyValidator_ClientInsecureMode(t *testing.T) {
	v := NewAPIKeyValidator(TierClient, nil)

	result, err := v.Validate("")
	require.NoError(t, err)
	assert.True(t, result.Insecure)
	assert.Equal(t, "insecure_mode", result.KeyID)
}

func TestAPIKeyValidator_ClientValidKey(t *testing.T) {
	v := NewAPIKeyValidator(TierClient, []string{"sk-valid"})

	result, err := v.Validate("sk-valid")
	require.NoError(t, err)
	assert.False(t, result.Insecure)
	assert.Equal(t, "sk-valid", result.KeyID)
}

func TestAPIKeyValidator_ClientInvalidKey(t *testing.T) {
	v := NewAPIKeyValidator(TierClient, []string{"sk-valid"})

	_, err := v.Validate("sk-wrong")
	assert.ErrorIs(t, err, ErrInvalidClientKey)
}

func TestAPIKeyValidator_AdminNotConfigured(t *testing.T) {
	v := NewAPIKeyValidator(TierAdmin, nil)

	_, err := v.Validate("anything")
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
}

func TestAPIKeyValidator_AdminValidKey(t *testing.T) {
	v := NewAPIKeyValidator(TierAdmin, []string{"admin-key"})

	result, err := v.Validate("admin-key")
	require.NoError(t, err)
	assert.Equal(t, "admin-key", result.KeyID)
}

func TestAPIKeyValidator_AdminInvalidKey(t *testing.T) {
	v := NewAPIKeyValidator(TierAdmin, []string{"admin-key"})

	_, err := v.Validate("wrong")
	assert.ErrorIs(t, err, ErrInvalidAdminKey)
}

func TestAPIKeyValidator_AddRemove(t *testing.T) {
	v := NewAPIKeyValidator(TierClient, []string{"sk-one"})
	assert.True(t, v.Configured())

	v.Add("sk-two")
	result, err := v.Validate("sk-two")
	require.NoError(t, err)
	assert.Equal(t, "sk-two", result.KeyID)

	v.Remove("sk-two")
	_, err = v.Validate("sk-two")
	assert.ErrorIs(t, err, ErrInvalidClientKey)
}
