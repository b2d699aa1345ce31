package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/models"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
)

func newCredentialService(t *testing.T) (*CredentialService, *repomanager.InMemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	return NewCredentialService(nil, m, 6, logging.NewNopLogger()), m
}

func testAccount() *models.Account {
	return &models.Account{
		Username: "test_farmer",
		Email:    "test_farmer@example.com",
		FullName: "Test Farmer",
		District: "Pune",
	}
}

func TestRegister_ThenVerify(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Verify(ctx, "test_farmer", "test123")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerify_WrongPassword(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	_, err = s.Verify(ctx, "test_farmer", "wrongpass")
	assert.ErrorIs(t, err, common.ErrBadCredential)
}

func TestVerify_UnknownAccount(t *testing.T) {
	s, _ := newCredentialService(t)

	_, err := s.Verify(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, common.ErrUnknownAccount)
}

func TestVerify_TouchesLastLogin(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	before, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, before.LastLoginAt)

	_, err = s.Verify(ctx, "test_farmer", "test123")
	require.NoError(t, err)

	after, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, after.LastLoginAt)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	dup := testAccount()
	dup.Email = "other@example.com"
	_, err = s.Register(ctx, dup, "otherpass")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	// the original account is untouched and still verifies
	got, err := s.Verify(ctx, "test_farmer", "test123")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	dup := testAccount()
	dup.Username = "another_farmer"
	_, err = s.Register(ctx, dup, "otherpass")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestRegister_WeakPassword(t *testing.T) {
	s, _ := newCredentialService(t)

	_, err := s.Register(context.Background(), testAccount(), "12345")
	assert.ErrorIs(t, err, common.ErrWeakPassword)
}

func TestRegister_NeverStoresPlaintext(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	acc, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, acc.PasswordHash, "test123")
	assert.NotEmpty(t, acc.PasswordHash)
}

func TestDeactivate_BlocksVerify(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	require.NoError(t, s.Deactivate(ctx, id))
	// idempotent
	require.NoError(t, s.Deactivate(ctx, id))

	_, err = s.Verify(ctx, "test_farmer", "test123")
	assert.ErrorIs(t, err, common.ErrUnknownAccount)
}

func TestChangePassword(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	err = s.ChangePassword(ctx, id, "wrongpass", "newsecret")
	assert.ErrorIs(t, err, common.ErrBadCredential)

	err = s.ChangePassword(ctx, id, "test123", "short")
	assert.ErrorIs(t, err, common.ErrWeakPassword)

	require.NoError(t, s.ChangePassword(ctx, id, "test123", "newsecret"))

	_, err = s.Verify(ctx, "test_farmer", "test123")
	assert.ErrorIs(t, err, common.ErrBadCredential)

	got, err := s.Verify(ctx, "test_farmer", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	id, err := s.Register(ctx, testAccount(), "test123")
	require.NoError(t, err)

	acc, err := s.GetProfile(ctx, id)
	require.NoError(t, err)

	acc.Village = "Shirur"
	acc.CropTypes = "sugarcane,onion"
	acc.FarmArea = 2.5
	require.NoError(t, s.UpdateProfile(ctx, acc))

	got, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Shirur", got.Village)
	assert.Equal(t, "sugarcane,onion", got.CropTypes)
	assert.Equal(t, 2.5, got.FarmArea)

	err = s.UpdateProfile(ctx, &models.Account{ID: "missing"})
	assert.ErrorIs(t, err, common.ErrUnknownAccount)
}
