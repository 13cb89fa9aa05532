package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changehub/backend/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:       "3f0a8f5e-0000-0000-0000-000000000001",
		Username: "alice",
		Role:     model.UserRoleUser,
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)
	user := testUser()

	token, err := tm.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Username, identity.Username)
	assert.Equal(t, model.UserRoleUser, identity.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", -time.Minute)
	token, err := tm.Issue(testUser())
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenManager("right-secret", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := tm.Verify(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestTokenManager_Tampered(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)
	token, err := tm.Issue(testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Verify(tampered)
	assert.Error(t, err)
}
