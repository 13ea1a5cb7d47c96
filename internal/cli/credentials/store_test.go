package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

func TestNewContext(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(exp)})

	ctx, err := NewContext("http://localhost:8080", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", ctx.Subject)
	assert.True(t, exp.Equal(ctx.ExpiresAt))
	assert.False(t, ctx.IsExpired())

	_, err = NewContext("http://localhost:8080", "not-a-jwt")
	assert.Error(t, err)

	anonymous, err := NewContext("http://localhost:8080", "")
	require.NoError(t, err)
	assert.False(t, anonymous.IsExpired())
}

func TestContextIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{name: "expired in past", expiresAt: time.Now().Add(-1 * time.Hour), expected: true},
		{name: "not expired", expiresAt: time.Now().Add(2 * time.Hour), expected: false},
		{name: "no expiry", expiresAt: time.Time{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, ctx.IsExpired())
		})
	}
}

func TestStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filebankctl", ConfigFileName)

	store, err := NewStoreAt(path)
	require.NoError(t, err)

	_, err = store.GetCurrentContext()
	assert.ErrorIs(t, err, ErrNoCurrentContext)

	require.NoError(t, store.SetContext("local", &Context{ServerURL: "http://localhost:8080", Token: "t1"}))
	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "https://files.example.com", Token: "t2"}))
	assert.Equal(t, "prod", store.GetCurrentContextName())
	assert.Equal(t, []string{"local", "prod"}, store.ListContexts())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())

	// Reopen from disk.
	store, err = NewStoreAt(path)
	require.NoError(t, err)
	require.NoError(t, store.UseContext("local"))
	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "t1", current.Token)

	require.NoError(t, store.ClearToken())
	current, err = store.GetCurrentContext()
	require.NoError(t, err)
	assert.Empty(t, current.Token)

	assert.ErrorIs(t, store.UseContext("missing"), ErrContextNotFound)

	require.NoError(t, store.DeleteContext("local"))
	assert.Empty(t, store.GetCurrentContextName())
	assert.Equal(t, []string{"prod"}, store.ListContexts())
}

func TestNewStoreAt_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := NewStoreAt(path)
	assert.Error(t, err)
}
