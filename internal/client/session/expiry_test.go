package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"jobtrack/internal/client/session"
)

func safeUnpatch(t *testing.T, patch *mpatch.Patch) {
	t.Helper()
	if patch != nil {
		if err := patch.Unpatch(); err != nil {
			t.Logf("Failed to unpatch: %v", err)
		}
	}
}

func TestIsExpiring(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	nowPatch, err := mpatch.PatchMethod(time.Now, func() time.Time { return now })
	require.NoError(t, err, "Failed to patch time.Now")
	defer safeUnpatch(t, nowPatch)

	const skew = 30 * time.Second

	tests := []struct {
		name      string
		session   *session.Session
		expecting bool
	}{
		{
			name:      "nil session is always expiring",
			session:   nil,
			expecting: true,
		},
		{
			name:      "expires just inside the skew window",
			session:   &session.Session{AccessToken: "a", ExpiresAt: now.Add(skew - time.Millisecond)},
			expecting: true,
		},
		{
			name:      "expires exactly at the skew boundary",
			session:   &session.Session{AccessToken: "a", ExpiresAt: now.Add(skew)},
			expecting: true,
		},
		{
			name:      "expires just outside the skew window",
			session:   &session.Session{AccessToken: "a", ExpiresAt: now.Add(skew + time.Millisecond)},
			expecting: false,
		},
		{
			name:      "already expired",
			session:   &session.Session{AccessToken: "a", ExpiresAt: now.Add(-time.Hour)},
			expecting: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expecting, session.IsExpiring(tt.session, skew))
		})
	}
}

func TestIsExpiringNegativeSkewUsesDefault(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	nowPatch, err := mpatch.PatchMethod(time.Now, func() time.Time { return now })
	require.NoError(t, err, "Failed to patch time.Now")
	defer safeUnpatch(t, nowPatch)

	s := &session.Session{AccessToken: "a", ExpiresAt: now.Add(session.DefaultExpirySkew - time.Second)}
	assert.True(t, session.IsExpiring(s, -1))

	s.ExpiresAt = now.Add(session.DefaultExpirySkew + time.Second)
	assert.False(t, session.IsExpiring(s, -1))
}
