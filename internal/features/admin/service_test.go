package admin

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"github.com/YTstyo/Dis-karm/internal/common"
	"github.com/YTstyo/Dis-karm/internal/config"
)

type fakeSessions struct {
	sessions []Session
	failures map[int64]int
	attempts []bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{failures: make(map[int64]int)}
}

func (f *fakeSessions) CreateSession(_ context.Context, s *Session) error {
	f.sessions = append(f.sessions, *s)
	return nil
}

func (f *fakeSessions) HasActiveSession(_ context.Context, userID int64) (bool, error) {
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessions) LogAttempt(_ context.Context, userID int64, success bool) error {
	f.attempts = append(f.attempts, success)
	if !success {
		f.failures[userID]++
	}
	return nil
}

func (f *fakeSessions) RecentFailedAttempts(_ context.Context, userID int64, _ time.Duration) (int, error) {
	return f.failures[userID], nil
}

// encodeTestHash produces an argon2id hash in the same encoded form the
// verifier expects. Small parameters keep the test fast.
func encodeTestHash(password string) string {
	salt := []byte("0123456789abcdef")
	var (
		memory      uint32 = 1024
		iterations  uint32 = 1
		parallelism uint8  = 1
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestIsAuthorized(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessions()
	svc := NewService(repo, &config.Config{OwnerIDs: []int64{42}})

	assert.True(t, svc.IsAuthorized(ctx, 42), "owner is always authorized")
	assert.False(t, svc.IsAuthorized(ctx, 7))

	repo.sessions = append(repo.sessions, Session{
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	assert.True(t, svc.IsAuthorized(ctx, 7))

	// An expired session grants nothing.
	repo.sessions = []Session{{UserID: 8, ExpiresAt: time.Now().Add(-time.Minute)}}
	assert.False(t, svc.IsAuthorized(ctx, 8))
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessions()
	svc := NewService(repo, &config.Config{AdminPasswordHash: encodeTestHash("hunter2")})

	require.NoError(t, svc.Login(ctx, 7, "hunter2"))

	require.Len(t, repo.sessions, 1)
	s := repo.sessions[0]
	assert.Equal(t, int64(7), s.UserID)
	assert.NotEmpty(t, s.SessionToken)
	assert.WithinDuration(t, time.Now().Add(sessionTTL), s.ExpiresAt, time.Minute)
	assert.Equal(t, []bool{true}, repo.attempts)

	assert.True(t, svc.IsAuthorized(ctx, 7))
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessions()
	svc := NewService(repo, &config.Config{AdminPasswordHash: encodeTestHash("hunter2")})

	err := svc.Login(ctx, 7, "wrong")
	assert.ErrorIs(t, err, common.ErrWrongPassword)
	assert.Empty(t, repo.sessions)
	assert.Equal(t, []bool{false}, repo.attempts)
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessions()
	svc := NewService(repo, &config.Config{AdminPasswordHash: encodeTestHash("hunter2")})

	for i := 0; i < maxAttempts; i++ {
		err := svc.Login(ctx, 7, "wrong")
		assert.ErrorIs(t, err, common.ErrWrongPassword)
	}

	// Locked out even with the correct password.
	err := svc.Login(ctx, 7, "hunter2")
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)

	// Other users are unaffected.
	assert.NoError(t, svc.Login(ctx, 8, "hunter2"))
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	svc := NewService(newFakeSessions(), &config.Config{})
	err := svc.Login(context.Background(), 7, "anything")
	assert.ErrorIs(t, err, common.ErrNotAdmin)
}

func TestVerifyArgon2idMalformed(t *testing.T) {
	assert.False(t, verifyArgon2id("pw", ""))
	assert.False(t, verifyArgon2id("pw", "$argon2id$v=19$broken"))
	assert.False(t, verifyArgon2id("pw", "$argon2id$v=19$m=1024,t=1,p=1$!!!$!!!"))
}
