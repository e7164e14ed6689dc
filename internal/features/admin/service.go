// Package admin — service.go: authorization checks and the password login.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"github.com/YTstyo/Dis-karm/internal/common"
	"github.com/YTstyo/Dis-karm/internal/config"
)

// Sessions is the persistence the service needs; *Repository implements it.
type Sessions interface {
	CreateSession(ctx context.Context, s *Session) error
	HasActiveSession(ctx context.Context, userID int64) (bool, error)
	LogAttempt(ctx context.Context, userID int64, success bool) error
	RecentFailedAttempts(ctx context.Context, userID int64, window time.Duration) (int, error)
}

// Service decides who may run karmaadmin commands.
type Service struct {
	repo Sessions
	cfg  *config.Config
}

// NewService creates the admin service.
func NewService(repo Sessions, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// IsAuthorized reports whether the user may run privileged commands: either
// a configured owner or a holder of an active login session.
func (s *Service) IsAuthorized(ctx context.Context, userID int64) bool {
	for _, id := range s.cfg.OwnerIDs {
		if id == userID {
			return true
		}
	}
	active, err := s.repo.HasActiveSession(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Session check failed")
		return false
	}
	return active
}

// Login verifies the admin password (argon2id) and opens a session. Three
// failed attempts within an hour lock the user out for the rest of it.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if s.cfg.AdminPasswordHash == "" {
		return common.ErrNotAdmin
	}

	attempts, err := s.repo.RecentFailedAttempts(ctx, userID, attemptWindow)
	if err != nil {
		return err
	}
	if attempts >= maxAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)
	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Warn("Could not log login attempt")
	}
	if !match {
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Admin session opened")
	return nil
}

// --- crypto helpers ---

// verifyArgon2id checks a password against an encoded argon2id hash of the
// form $argon2id$v=19$m=65536,t=3,p=2$<salt_b64>$<hash_b64>.
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Malformed argon2id hash in config")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Could not parse argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Could not decode argon2id salt")
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Could not decode argon2id hash")
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
