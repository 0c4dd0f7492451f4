package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edustack/tutor-platform/internal/queue"
)

// DefaultCodeTTL is how long a one-time code stays valid.
const DefaultCodeTTL = 5 * time.Minute

// CodeStore keeps one-time codes keyed by destination address with an
// expiry. Expired keys read as absent.
type CodeStore interface {
	Put(ctx context.Context, addr, code string, ttl time.Duration) error
	Get(ctx context.Context, addr string) (string, bool, error)
	Delete(ctx context.Context, addr string) error
}

// RedisCodeStore stores codes in Redis, relying on key TTL for expiry.
type RedisCodeStore struct {
	rdb *redis.Client
}

// NewRedisCodeStore constructs a RedisCodeStore.
func NewRedisCodeStore(rdb *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{rdb: rdb}
}

func codeKey(addr string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(addr))
}

func (s *RedisCodeStore) Put(ctx context.Context, addr, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, codeKey(addr), code, ttl).Err()
}

func (s *RedisCodeStore) Get(ctx context.Context, addr string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, codeKey(addr)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, addr string) error {
	return s.rdb.Del(ctx, codeKey(addr)).Err()
}

// MemoryCodeStore is the in-process fallback used when Redis is not
// configured. The clock is injected so expiry is testable without real
// time passing.
type MemoryCodeStore struct {
	mu      sync.Mutex
	entries map[string]memCode
	now     func() time.Time
}

type memCode struct {
	code      string
	expiresAt time.Time
}

// NewMemoryCodeStore constructs a MemoryCodeStore. A nil clock defaults to
// time.Now.
func NewMemoryCodeStore(now func() time.Time) *MemoryCodeStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCodeStore{entries: make(map[string]memCode), now: now}
}

func (s *MemoryCodeStore) Put(_ context.Context, addr, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[codeKey(addr)] = memCode{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, addr string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[codeKey(addr)]
	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, codeKey(addr))
		return "", false, nil
	}
	return e.code, true, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, codeKey(addr))
	return nil
}

// MailPublisher delivers mail requests to the out-of-band transport.
type MailPublisher interface {
	PublishMail(ctx context.Context, m queue.MailRequested) error
}

// CodeService issues and verifies 6-digit one-time codes for out-of-band
// identity confirmation. Codes are single use: a successful verification
// invalidates the code immediately.
type CodeService struct {
	store CodeStore
	mail  MailPublisher
	ttl   time.Duration
}

// NewCodeService constructs a CodeService. A non-positive ttl falls back to
// DefaultCodeTTL.
func NewCodeService(store CodeStore, mail MailPublisher, ttl time.Duration) *CodeService {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeService{store: store, mail: mail, ttl: ttl}
}

// generateCode returns a random 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Send stores a fresh code for the address and publishes the delivery
// request. A failed publish leaves no usable code behind.
func (s *CodeService) Send(ctx context.Context, email string) error {
	if email == "" {
		return ErrValidation
	}
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.store.Put(ctx, email, code, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m := queue.MailRequested{
		To:      email,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())),
	}
	if err := s.mail.PublishMail(ctx, m); err != nil {
		_ = s.store.Delete(ctx, email)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Verify checks a submitted code. Missing and expired codes, as well as
// mismatches, all fail validation; a correct code is consumed on first use.
func (s *CodeService) Verify(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return ErrValidation
	}
	stored, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok || stored != code {
		return ErrValidation
	}
	if err := s.store.Delete(ctx, email); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
