package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a controllable clock for the in-memory code store.
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestCodeSendAndVerify(t *testing.T) {
	ctx := context.Background()
	clock, _ := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryCodeStore(clock)
	mail := &fakeMail{}
	svc := NewCodeService(store, mail, DefaultCodeTTL)

	require.NoError(t, svc.Send(ctx, "u@example.com"))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "u@example.com", mail.sent[0].To)

	code, ok, err := store.Get(ctx, "u@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, code, 6)

	// Wrong code fails and leaves the stored one usable.
	assert.ErrorIs(t, svc.Verify(ctx, "u@example.com", "000000"), ErrValidation)
	require.NoError(t, svc.Verify(ctx, "u@example.com", code))

	// A code is single use.
	assert.ErrorIs(t, svc.Verify(ctx, "u@example.com", code), ErrValidation)
}

func TestCodeExpiry(t *testing.T) {
	ctx := context.Background()
	clock, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryCodeStore(clock)
	svc := NewCodeService(store, &fakeMail{}, DefaultCodeTTL)

	require.NoError(t, svc.Send(ctx, "u@example.com"))
	code, _, err := store.Get(ctx, "u@example.com")
	require.NoError(t, err)

	// Just inside the window the code still verifies; past it, it reads as
	// absent.
	advance(DefaultCodeTTL + time.Second)
	assert.ErrorIs(t, svc.Verify(ctx, "u@example.com", code), ErrValidation)
}

func TestCodeAddressIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	clock, _ := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryCodeStore(clock)
	svc := NewCodeService(store, &fakeMail{}, 0)

	require.NoError(t, svc.Send(ctx, "User@Example.com"))
	code, ok, err := store.Get(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, svc.Verify(ctx, "USER@EXAMPLE.COM", code))
}

func TestCodeFailedPublishLeavesNoCode(t *testing.T) {
	ctx := context.Background()
	clock, _ := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryCodeStore(clock)
	mail := &fakeMail{err: assert.AnError}
	svc := NewCodeService(store, mail, DefaultCodeTTL)

	assert.ErrorIs(t, svc.Send(ctx, "u@example.com"), ErrUnavailable)
	_, ok, err := store.Get(ctx, "u@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "a failed publish must not leave a usable code behind")
}

func TestGenerateCodeShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
