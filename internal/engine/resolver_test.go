package engine

import (
	"context"
	"testing"
	"time"

	"mailflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receivedEmail(id, from, subject string, date time.Time) models.Email {
	return models.Email{
		ID:        id,
		From:      from,
		Subject:   subject,
		Body:      "body of " + id,
		Date:      date,
		Direction: models.DirectionReceived,
	}
}

func TestResolve_SkipReasons(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	resolver := NewResolver(store, time.Hour)

	t.Run("sent email is skipped", func(t *testing.T) {
		email := receivedEmail("1", "a@x.com", "Invoice", now)
		email.Direction = models.DirectionSent

		res, err := resolver.Resolve(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, SkipNotReceived, res.Skip)
		assert.Zero(t, store.threadCount())
	})

	t.Run("stale email is skipped", func(t *testing.T) {
		email := receivedEmail("2", "a@x.com", "Invoice", now.Add(-2*time.Hour))

		res, err := resolver.Resolve(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, SkipStale, res.Skip)
		assert.Zero(t, store.threadCount())
	})

	t.Run("already referenced email is a duplicate", func(t *testing.T) {
		sourceID := "3"
		require.NoError(t, store.CreateThread(context.Background(), &models.ConversationThread{
			ThreadID: "t-dup", Sender: "dup@x.com", LastEmailDate: now,
		}))
		require.NoError(t, store.AppendMessage(context.Background(), &models.ConversationMessage{
			ID: "m1", ThreadID: "t-dup", AuthorKind: models.AuthorInboundEmail, SourceEmailID: &sourceID,
		}))

		res, err := resolver.Resolve(context.Background(), receivedEmail("3", "dup@x.com", "Invoice", now))
		require.NoError(t, err)
		assert.Equal(t, SkipDuplicate, res.Skip)
	})
}

func TestResolve_CreatesThreadOnce(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	resolver := NewResolver(store, time.Hour)

	res, err := resolver.Resolve(context.Background(), receivedEmail("1", "A@X.com", "Invoice", now))
	require.NoError(t, err)
	require.Equal(t, SkipNone, res.Skip)
	assert.True(t, res.IsNew)
	assert.Equal(t, "a@x.com", res.Thread.Sender)
	assert.Equal(t, "a@x.com_invoice", res.Thread.ThreadID)

	// Second email from the same sender resolves to the same thread even
	// with a different subject casing and a reply prefix
	res2, err := resolver.Resolve(context.Background(), receivedEmail("2", "a@x.com", "Re: INVOICE", now))
	require.NoError(t, err)
	assert.False(t, res2.IsNew)
	assert.Equal(t, res.Thread.ThreadID, res2.Thread.ThreadID)
	assert.Equal(t, 1, store.threadCount())
}

func TestResolve_ClosedThreadKeyIsDisambiguated(t *testing.T) {
	now := time.Now().UTC()
	store := newMemStore()
	resolver := NewResolver(store, time.Hour)
	ctx := context.Background()

	res, err := resolver.Resolve(ctx, receivedEmail("1", "a@x.com", "Invoice", now))
	require.NoError(t, err)
	require.Equal(t, "a@x.com_invoice", res.Thread.ThreadID)
	require.NoError(t, store.CloseThread(ctx, "a@x.com_invoice", now))

	res, err = resolver.Resolve(ctx, receivedEmail("2", "a@x.com", "Re: Invoice", now))
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, "a@x.com_invoice_1", res.Thread.ThreadID)
	require.NoError(t, store.CloseThread(ctx, "a@x.com_invoice_1", now))

	// Each closure leaves its key taken; the next exchange keeps stepping
	res, err = resolver.Resolve(ctx, receivedEmail("3", "a@x.com", "Re: Invoice", now))
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, "a@x.com_invoice_2", res.Thread.ThreadID)
	assert.Equal(t, 3, store.threadCount())
}

func TestThreadKey_Deterministic(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		subject  string
		expected string
	}{
		{name: "plain", sender: "a@x.com", subject: "Invoice", expected: "a@x.com_invoice"},
		{name: "display name stripped", sender: "Ada Smith <A@X.com>", subject: "Invoice", expected: "a@x.com_invoice"},
		{name: "reply prefix stripped", sender: "a@x.com", subject: "Re: Re: Invoice", expected: "a@x.com_invoice"},
		{name: "italian reply prefix", sender: "a@x.com", subject: "R: Fattura", expected: "a@x.com_fattura"},
		{name: "spaces and punctuation slugged", sender: "a@x.com", subject: "Invoice #42 (overdue!)", expected: "a@x.com_invoice-42-overdue"},
		{name: "empty subject", sender: "a@x.com", subject: "", expected: "a@x.com_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ThreadKey(tt.sender, tt.subject))
			// Stable across calls
			assert.Equal(t, ThreadKey(tt.sender, tt.subject), ThreadKey(tt.sender, tt.subject))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeAddress("  A@X.COM  "))
	assert.Equal(t, "a@x.com", NormalizeAddress("Ada <a@x.com>"))
	assert.Equal(t, "a@x.com", NormalizeAddress("\"Smith, Ada\" <A@x.com>"))
}

func TestResolve_PersistenceFailureSurfaces(t *testing.T) {
	store := newMemStore()
	store.failCreate = true
	resolver := NewResolver(store, time.Hour)

	_, err := resolver.Resolve(context.Background(), receivedEmail("1", "a@x.com", "Invoice", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrPersistenceFailed)
}
