package analysis

import (
	"context"
	"strings"
	"testing"
	"time"

	"mailflow/internal/ai"
	"mailflow/internal/models"
	"mailflow/internal/prompts"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator replays scripted responses and records received prompts
type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	idx := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)

	var err error
	if idx < len(g.errs) {
		err = g.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(g.responses) {
		return g.responses[idx], nil
	}
	return "ok", nil
}

func testEmail() models.Email {
	return models.Email{
		ID:        "1",
		From:      "a@x.com",
		Subject:   "Invoice",
		Body:      "Please pay invoice 42 by Friday.",
		Date:      time.Now().UTC(),
		Direction: models.DirectionReceived,
	}
}

func newTestService(gen Generator) *Service {
	return NewService(gen, prompts.NewEngine(nil), zerolog.Nop())
}

func TestAnalyze_Success(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Tone: formal\nUrgency: high\nSummary: Pay invoice 42."}}
	svc := newTestService(gen)

	result, err := svc.Analyze(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "formal", result.Tone)
	assert.Equal(t, models.UrgencyHigh, result.Urgency)
	assert.Equal(t, "Pay invoice 42.", result.Summary)

	// The prompt carries the email fields
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "a@x.com")
	assert.Contains(t, gen.prompts[0], "Invoice")
}

func TestAnalyze_FailureDefaultsUrgencyToNormal(t *testing.T) {
	gen := &stubGenerator{errs: []error{ai.ErrProviderUnavailable}}
	svc := newTestService(gen)

	result, err := svc.Analyze(context.Background(), testEmail())
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	// The result is still usable downstream
	assert.Equal(t, models.UrgencyNormal, result.Urgency)
	assert.Equal(t, "neutral", result.Tone)
}

func TestSummarize(t *testing.T) {
	gen := &stubGenerator{responses: []string{"  Customer asks about a late invoice.\n"}}
	svc := newTestService(gen)

	summary, err := svc.Summarize(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "Customer asks about a late invoice.", summary)
}

func TestSummarize_GatewayFailure(t *testing.T) {
	gen := &stubGenerator{errs: []error{ai.ErrProviderUnavailable}}
	svc := newTestService(gen)

	_, err := svc.Summarize(context.Background(), testEmail())
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestGenerateDraft(t *testing.T) {
	gen := &stubGenerator{responses: []string{"  Sure, payment is on its way.  "}}
	svc := newTestService(gen)

	draft, err := svc.GenerateDraft(context.Background(), "t1", testEmail(), "affirmative")
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "t1", draft.ThreadID)
	assert.Equal(t, "Sure, payment is on its way.", draft.Content)
	assert.Equal(t, "affirmative", draft.ContextLabel)
	assert.Equal(t, models.DraftEditable, draft.Status)
}

func TestGenerateVariants_PartialFailure(t *testing.T) {
	gen := &stubGenerator{
		responses: []string{"reply one", "", "reply three"},
		errs:      []error{nil, ai.ErrProviderUnavailable, nil},
	}
	svc := newTestService(gen)

	drafts, err := svc.GenerateVariants(context.Background(), "t1", testEmail(), 3)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Variant 1", drafts[0].ContextLabel)
	assert.Equal(t, "Variant 3", drafts[1].ContextLabel)
}

func TestGenerateVariants_AllFail(t *testing.T) {
	gen := &stubGenerator{
		errs: []error{ai.ErrProviderRateLimited, ai.ErrProviderRateLimited, ai.ErrProviderRateLimited},
	}
	svc := newTestService(gen)

	drafts, err := svc.GenerateVariants(context.Background(), "t1", testEmail(), 3)
	assert.ErrorIs(t, err, ai.ErrProviderRateLimited)
	assert.Empty(t, drafts)
}

func TestGenerateCustomDraft(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Shorter reply."}}
	svc := newTestService(gen)

	base := models.Draft{ID: "d1", Content: "A long-winded reply."}
	draft, err := svc.GenerateCustomDraft(context.Background(), "t1", testEmail(), &base, "make it shorter")
	require.NoError(t, err)
	assert.Equal(t, "Shorter reply.", draft.Content)
	assert.Equal(t, "custom: make it shorter", draft.ContextLabel)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "make it shorter")
	assert.Contains(t, gen.prompts[0], "A long-winded reply.")
}

func TestGenerateDraft_ItalianEmailGetsItalianInstruction(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Gentile cliente, certo."}}
	svc := newTestService(gen)

	email := models.Email{
		ID:      "e-it",
		From:    "cliente@example.it",
		Subject: "Fattura",
		Body:    "Gentile team, vorrei sapere quando è prevista la consegna del mio ordine. Grazie, cordiali saluti.",
	}
	_, err := svc.GenerateDraft(context.Background(), "t1", email, "affirmative")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Please respond in Italian")
}

func TestHistory_AccumulatesGeneratedDrafts(t *testing.T) {
	gen := &stubGenerator{responses: []string{"one", "two", "three"}}
	svc := newTestService(gen)

	_, err := svc.GenerateDraft(context.Background(), "t1", testEmail(), "first")
	require.NoError(t, err)
	_, err = svc.GenerateVariants(context.Background(), "t1", testEmail(), 2)
	require.NoError(t, err)

	history := svc.History()
	require.Len(t, history, 3)
	labels := make([]string, 0, len(history))
	for _, d := range history {
		labels = append(labels, d.ContextLabel)
	}
	assert.Equal(t, "first", labels[0])
	assert.True(t, strings.HasPrefix(labels[1], "Variant"))
}
