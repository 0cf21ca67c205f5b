package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lalith-99/sheetcrm/internal/localstate"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	svc   *Service
	calls *atomic.Int32
	// fail makes the next n provider calls answer 503.
	fail *atomic.Int32
}

func setupService(t *testing.T, answer string) *testEnv {
	t.Helper()
	env := &testEnv{calls: &atomic.Int32{}, fail: &atomic.Int32{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.calls.Add(1)
		if env.fail.Load() > 0 {
			env.fail.Add(-1)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + quote(answer) + `}}]}`))
	}))
	t.Cleanup(srv.Close)

	db, err := localstate.Open(localstate.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	defaults := Settings{Provider: ProviderOpenAI, APIKey: "server-key", BaseURL: srv.URL}
	r := retry.New(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}, zap.NewNop())
	env.svc = NewService(db, defaults, db.TextCache("ai:resp:", time.Hour), r, zap.NewNop())
	return env
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (e *testEnv) consent(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, e.svc.SaveSettings(context.Background(), email, Settings{Consent: true}))
}

func TestGenerate_RequiresConsent(t *testing.T) {
	env := setupService(t, "hi")

	_, err := env.svc.Generate(context.Background(), "ann@acme.io", "s", "p", 0)

	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Equal(t, int32(0), env.calls.Load())
}

func TestGenerate_CachesIdenticalRequests(t *testing.T) {
	env := setupService(t, "hi")
	env.consent(t, "ann@acme.io")
	ctx := context.Background()

	first, err := env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0.3)
	require.NoError(t, err)
	second, err := env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0.3)
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0.4)
	require.NoError(t, err)

	assert.Equal(t, "hi", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), env.calls.Load(), "temperature is part of the cache key")
}

func TestGenerate_ModelIsPartOfCacheKey(t *testing.T) {
	env := setupService(t, "hi")
	env.consent(t, "ann@acme.io")
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0)
	require.NoError(t, err)
	require.NoError(t, env.svc.SaveSettings(ctx, "ann@acme.io", Settings{Model: "gpt-4o", Consent: true}))
	_, err = env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0)
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0)
	require.NoError(t, err)

	assert.Equal(t, int32(2), env.calls.Load())
}

func TestSettings_ModelName(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", Settings{Provider: ProviderOpenAI}.ModelName())
	assert.Equal(t, "gpt-4o", Settings{Provider: ProviderOpenAI, Model: "gpt-4o"}.ModelName())
}

func TestGenerate_RetriesProviderErrors(t *testing.T) {
	env := setupService(t, "hi")
	env.consent(t, "ann@acme.io")
	env.fail.Store(2)

	text, err := env.svc.Generate(context.Background(), "ann@acme.io", "s", "p", 0)

	require.NoError(t, err)
	assert.Equal(t, "hi", text)
	assert.Equal(t, int32(3), env.calls.Load())
}

func TestGenerate_GivesUp(t *testing.T) {
	env := setupService(t, "hi")
	env.consent(t, "ann@acme.io")
	env.fail.Store(3)

	_, err := env.svc.Generate(context.Background(), "ann@acme.io", "s", "p", 0)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
}

func TestSettings_UserOverridesDefaults(t *testing.T) {
	env := setupService(t, "hi")
	ctx := context.Background()

	def, err := env.svc.Settings(ctx, "ann@acme.io")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, def.Provider)
	assert.False(t, def.Consent)

	require.NoError(t, env.svc.SaveSettings(ctx, "ann@acme.io", Settings{Provider: ProviderGemini, Consent: true}))
	got, err := env.svc.Settings(ctx, "ann@acme.io")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, got.Provider)
	assert.Empty(t, got.APIKey, "server key belongs to another provider")
	assert.True(t, got.Consent)

	_, err = env.svc.Generate(ctx, "ann@acme.io", "s", "p", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, env.svc.SaveSettings(ctx, "ann@acme.io", Settings{Provider: "mistral"}), ErrNotConfigured)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("s", "p", 0.5)
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey("s", "p", 0.5))
	assert.NotEqual(t, a, CacheKey("sp", "", 0.5))
	assert.NotEqual(t, a, CacheKey("s", "p", 0.6))
}

func TestSummarizeCompany(t *testing.T) {
	env := setupService(t, "**Key account**")
	env.consent(t, "ann@acme.io")

	res, err := env.svc.SummarizeCompany(context.Background(), "ann@acme.io", CompanyContext{
		Company:    models.Company{Name: "Acme", City: "Berlin"},
		Contacts:   []models.Contact{{Name: "Bob", Position: "CTO"}},
		Activities: []models.Activity{{Type: "MEETING", Title: "Kickoff", Date: "2024-03-01", Status: models.StatusCompleted}},
		Types:      models.DefaultActivityTypes(),
	})

	require.NoError(t, err)
	assert.Equal(t, "**Key account**", res.Text)
	assert.Equal(t, "<p><strong>Key account</strong></p>\n", res.HTML)
}

func TestDescribeCompany(t *testing.T) {
	text := describeCompany(CompanyContext{
		Company:    models.Company{Name: "Acme", Country: "DE"},
		Activities: []models.Activity{{Type: "MEETING", Title: "Kickoff", Date: "2024-03-01T10:00:00.000Z", Status: models.StatusPlanned}},
		History:    []models.HistoryEntry{{Timestamp: "2024-02-01T10:00:00.000Z", Content: "Called"}},
		Types:      models.DefaultActivityTypes(),
	})

	assert.Contains(t, text, "Company: Acme\n")
	assert.Contains(t, text, "Location: DE\n")
	assert.Contains(t, text, "- 2024-03-01 Meeting [planned] Kickoff\n")
	assert.Contains(t, text, "- 2024-02-01 Called\n")
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	html, err := RenderMarkdown("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
