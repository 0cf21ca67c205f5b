package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/ai"
	"github.com/lalith-99/sheetcrm/internal/auth"
	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/customfield"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/localstate"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository/sheetstore"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/lalith-99/sheetcrm/internal/sheets"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret     = "test-secret"
	testPassphrase = "open sesame"
	testUser       = "ann@acme.io"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	mem    *sheets.Memory
	token  string
	// aiCalls counts requests that reached the fake model API.
	aiCalls int
	// healthErr is what the backend ping returns.
	healthErr error
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }

	ts := &testServer{mem: sheets.NewMemory(sheetstore.SheetNames()...)}
	r := retry.New(retry.Policy{Attempts: 1}, logger)
	store := sheetstore.New(ts.mem, cache.New(time.Minute), r, logger).WithClock(clock)
	require.NoError(t, store.EnsureHeaders(ctx))

	types := models.DefaultActivityTypes()
	hub := realtime.NewHub(logger)
	t.Cleanup(hub.Close)
	hist := history.NewLogger(sheetstore.NewHistoryStore(store), types, logger).WithClock(clock)
	acts := activity.NewService(sheetstore.NewActivityStore(store), hist, types, logger).
		WithClock(clock).
		WithPublisher(hub)

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ts.aiCalls++
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"- **Warm** lead"}}]}`)
	}))
	t.Cleanup(model.Close)
	state, err := localstate.Open(localstate.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })
	aiSvc := ai.NewService(state, ai.Settings{Provider: ai.ProviderOpenAI, APIKey: "k", BaseURL: model.URL},
		state.TextCache("ai:", time.Hour), r, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassphrase), bcrypt.MinCost)
	require.NoError(t, err)

	ts.router = NewRouter(Deps{
		JWTSecret:    testSecret,
		AccessHash:   string(hash),
		Companies:    sheetstore.NewCompanyStore(store),
		Contacts:     sheetstore.NewContactStore(store),
		Tags:         sheetstore.NewTagStore(store),
		Preferences:  sheetstore.NewPreferencesStore(store),
		Loader:       sheetstore.NewLoader(store),
		Activities:   acts,
		History:      hist,
		CustomFields: customfield.NewService(sheetstore.NewCustomFieldStore(store), logger),
		AI:           aiSvc,
		Hub:          hub,
		Health:       func(context.Context) error { return ts.healthErr },
		Refresh:      store.InvalidateAll,
		Logger:       logger,
	})

	ts.token, err = auth.GenerateToken(testUser, "Ann", testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// do sends body as JSON (unless it is already a string) with the session
// token and returns the recorder.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
		contentType = "application/x-www-form-urlencoded"
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) createCompany(t *testing.T, name, domain string) models.Company {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/v1/companies", gin.H{"name": name, "domain": domain})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Company](t, w)
}
