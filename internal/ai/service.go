package ai

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lalith-99/sheetcrm/internal/localstate"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// SettingsStore persists per-user settings. *localstate.DB implements it.
type SettingsStore interface {
	GetJSON(key string, v any) error
	PutJSON(key string, v any) error
}

// ResponseCache keeps generated text. Implemented by *cache.Redis and
// *localstate.TextCache, both of which expire entries after their TTL.
type ResponseCache interface {
	GetText(ctx context.Context, key string) (string, bool, error)
	SetText(ctx context.Context, key, value string) error
}

type Service struct {
	settings SettingsStore
	defaults Settings
	cache    ResponseCache
	retry    *retry.Retrier
	client   *http.Client
	logger   *zap.Logger
}

// NewService wires the feature layer. defaults are the server-wide
// provider settings that user settings override field by field. cache may
// be nil.
func NewService(settings SettingsStore, defaults Settings, cache ResponseCache, r *retry.Retrier, logger *zap.Logger) *Service {
	return &Service{
		settings: settings,
		defaults: defaults,
		cache:    cache,
		retry:    r,
		logger:   logger,
	}
}

// WithHTTPClient sets the client used for provider calls.
func (s *Service) WithHTTPClient(c *http.Client) *Service {
	s.client = c
	return s
}

func settingsKey(email string) string {
	return "ai:settings:" + email
}

// Settings returns the effective settings of one user.
func (s *Service) Settings(ctx context.Context, email string) (Settings, error) {
	eff := s.defaults
	eff.Consent = false

	var user Settings
	err := s.settings.GetJSON(settingsKey(email), &user)
	if errors.Is(err, localstate.ErrKeyNotFound) {
		return eff, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load ai settings: %w", err)
	}
	if user.Provider != "" && user.Provider != eff.Provider {
		eff.Provider = user.Provider
		eff.APIKey = ""
		eff.Model = ""
	}
	if user.APIKey != "" {
		eff.APIKey = user.APIKey
	}
	if user.Model != "" {
		eff.Model = user.Model
	}
	eff.Consent = user.Consent
	return eff, nil
}

// SaveSettings stores the user's own settings. An unknown provider name is
// rejected before anything is written.
func (s *Service) SaveSettings(ctx context.Context, email string, in Settings) error {
	if in.Provider != "" {
		if _, ok := defaultModels[in.Provider]; !ok {
			return fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, in.Provider)
		}
	}
	in.BaseURL = ""
	if err := s.settings.PutJSON(settingsKey(email), in); err != nil {
		return fmt.Errorf("save ai settings: %w", err)
	}
	return nil
}

// CacheKey identifies a generation request.
func CacheKey(system, prompt string, temperature float64) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(temperature, 'g', -1, 64)))
	return hex.EncodeToString(h.Sum(nil))
}

// Generate answers prompt for the user with email, serving identical
// requests to the same provider and model from the response cache.
func (s *Service) Generate(ctx context.Context, email, system, prompt string, temperature float64) (string, error) {
	settings, err := s.Settings(ctx, email)
	if err != nil {
		return "", err
	}
	if !settings.Consent {
		return "", ErrConsentRequired
	}
	provider, err := NewProvider(settings, s.client)
	if err != nil {
		return "", err
	}

	key := provider.Name() + ":" + settings.ModelName() + ":" + CacheKey(system, prompt, temperature)
	if s.cache != nil {
		text, ok, err := s.cache.GetText(ctx, key)
		if err != nil {
			s.logger.Warn("ai response cache read failed", zap.Error(err))
		} else if ok {
			return text, nil
		}
	}

	text, err := retry.Value(ctx, s.retry, func(ctx context.Context) (string, error) {
		return provider.Generate(ctx, prompt, system, temperature)
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetText(ctx, key, text); err != nil {
			s.logger.Warn("ai response cache write failed", zap.Error(err))
		}
	}
	return text, nil
}
