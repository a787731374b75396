package settings

import (
	"context"
	"errors"
	"padelhub/pkg/config"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/validation"
)

type Service interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, patch *Patch) (Settings, error)
}

type settingsService struct {
	repo  Repository
	cache Cache
	cfg   *config.Config
}

func NewService(repo Repository, cache Cache, cfg *config.Config) Service {
	return &settingsService{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *settingsService) Get(ctx context.Context) (Settings, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	current, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}

	s.cache.Set(ctx, current)
	return current, nil
}

func (s *settingsService) Update(ctx context.Context, patch *Patch) (Settings, error) {
	if patch == nil {
		return Settings{}, apperrors.InvalidInput("Settings update cannot be empty")
	}

	current, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}

	merged, changed := patch.Apply(current)
	if len(changed) == 0 {
		return current, nil
	}

	if err := merged.Validate(); err != nil {
		s.cfg.Log.Warn("Settings validation failed", "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return Settings{}, apperrors.Validation("Settings validation failed", verrs.Details())
		}
		return Settings{}, apperrors.Validation("Settings validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Upsert(ctx, changed); err != nil {
		s.cfg.Log.Error("Failed to update settings", "error", err)
		return Settings{}, apperrors.Internal("Failed to update settings", err)
	}

	s.cache.Invalidate(ctx)

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	s.cfg.Log.Info("Settings updated successfully", "keys", keys)
	return merged, nil
}

func (s *settingsService) load(ctx context.Context) (Settings, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load settings", "error", err)
		return Settings{}, apperrors.Internal("Failed to load settings", err)
	}
	return FromEntries(entries, s.cfg.Log), nil
}
