package tasks

import (
	"context"

	"taskflow/internal/models"
	"taskflow/internal/store"
)

// SettingsProvider holds the user's preferences, including the sort policy
// the query engine materializes with.
type SettingsProvider struct {
	store   store.Store
	opts    options
	current models.Settings
}

// NewSettingsProvider starts from models.DefaultSettings.
func NewSettingsProvider(s store.Store, opts ...Option) *SettingsProvider {
	return &SettingsProvider{
		store:   s,
		opts:    buildOptions("settings", opts),
		current: models.DefaultSettings(),
	}
}

// Load hydrates settings from storage, falling back to defaults.
func (p *SettingsProvider) Load(ctx context.Context) {
	settings := models.DefaultSettings()
	found, err := p.store.GetItem(ctx, store.KeySettings, &settings)
	if err != nil {
		p.opts.logger.WithError(err).Error("failed to load settings; using defaults")
		p.current = models.DefaultSettings()
		return
	}
	if !found {
		p.current = models.DefaultSettings()
		return
	}

	if _, err := models.ParseSortBy(string(settings.SortBy)); err != nil {
		p.opts.logger.WithField("sortBy", settings.SortBy).Warn("unknown persisted sort policy; using default")
		settings.SortBy = models.SortByCreated
	}
	if settings.SortBy == "" {
		settings.SortBy = models.SortByCreated
	}
	p.current = settings
}

// Current returns the active settings.
func (p *SettingsProvider) Current() models.Settings {
	return p.current
}

// SortBy returns the active sort policy.
func (p *SettingsProvider) SortBy() models.SortBy {
	return p.current.SortBy
}

// UpdateSettings merges patch into the current settings. Persistence failures
// are logged and the in-memory settings are kept.
func (p *SettingsProvider) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	next, err := p.merge(patch)
	if err != nil {
		return p.current, err
	}

	p.current = next
	if err := p.store.SetItem(ctx, store.KeySettings, p.current); err != nil {
		p.opts.logger.WithError(err).Error("failed to persist settings; in-memory state kept")
	}

	return p.current, nil
}

// Replace applies every field of settings through the same merge as
// UpdateSettings and returns a failed write to the caller.
func (p *SettingsProvider) Replace(ctx context.Context, settings models.Settings) error {
	next, err := p.merge(models.PatchFrom(settings))
	if err != nil {
		return err
	}

	p.current = next
	return p.store.SetItem(ctx, store.KeySettings, p.current)
}

func (p *SettingsProvider) merge(patch models.SettingsPatch) (models.Settings, error) {
	next := p.current
	if err := patch.Apply(&next); err != nil {
		return models.Settings{}, invalid(err)
	}
	return next, nil
}
