package widget

import (
	"context"
	"fmt"

	"trustify/internal/plugin"
)

type provider struct {
	store plugin.OptionStore
}

// NewProvider returns a ConfigurationProvider persisting to store.
func NewProvider(store plugin.OptionStore) ConfigurationProvider {
	return &provider{store: store}
}

func (p *provider) LoadOptions(ctx context.Context) (Options, error) {
	values, err := p.store.GetOption(ctx, OptionName)
	if err != nil {
		return Options{}, fmt.Errorf("failed to load %s: %w", OptionName, err)
	}
	return OptionsFromValues(values), nil
}

// SaveOptions sanitizes raw and replaces the stored record with the result.
func (p *provider) SaveOptions(ctx context.Context, raw map[string]string) (Options, error) {
	values := Sanitize(raw)
	if err := p.store.UpdateOption(ctx, OptionName, values); err != nil {
		return Options{}, fmt.Errorf("failed to save %s: %w", OptionName, err)
	}
	return OptionsFromValues(values), nil
}
