package config

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/nao1215/nogrok/internal/provider"
)

// ProviderConfig declares a search provider in the config file.
// A provider whose host also matches a built-in one takes precedence.
type ProviderConfig struct {
	// Name identifies the provider in reports.
	Name string `yaml:"name"`

	// Host is a substring of the provider's page host, e.g. "search.example".
	Host string `yaml:"host"`

	// Selectors are CSS selectors of result containers.
	Selectors []string `yaml:"selectors"`

	// Outer is an optional wrapper selector around the matched container.
	Outer string `yaml:"outer,omitempty"`

	// Ordered tries Selectors in order instead of taking the nearest match.
	Ordered bool `yaml:"ordered,omitempty"`
}

// Strategy converts the declaration into a provider strategy.
func (p ProviderConfig) Strategy() provider.Strategy {
	return provider.Strategy{
		Name:     p.Name,
		Host:     strings.ToLower(p.Host),
		Patterns: append([]string(nil), p.Selectors...),
		Outer:    p.Outer,
		Ordered:  p.Ordered,
	}
}

// Validate checks that the provider is complete and its selectors parse.
func (p ProviderConfig) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Host) == "" || len(p.Selectors) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, p.Name)
	}
	if strings.EqualFold(strings.TrimSpace(p.Name), provider.DefaultName) {
		return fmt.Errorf("%w: %q is reserved for the generic strategy", ErrInvalidProvider, p.Name)
	}
	for _, sel := range p.Selectors {
		if err := validateSelector(sel); err != nil {
			return fmt.Errorf("provider %q: %w", p.Name, err)
		}
	}
	if p.Outer != "" {
		if err := validateSelector(p.Outer); err != nil {
			return fmt.Errorf("provider %q: %w", p.Name, err)
		}
	}
	return nil
}

// validateSelector rejects selectors goquery would silently match nothing with.
func validateSelector(sel string) error {
	if _, err := cascadia.Compile(sel); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSelector, sel, err) //nolint:errorlint // cascadia errors carry no sentinel
	}
	return nil
}

// File represents the structure of the .nogrok configuration file.
// Every field is optional.
type File struct {
	// Target is the host substring to detect. Defaults to "grokipedia".
	Target string `yaml:"target,omitempty"`

	// RedirectParams are query keys decoded in addition to the built-in
	// redirect keys (q, url, u, target, dest, ...).
	RedirectParams []string `yaml:"redirectParams,omitempty"`

	// PillLabel is the label shown on grayed-out results.
	PillLabel string `yaml:"pillLabel,omitempty"`

	// Providers are registered ahead of the built-in providers.
	Providers []ProviderConfig `yaml:"providers,omitempty"`
}

// Validate checks every declared provider.
func (f *File) Validate() error {
	for _, p := range f.Providers {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Strategies returns the declared providers as strategies, in file order.
func (f *File) Strategies() []provider.Strategy {
	result := make([]provider.Strategy, 0, len(f.Providers))
	for _, p := range f.Providers {
		result = append(result, p.Strategy())
	}
	return result
}
