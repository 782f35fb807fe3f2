package services

import (
	"errors"

	"github.com/giftportfolio/portfolio/pkg/ports"
)

const (
	ThemeKey   = "theme"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var ErrInvalidTheme = errors.New("theme must be dark or light")

// Preferences holds the visitor's display settings in client storage.
type Preferences struct {
	store ports.KeyValueStore
}

func NewPreferences(store ports.KeyValueStore) *Preferences {
	return &Preferences{store: store}
}

// Theme returns the stored theme, dark when unset or unreadable.
func (p *Preferences) Theme() string {
	v, ok, err := p.store.Get(ThemeKey)
	if err != nil || !ok {
		return ThemeDark
	}
	if v != ThemeDark && v != ThemeLight {
		return ThemeDark
	}
	return v
}

func (p *Preferences) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return ErrInvalidTheme
	}
	return p.store.Set(ThemeKey, theme)
}
