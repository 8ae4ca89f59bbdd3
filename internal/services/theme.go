package services

import (
	"sync"

	"alfredoptarigan/crypto-identifier/internal/models"
)

// ThemeState holds the display mode for one browser session.
type ThemeState struct {
	mu    sync.RWMutex
	theme models.Theme
}

func NewThemeState() *ThemeState {
	return &ThemeState{theme: models.ThemeLight}
}

func (t *ThemeState) Current() models.Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.theme
}

// Toggle flips between light and dark and returns the new value.
func (t *ThemeState) Toggle() models.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = t.theme.Opposite()
	return t.theme
}
