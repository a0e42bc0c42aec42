package models

import "errors"

// SortBy selects the ordering policy of the filtered task view.
type SortBy string

const (
	SortByDueDate  SortBy = "dueDate"
	SortByPriority SortBy = "priority"
	SortByManual   SortBy = "manual"
	SortByCreated  SortBy = "created"
)

var ErrInvalidSortBy = errors.New("sortBy must be 'dueDate', 'priority', 'manual', or 'created'")

// ParseSortBy converts a raw string into a SortBy. An empty string selects
// the default policy.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "":
		return SortByCreated, nil
	case SortByDueDate, SortByPriority, SortByManual, SortByCreated:
		return SortBy(s), nil
	default:
		return "", ErrInvalidSortBy
	}
}

// Settings holds user preferences persisted alongside tasks and categories.
type Settings struct {
	SortBy               SortBy `json:"sortBy"`
	Theme                string `json:"theme,omitempty"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// DefaultSettings returns the settings of a fresh store.
func DefaultSettings() Settings {
	return Settings{
		SortBy:               SortByCreated,
		Theme:                "system",
		NotificationsEnabled: true,
	}
}

// SettingsPatch is a partial settings update.
type SettingsPatch struct {
	SortBy               *SortBy `json:"sortBy,omitempty"`
	Theme                *string `json:"theme,omitempty"`
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty"`
}

// PatchFrom builds a patch that sets every field of s.
func PatchFrom(s Settings) SettingsPatch {
	sortBy := s.SortBy
	theme := s.Theme
	notify := s.NotificationsEnabled
	return SettingsPatch{SortBy: &sortBy, Theme: &theme, NotificationsEnabled: &notify}
}

// Apply validates and merges p into s.
func (p SettingsPatch) Apply(s *Settings) error {
	if p.SortBy != nil {
		sortBy, err := ParseSortBy(string(*p.SortBy))
		if err != nil {
			return err
		}
		s.SortBy = sortBy
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	return nil
}
