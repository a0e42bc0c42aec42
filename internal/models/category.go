package models

import (
	"errors"
	"strings"
)

// Category is a named grouping of tasks. TaskCount is a cached value owned
// by the category registry and must equal the number of tasks referencing ID.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	TaskCount int    `json:"taskCount"`
}

// Validate checks that the category has valid field values.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("id is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}

	if c.TaskCount < 0 {
		return errors.New("taskCount cannot be negative")
	}

	return nil
}

// CategoryPatch is a partial category update. TaskCount is not patchable.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// Apply merges the provided fields into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}
