package branch

import (
	"errors"
	"strings"
)

// Branch is a physical gym location.
type Branch struct {
	Name     string
	Location string
}

// Defaults are seeded into an empty database.
var Defaults = []Branch{
	{Name: "Downtown Fitness", Location: "12 Main Street"},
	{Name: "Uptown Fitness", Location: "400 Hill Road"},
	{Name: "Riverside Fitness", Location: "7 Quay Lane"},
}

var ErrEmptyName = errors.New("branch name cannot be empty")

// Validate checks if the Branch has valid data.
func (b *Branch) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Contains reports whether name is one of branches.
func Contains(branches []Branch, name string) bool {
	for _, b := range branches {
		if b.Name == name {
			return true
		}
	}
	return false
}
