package domain

import (
	"fmt"
	"time"
)

// Tenant represents one instance of the assistant application. Each tenant
// mirrors seed content from the shared hub under its own scope.
type Tenant struct {
	ID        string
	Name      string
	HubScope  string // tenant scope used when talking to the hub
	CreatedAt time.Time
}

// ValidateTenant validates a Tenant instance
func ValidateTenant(t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant cannot be nil")
	}
	if t.ID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tenant Name is required")
	}
	if t.HubScope == "" {
		return fmt.Errorf("tenant HubScope is required")
	}
	return nil
}
