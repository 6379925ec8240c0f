package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RunID identifies one pipeline execution.
type RunID ID

func (id RunID) String() string { return ID(id).String() }

// NewRunID creates a time-ordered run identifier.
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ScenarioID is the compact key for a (market, discount, segment) scenario, e.g. AUS10F.
type ScenarioID string

// NewScenarioID builds the identifier from the market's three-letter prefix, the first two
// characters of the price label and the segment initial.
func NewScenarioID(m Market, priceLabel string, segment string) ScenarioID {
	prefix := m.ScenarioPrefix()
	price := priceLabel
	if len(price) > 2 {
		price = price[:2]
	}
	initial := ""
	if segment != "" {
		initial = strings.ToUpper(segment[:1])
	}
	return ScenarioID(prefix + price + initial)
}

func (id ScenarioID) String() string { return string(id) }
