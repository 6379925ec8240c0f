// Package lookup resolves reference-table rows by factor and demographic scope, falling
// back from the exact cell to broader ones.
package lookup

import (
	"fmt"
	"strings"

	"goimpact/domain/core"
)

const (
	GenderAll       = "all"
	GeographyGlobal = "global"
)

// Scope is the key a reference row is stored under. Empty ActivityLevel and nil Direct
// mean the table does not partition on them.
type Scope struct {
	Factor        string
	AgeGroup      string
	ActivityLevel string
	Direct        *bool
	Gender        string
	Geography     string
}

func (s Scope) String() string {
	parts := []string{s.Factor, s.AgeGroup}
	if s.ActivityLevel != "" {
		parts = append(parts, s.ActivityLevel)
	}
	if s.Direct != nil {
		parts = append(parts, fmt.Sprintf("direct=%t", *s.Direct))
	}
	parts = append(parts, s.Gender, s.Geography)
	return strings.Join(parts, "/")
}

// Scoped is implemented by every reference row.
type Scoped interface {
	LookupScope() Scope
}

// Warning records a fallback taken while resolving a row.
type Warning struct {
	Table   string `json:"table"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%s]: %s", w.Table, w.Key, w.Message)
}

// Resolve finds the row for want in rows. Factor, age group, activity level and direct are
// mandatory matches. Gender falls back to "all" and then to any gender; geography falls back
// to "global" and then to the first remaining row. Each fallback adds a warning.
func Resolve[T Scoped](table string, rows []T, want Scope) (T, []Warning, error) {
	var zero T
	var warnings []Warning
	warn := func(msg string) {
		warnings = append(warnings, Warning{Table: table, Key: want.String(), Message: msg})
	}

	candidates := filter(rows, func(s Scope) bool {
		if !strings.EqualFold(s.Factor, want.Factor) || !strings.EqualFold(s.AgeGroup, want.AgeGroup) {
			return false
		}
		if want.ActivityLevel != "" && !strings.EqualFold(s.ActivityLevel, want.ActivityLevel) {
			return false
		}
		if want.Direct != nil && (s.Direct == nil || *s.Direct != *want.Direct) {
			return false
		}
		return true
	})
	if len(candidates) == 0 {
		return zero, nil, core.NewMissingReferenceError(table, want.String())
	}

	if byGender := filter(candidates, genderIs(want.Gender)); len(byGender) > 0 {
		candidates = byGender
	} else if all := filter(candidates, genderIs(GenderAll)); len(all) > 0 {
		candidates = all
		if !strings.EqualFold(want.Gender, GenderAll) {
			warn("no row for gender " + want.Gender + ", using all")
		}
	} else {
		warn("no row for gender " + want.Gender + " or all, using opposite gender")
	}

	if byGeo := filter(candidates, geographyIs(want.Geography)); len(byGeo) > 0 {
		return byGeo[0], warnings, nil
	}
	if global := filter(candidates, geographyIs(GeographyGlobal)); len(global) > 0 {
		warn("no row for " + want.Geography + ", using global")
		return global[0], warnings, nil
	}
	warn("no row for " + want.Geography + " or global, using " + candidates[0].LookupScope().Geography)
	return candidates[0], warnings, nil
}

func genderIs(g string) func(Scope) bool {
	return func(s Scope) bool { return strings.EqualFold(s.Gender, g) }
}

func geographyIs(g string) func(Scope) bool {
	return func(s Scope) bool { return strings.EqualFold(s.Geography, g) }
}

func filter[T Scoped](rows []T, keep func(Scope) bool) []T {
	var out []T
	for _, r := range rows {
		if keep(r.LookupScope()) {
			out = append(out, r)
		}
	}
	return out
}

// Bool returns a pointer for Scope.Direct.
func Bool(b bool) *bool { return &b }
