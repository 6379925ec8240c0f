package lookup

import (
	"testing"

	"goimpact/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	scope Scope
	value float64
}

func (r row) LookupScope() Scope { return r.scope }

func scope(gender, geo string) Scope {
	return Scope{Factor: "Diabetes", AgeGroup: "Young Adults (16-35)", Gender: gender, Geography: geo}
}

func TestResolve_ExactMatch(t *testing.T) {
	rows := []row{
		{scope("male", "Australia"), 1},
		{scope("female", "Australia"), 2},
		{scope("female", "global"), 3},
	}
	got, warnings, err := Resolve("relative_risk", rows, scope("female", "Australia"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.value)
	assert.Empty(t, warnings)
}

func TestResolve_GlobalFallback(t *testing.T) {
	rows := []row{
		{scope("female", "Canada"), 1},
		{scope("female", "global"), 3},
	}
	got, warnings, err := Resolve("relative_risk", rows, scope("female", "Australia"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.value)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "global")
}

func TestResolve_FirstAvailable(t *testing.T) {
	rows := []row{
		{scope("all", "Canada"), 7},
		{scope("all", "Spain"), 8},
	}
	got, warnings, err := Resolve("cost", rows, scope("male", "Australia"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.value)
	assert.Len(t, warnings, 2)
}

func TestResolve_OppositeGender(t *testing.T) {
	rows := []row{{scope("male", "Australia"), 4}}
	got, warnings, err := Resolve("cost", rows, scope("female", "Australia"))
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.value)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "opposite gender")
}

func TestResolve_DirectAndActivityLevelAreMandatory(t *testing.T) {
	direct := scope("all", "Australia")
	direct.Direct = Bool(true)
	indirect := scope("all", "Australia")
	indirect.Direct = Bool(false)
	rows := []row{{direct, 1}, {indirect, 2}}

	want := scope("all", "Australia")
	want.Direct = Bool(false)
	got, _, err := Resolve("cost", rows, want)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.value)

	want.ActivityLevel = "Active"
	_, _, err = Resolve("cost", rows, want)
	assert.True(t, core.IsMissingReferenceData(err))
}

func TestResolve_Exhausted(t *testing.T) {
	_, _, err := Resolve[row]("relative_risk", nil, scope("male", "Japan"))
	assert.ErrorIs(t, err, core.ErrMissingReferenceData)
}
