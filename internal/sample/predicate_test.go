package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredicateSimpleClause(t *testing.T) {
	p, err := ParsePredicate("cohort=case")
	require.NoError(t, err)
	assert.True(t, p.Test(Row{Attrs: map[string]string{"cohort": "case"}}))
	assert.False(t, p.Test(Row{Attrs: map[string]string{"cohort": "control"}}))
}

func TestParsePredicateAndOr(t *testing.T) {
	p, err := ParsePredicate("cohort=case&&sex=F||cohort=control")
	require.NoError(t, err)
	assert.True(t, p.Test(Row{Attrs: map[string]string{"cohort": "case", "sex": "F"}}))
	assert.False(t, p.Test(Row{Attrs: map[string]string{"cohort": "case", "sex": "M"}}))
	assert.True(t, p.Test(Row{Attrs: map[string]string{"cohort": "control"}}))
}

func TestParsePredicateNotEqual(t *testing.T) {
	p, err := ParsePredicate("cohort!=case")
	require.NoError(t, err)
	assert.True(t, p.Test(Row{Attrs: map[string]string{"cohort": "control"}}))
	assert.False(t, p.Test(Row{Attrs: map[string]string{"cohort": "case"}}))
	assert.True(t, p.Test(Row{Attrs: map[string]string{}}))
}

func TestParsePredicateMalformed(t *testing.T) {
	_, err := ParsePredicate("cohort")
	assert.Error(t, err)
}
