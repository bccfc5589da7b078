package sample

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	in := "s1\tcohort=case\tsex=F\ns2\tcohort=control\ns3\tcohort=case\tsex=M\n"
	tab, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, tab.Len())
	assert.Equal(t, []string{"s1", "s2", "s3"}, tab.Names())

	i, ok := tab.IndexOf("s2")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	v, ok := tab.Attr("s1", "cohort")
	require.True(t, ok)
	assert.Equal(t, "case", v)

	_, ok = tab.Attr("s2", "sex")
	assert.False(t, ok)
}

func TestParseTableMalformedAttribute(t *testing.T) {
	_, err := Parse(strings.NewReader("s1\tbadattr\n"))
	assert.Error(t, err)
}

func TestParseTableBlankLinesSkipped(t *testing.T) {
	tab, err := Parse(strings.NewReader("s1\tcohort=case\n\n\ns2\tcohort=control\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())
}
