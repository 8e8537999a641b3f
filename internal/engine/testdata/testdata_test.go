package testdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		assert.NotEmpty(t, e.Raw, "entry[%d] raw", i)
		assert.Contains(t, []string{"strict", "lenient"}, e.ExpectedMode, "entry[%d] mode", i)
		assert.NotEmpty(t, e.ExpectedType, "entry[%d] type", i)
		assert.NotEmpty(t, e.ExpectedCategory, "entry[%d] category", i)
		assert.NotEmpty(t, e.Description, "entry[%d] description", i)
	}
}

func TestCorpusCoverage(t *testing.T) {
	entries, err := LoadCorpus()
	require.NoError(t, err)

	errorKinds := map[string]bool{
		"InvalidTimestamp":      false,
		"MalformedUserEvent":    false,
		"MalformedIP":           false,
		"MalformedProcessEvent": false,
		"UnknownEventType":      false,
	}
	categories := map[string]bool{"network": false, "user": false, "file": false, "process": false}
	for _, e := range entries {
		if _, ok := errorKinds[e.ExpectedError]; ok {
			errorKinds[e.ExpectedError] = true
		}
		categories[e.ExpectedCategory] = true
	}
	for kind, seen := range errorKinds {
		assert.True(t, seen, "no corpus entry exercises %s", kind)
	}
	for _, cat := range []string{"network", "user", "file", "process"} {
		assert.True(t, categories[cat], "no corpus entry categorized as %s", cat)
	}
}
