package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQUICKREFNonEmpty(t *testing.T) {
	assert.NotEmpty(t, QUICKREF)
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		assert.Contains(t, QUICKREF, topic)
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	for _, name := range TopicList {
		_, ok := Topics[name]
		assert.True(t, ok, "TopicList entry %q not in Topics map", name)
	}
}

func TestAllExpectedTopics(t *testing.T) {
	expected := []string{"syntax", "types", "control", "functions", "builtins", "diagnostics", "examples"}
	for _, e := range expected {
		_, ok := Topics[e]
		assert.True(t, ok, "missing expected topic %q", e)
	}
	assert.Len(t, Topics, len(expected))
}

func TestTopicsNonEmpty(t *testing.T) {
	for name, content := range Topics {
		assert.NotEmpty(t, content, "topic %q has empty content", name)
	}
}

func TestMatchTopicExact(t *testing.T) {
	name, content, err := MatchTopic("syntax")
	require.NoError(t, err)
	assert.Equal(t, "syntax", name)
	assert.NotEmpty(t, content)
}

func TestMatchTopicPrefix(t *testing.T) {
	name, _, err := MatchTopic("diag")
	require.NoError(t, err)
	assert.Equal(t, "diagnostics", name)
}

func TestMatchTopicPrefixExamples(t *testing.T) {
	name, _, err := MatchTopic("ex")
	require.NoError(t, err)
	assert.Equal(t, "examples", name)
}

func TestMatchTopicUnknown(t *testing.T) {
	_, _, err := MatchTopic("nonexistent")
	assert.Error(t, err)
}

func TestMatchTopicAmbiguousPrefix(t *testing.T) {
	// The empty string prefixes every topic name, so it matches all of
	// them at once rather than exactly one.
	_, _, err := MatchTopic("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestStdlibIndexListsBuiltins(t *testing.T) {
	idx := StdlibIndex()
	assert.Contains(t, idx, "sqrt")
	assert.Contains(t, idx, "PI")
	assert.Contains(t, idx, "Total:")
}

func TestMatchTopicAllExact(t *testing.T) {
	for _, topic := range TopicList {
		name, content, err := MatchTopic(topic)
		require.NoError(t, err)
		assert.Equal(t, topic, name)
		assert.NotEmpty(t, content)
	}
}
