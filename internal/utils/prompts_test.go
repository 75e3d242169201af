package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	content, err := LoadPrompt("sentiment_classifier")
	require.NoError(t, err)
	assert.Contains(t, content, "one lowercase English word")
}

func TestLoadPromptMissing(t *testing.T) {
	_, err := LoadPrompt("does_not_exist")
	assert.Error(t, err)
}

func TestLoadPromptWithContext(t *testing.T) {
	content, err := LoadPromptWithContext("reddit_analyst", map[string]string{
		"SearchTool": "search_reddit_posts",
	})
	require.NoError(t, err)
	assert.Contains(t, content, "Use the search_reddit_posts function")
	assert.NotContains(t, content, "{{.")

	content, err = LoadPromptWithContext("sentiment_filter", map[string]string{
		"FilterTool": "filter_reddit_posts",
	})
	require.NoError(t, err)
	assert.Contains(t, content, "passed to the filter_reddit_posts function")
}
