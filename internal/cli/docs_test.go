package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDocsTopics(t *testing.T) {
	fsys := fstest.MapFS{
		"passes.md":     {Data: []byte("# Rewrite passes\n\nbody\n")},
		"config.md":     {Data: []byte("intro\n# Configuration\n")},
		"untitled.md":   {Data: []byte("no heading\n")},
		"embed.go":      {Data: []byte("package docs\n")},
		"assets/img.md": {Data: []byte("# nested\n")},
	}

	topics, err := listDocsTopics(fsys)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, docsTopicView{ID: "config", Title: "Configuration", Path: "config.md"}, topics[0])
	assert.Equal(t, "Rewrite passes", topics[1].Title)
	assert.Equal(t, "untitled", topics[2].Title)

	found, ok := findDocsTopic(topics, " Passes.md ")
	require.True(t, ok)
	assert.Equal(t, "passes", found.ID)

	_, ok = findDocsTopic(topics, "missing")
	assert.False(t, ok)
}

func TestDocsCommandJSON(t *testing.T) {
	useSite(t, t.TempDir())

	out := captureStdout(t, func() {
		require.NoError(t, docsCmd.RunE(docsCmd, nil))
	})
	resp := decodeResponse(t, out)
	require.True(t, resp.OK)

	var data struct {
		Topics []docsTopicView `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	var ids []string
	for _, topic := range data.Topics {
		ids = append(ids, topic.ID)
	}
	assert.Equal(t, []string{"config", "passes", "resolution"}, ids)

	out = captureStdout(t, func() {
		require.NoError(t, docsCmd.RunE(docsCmd, []string{"passes"}))
	})
	resp = decodeResponse(t, out)
	require.True(t, resp.OK)
	var topic struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &topic))
	assert.Equal(t, "Rewrite passes", topic.Title)
	assert.Contains(t, topic.Content, "legacy-links")

	out = captureStdout(t, func() {
		require.NoError(t, docsCmd.RunE(docsCmd, []string{"nope"}))
	})
	resp = decodeResponse(t, out)
	require.False(t, resp.OK)
	assert.Equal(t, ErrInvalidInput, resp.Error.Code)
}

func TestDocsCommandPrintsRawMarkdownWhenPiped(t *testing.T) {
	useSite(t, t.TempDir())
	jsonOutput = false

	origTTY := docsStdoutIsTerminal
	docsStdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { docsStdoutIsTerminal = origTTY })

	out := captureStdout(t, func() {
		require.NoError(t, docsCmd.RunE(docsCmd, []string{"resolution"}))
	})
	assert.True(t, strings.HasPrefix(out, "# Link resolution\n"), out)
}
