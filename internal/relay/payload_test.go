package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEvent_Complete(t *testing.T) {
	body := []byte(`{"action":"created","data":{"issue":{"id":"1","project":{"slug":"demo"},"title":"Boom"}}}`)

	ev := parseEvent(body)

	assert.False(t, ev.Partial)
	assert.Equal(t, "created", ev.Action)
	assert.Equal(t, "demo", ev.ProjectSlug)
	assert.Equal(t, "1", ev.IssueID)
	assert.Equal(t, "Boom", ev.IssueTitle)
}

func TestParseEvent_MissingSlug(t *testing.T) {
	body := []byte(`{"action":"resolved","data":{"issue":{"id":"7","title":"Gone"}}}`)

	ev := parseEvent(body)

	assert.True(t, ev.Partial)
	assert.Equal(t, NoProjectSlug, ev.ProjectSlug)
	// Fields that did decode are kept.
	assert.Equal(t, "resolved", ev.Action)
	assert.Equal(t, "7", ev.IssueID)
	assert.Equal(t, "Gone", ev.IssueTitle)
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	ev := parseEvent([]byte(`{definitely not json`))

	assert.True(t, ev.Partial)
	assert.Equal(t, NoProjectSlug, ev.ProjectSlug)
	assert.Empty(t, ev.Action)
	assert.Empty(t, ev.IssueID)
}

func TestParseEvent_EmptyBody(t *testing.T) {
	ev := parseEvent(nil)

	assert.True(t, ev.Partial)
	assert.Equal(t, NoProjectSlug, ev.ProjectSlug)
}
