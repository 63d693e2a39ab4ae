package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNotification(t *testing.T) {
	got := FormatNotification("demo", "created", "Boom", "https://sentry.io/organizations/acme/issues/1/")

	want := "`SENTRY`{:color='red'}" +
		" [`demo`{:color='cyan'}]" +
		" issue `created`{:color='magenta'}:" +
		" Boom" +
		" `https://sentry.io/organizations/acme/issues/1/`{:color='cyan'}"

	assert.Equal(t, want, got)
}

func TestFormatNotification_Deterministic(t *testing.T) {
	a := FormatNotification("p", "resolved", "t", "u")
	b := FormatNotification("p", "resolved", "t", "u")
	assert.Equal(t, a, b)
}

func TestFormatNotification_TitleNotTagged(t *testing.T) {
	// The title is embedded raw; only label, slug, action, and permalink
	// carry color spans.
	got := FormatNotification("p", "created", "a `weird` title", "u")
	assert.Contains(t, got, " a `weird` title ")
}
