package relay

// FormatNotification renders the single-line notification handed to the
// chat transport:
//
//	`SENTRY`{:color='red'} [`slug`{:color='cyan'}] issue `action`{:color='magenta'}: title `permalink`{:color='cyan'}
//
// The backtick-span-plus-color-attribute markup is the inline convention
// the gateway renders. Pure function: no I/O, deterministic, no locale
// dependence.
func FormatNotification(projectSlug, action, issueTitle, permalink string) string {
	return colorSpan("red", "SENTRY") +
		" [" + colorSpan("cyan", projectSlug) + "]" +
		" issue " + colorSpan("magenta", action) + ":" +
		" " + issueTitle +
		" " + colorSpan("cyan", permalink)
}

func colorSpan(color, s string) string {
	return "`" + s + "`{:color='" + color + "'}"
}
