package relay

import "encoding/json"

// payload mirrors the slice of Sentry's webhook body the relay reads.
type payload struct {
	Action string `json:"action"`
	Data   struct {
		Issue struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Project struct {
				Slug string `json:"slug"`
			} `json:"project"`
		} `json:"issue"`
	} `json:"data"`
}

// parseEvent decodes a verified payload into an Event.
//
// Malformed payloads never abort the request: fields that cannot be
// extracted degrade to sentinels and the Event is marked Partial, so the
// handler keeps going and operators can see the event in the logs.
func parseEvent(body []byte) Event {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{ProjectSlug: NoProjectSlug, Partial: true}
	}

	ev := Event{
		Action:      p.Action,
		ProjectSlug: p.Data.Issue.Project.Slug,
		IssueID:     p.Data.Issue.ID,
		IssueTitle:  p.Data.Issue.Title,
	}

	if ev.ProjectSlug == "" {
		ev.ProjectSlug = NoProjectSlug
		ev.Partial = true
	}

	return ev
}
