// Package transport delivers formatted notifications to chat channels.
//
// The relay never creates channels; a destination must already be joined
// on the gateway side, and Joined is how the relay checks that before
// doing any further work on a request.
package transport

import "context"

// Messenger is the outbound messaging surface the relay depends on.
type Messenger interface {
	// Joined reports whether the gateway is currently a member of channel.
	Joined(ctx context.Context, channel string) (bool, error)

	// Send delivers a pre-formatted message to channel. The message is
	// built once and sent once; the relay never retries.
	Send(ctx context.Context, channel, text string) error
}
