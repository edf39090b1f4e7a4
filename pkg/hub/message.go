// Package hub fans telemetry frames out to websocket clients through a
// single broadcasting goroutine.
package hub

import "encoding/json"

// Message is one encoded JSON frame queued for every client. Clients
// receive it as a websocket text message.
type Message []byte

// EncodeJSON marshals v into a Message.
func EncodeJSON(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Message(data), nil
}
