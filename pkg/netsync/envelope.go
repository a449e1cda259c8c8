package netsync

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ripplestate/ripple/pkg/diff"
)

// Envelope is the wire payload: one delta tagged with its sender.
type Envelope struct {
	ClientID string     `json:"clientId"`
	Changes  diff.Delta `json:"changes"`
}

// encodeEnvelope serializes an envelope for the wire.
func encodeEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// decodeEnvelope parses a wire payload. Payloads that are not an envelope
// at all yield an error; the caller drops them.
func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// newClientID returns a random 16-byte hex identifier.
func newClientID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("netsync: random source unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
