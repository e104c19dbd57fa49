// Package socket exposes the daemon over a local Unix-domain socket: framed
// typed JSON requests in, framed typed JSON responses out. There is no
// authentication beyond filesystem permissions (0600) — the socket is
// trusted-local, matching the teacher's own unix-socket transport.
package socket

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame to guard against a malformed or
// hostile client driving an unbounded allocation.
const maxFrameSize = 16 << 20 // 16MiB

// Envelope is the wire shape for both directions: Op names the operation,
// Payload is the operation-specific request or response body, and Error
// carries a response-side failure message (empty on success).
type Envelope struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// writeFrame writes a 4-byte big-endian length prefix followed by the
// JSON-encoded envelope.
func writeFrame(w io.Writer, env *Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > maxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", len(body))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// readFrame reads one length-prefixed JSON envelope.
func readFrame(r io.Reader) (*Envelope, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d bytes", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &env, nil
}
