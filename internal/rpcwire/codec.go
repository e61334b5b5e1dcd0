package rpcwire

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
)

// maxFrameSize bounds a single Envelope's encoded size, guarding the
// reader against a peer that sends a bogus length prefix and would
// otherwise make ReadEnvelope allocate without limit.
const maxFrameSize = 1 << 20 // 1 MiB

// Codec frames Envelopes on a net.Conn as a 4-byte big-endian length
// prefix followed by that many bytes of JSON, mirroring the echo
// server/client's line-framing but with a binary length instead of a
// newline so JSON payloads can contain arbitrary bytes.
type Codec struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewCodec wraps conn for Envelope-at-a-time reads and writes.
func NewCodec(conn net.Conn) *Codec {
	return &Codec{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

// WriteEnvelope encodes env as JSON and writes it length-prefixed.
func (c *Codec) WriteEnvelope(env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("rpcwire: encode envelope: %w", err)
	}
	if len(body) > maxFrameSize {
		return fmt.Errorf("rpcwire: outgoing envelope too large: %d bytes", len(body))
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))

	if _, err := c.w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("rpcwire: write length prefix: %w", err)
	}
	if _, err := c.w.Write(body); err != nil {
		return fmt.Errorf("rpcwire: write envelope body: %w", err)
	}
	return c.w.Flush()
}

// ReadEnvelope blocks until a full Envelope has arrived, or returns the
// underlying read error (io.EOF on a clean peer close).
func (c *Codec) ReadEnvelope() (Envelope, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(c.r, lenPrefix[:]); err != nil {
		return Envelope{}, err
	}

	size := binary.BigEndian.Uint32(lenPrefix[:])
	if size > maxFrameSize {
		return Envelope{}, fmt.Errorf("rpcwire: incoming envelope too large: %d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return Envelope{}, fmt.Errorf("rpcwire: read envelope body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("rpcwire: decode envelope: %w", err)
	}
	return env, nil
}

// Close closes the underlying connection.
func (c *Codec) Close() error {
	return c.conn.Close()
}
