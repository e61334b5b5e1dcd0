package rpcwire

import (
	"net"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverCodec := NewCodec(server)
	clientCodec := NewCodec(client)

	want, err := newEnvelope(OpRegister, RegisterRequest{
		Identifier: "alice",
		Y1:         []byte{1, 2, 3},
		Y2:         []byte{4, 5, 6},
	})
	if err != nil {
		t.Fatalf("newEnvelope: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- clientCodec.WriteEnvelope(want)
	}()

	got, err := serverCodec.ReadEnvelope()
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}

	if got.Op != want.Op {
		t.Fatalf("op = %q, want %q", got.Op, want.Op)
	}

	var in RegisterRequest
	if err := decodePayload(got, &in); err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if in.Identifier != "alice" {
		t.Fatalf("identifier = %q, want alice", in.Identifier)
	}
}

func TestCodecRejectsOversizedFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverCodec := NewCodec(server)

	go func() {
		var lenPrefix [4]byte
		lenPrefix[0] = 0x7f // absurdly large length, well past maxFrameSize
		client.Write(lenPrefix[:])
	}()

	if _, err := serverCodec.ReadEnvelope(); err == nil {
		t.Fatal("expected an error for an oversized frame, got nil")
	}
}
