package wsnet

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/vctt94/pokertable/internal/protocol"
)

func TestEncodeDecodeOutboundRoundTrip(t *testing.T) {
	want := protocol.Outbound{Seq: 7, Type: protocol.OutHandResult, TableID: "abc123", Payload: map[string]any{"handNumber": float64(3)}}

	frame, err := EncodeOutbound(want)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	got, err := DecodeOutbound(bufio.NewReader(bytes.NewReader(frame)))
	if err != nil {
		t.Fatalf("DecodeOutbound: %v", err)
	}
	if got.Seq != want.Seq || got.Type != want.Type || got.TableID != want.TableID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestEncodeDecodeInboundRoundTrip(t *testing.T) {
	want := protocol.Inbound{Type: protocol.InAction, TableID: "abc123", PlayerID: "alice", ActionKind: "raise", Amount: 50}

	frame, err := EncodeInbound(want)
	if err != nil {
		t.Fatalf("EncodeInbound: %v", err)
	}
	got, err := DecodeInbound(bufio.NewReader(bytes.NewReader(frame)))
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeTwoFramesSequentiallyFromOneStream(t *testing.T) {
	first, _ := EncodeInbound(protocol.Inbound{Type: protocol.InAction, PlayerID: "alice", ActionKind: "check"})
	second, _ := EncodeInbound(protocol.Inbound{Type: protocol.InAction, PlayerID: "bob", ActionKind: "fold"})

	r := bufio.NewReader(bytes.NewReader(append(first, second...)))
	got1, err := DecodeInbound(r)
	if err != nil {
		t.Fatalf("decode first frame: %v", err)
	}
	got2, err := DecodeInbound(r)
	if err != nil {
		t.Fatalf("decode second frame: %v", err)
	}
	if got1.PlayerID != "alice" || got2.PlayerID != "bob" {
		t.Fatalf("frames decoded out of order: %+v, %+v", got1, got2)
	}
}

func TestDecodeRejectsOversizedLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	// A length prefix claiming far more than maxFrameSize, with no body.
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, err := DecodeInbound(bufio.NewReader(&buf))
	if err == nil {
		t.Fatal("expected an error for an oversized length prefix, got nil")
	}
}

func TestDecodeTruncatedFrameErrors(t *testing.T) {
	frame, _ := EncodeInbound(protocol.Inbound{Type: protocol.InLeaveTable, PlayerID: "alice"})
	truncated := frame[:len(frame)-2]
	_, err := DecodeInbound(bufio.NewReader(bytes.NewReader(truncated)))
	if err == nil {
		t.Fatal("expected an error for a truncated frame, got nil")
	}
}
