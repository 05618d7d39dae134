package wsnet

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vctt94/pokertable/internal/protocol"
)

// maxFrameSize bounds a single decoded frame, guarding against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const maxFrameSize = 10 * 1024 * 1024

// EncodeOutbound frames msg as [u32 big-endian length][JSON bytes], the
// length-delimited framing spec.md §6 names for any non-websocket
// transport (e.g. tests driving internal/table over an in-memory pipe
// instead of a real socket). Grounded on TylerPetri-P2Poker's
// internal/netx/codec.go.
func EncodeOutbound(msg protocol.Outbound) ([]byte, error) {
	return encodeFrame(msg)
}

// EncodeInbound frames an Inbound message the same way.
func EncodeInbound(msg protocol.Inbound) ([]byte, error) {
	return encodeFrame(msg)
}

func encodeFrame(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(b))); err != nil {
		return nil, err
	}
	buf.Write(b)
	return buf.Bytes(), nil
}

// DecodeOutbound reads one length-delimited frame from r and unmarshals
// it as an Outbound message.
func DecodeOutbound(r *bufio.Reader) (protocol.Outbound, error) {
	var msg protocol.Outbound
	b, err := readFrame(r)
	if err != nil {
		return msg, err
	}
	err = json.Unmarshal(b, &msg)
	return msg, err
}

// DecodeInbound reads one length-delimited frame from r and unmarshals
// it as an Inbound message.
func DecodeInbound(r *bufio.Reader) (protocol.Inbound, error) {
	var msg protocol.Inbound
	b, err := readFrame(r)
	if err != nil {
		return msg, err
	}
	err = json.Unmarshal(b, &msg)
	return msg, err
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n > maxFrameSize {
		return nil, fmt.Errorf("wsnet: frame of %d bytes exceeds max %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
