// Package transport implements UA-TCP framing: the HEL/ACK handshake,
// chunk headers, reassembly of chunked messages and emission of outbound
// chunk sequences.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/marmos91/opcuad/pkg/ua"
)

// Message type tags (3 ASCII bytes on the wire).
const (
	MessageTypeHello       = "HEL"
	MessageTypeAcknowledge = "ACK"
	MessageTypeError       = "ERR"
	MessageTypeOpenChannel = "OPN"
	MessageTypeMessage     = "MSG"
	MessageTypeCloseChannel = "CLO"
)

// Chunk type markers.
const (
	ChunkTypeFinal        = 'F'
	ChunkTypeIntermediate = 'C'
	ChunkTypeAbort        = 'A'
)

// HeaderSize is the fixed chunk header length: 3-byte message type, 1-byte
// chunk type, 4-byte little-endian total size including the header.
const HeaderSize = 8

// SequenceHeaderSize is the sequence number + request id prefix of OPN and
// MSG bodies.
const SequenceHeaderSize = 8

// Header is the parsed 8-byte chunk header.
type Header struct {
	MessageType string
	ChunkType   byte
	MessageSize uint32
}

// SequenceHeader prefixes every OPN/MSG/CLO body.
type SequenceHeader struct {
	SequenceNumber uint32
	RequestID      uint32
}

// AsymmetricSecurityHeader follows the channel id on OPN chunks.
type AsymmetricSecurityHeader struct {
	SecurityPolicyURI             string
	SenderCertificate             []byte
	ReceiverCertificateThumbprint []byte
}

// RawMessage is one chunk as read from the wire: the parsed header plus
// the payload after it.
type RawMessage struct {
	Header  Header
	Payload []byte
}

// ProtocolError carries the UA-TCP status for a framing violation; it is
// sent to the peer as an ERR chunk before the connection closes.
type ProtocolError struct {
	Status ua.StatusCode
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: %s (%s)", e.Reason, e.Status.Name())
}

// NewProtocolError builds a ProtocolError.
func NewProtocolError(status ua.StatusCode, reason string) *ProtocolError {
	return &ProtocolError{Status: status, Reason: reason}
}

func validMessageType(t string) bool {
	switch t {
	case MessageTypeHello, MessageTypeAcknowledge, MessageTypeError,
		MessageTypeOpenChannel, MessageTypeMessage, MessageTypeCloseChannel:
		return true
	}
	return false
}

// ReadMessage reads one chunk from the reader, enforcing the given receive
// buffer size. EOF before the first header byte is returned directly so
// callers can detect a normal client disconnect.
func ReadMessage(r io.Reader, receiveBufferSize uint32) (*RawMessage, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	msgType := string(header[0:3])
	chunkType := header[3]
	size := binary.LittleEndian.Uint32(header[4:8])

	if !validMessageType(msgType) {
		return nil, NewProtocolError(ua.StatusBadTCPMessageTypeInvalid,
			fmt.Sprintf("unknown message type %q", msgType))
	}
	if chunkType != ChunkTypeFinal && chunkType != ChunkTypeIntermediate && chunkType != ChunkTypeAbort {
		return nil, NewProtocolError(ua.StatusBadTCPMessageTypeInvalid,
			fmt.Sprintf("unknown chunk type %q", chunkType))
	}
	if size < HeaderSize {
		return nil, NewProtocolError(ua.StatusBadTCPInternalError,
			fmt.Sprintf("message size %d below header size", size))
	}
	if receiveBufferSize != 0 && size > receiveBufferSize {
		return nil, NewProtocolError(ua.StatusBadTCPMessageTooLarge,
			fmt.Sprintf("chunk size %d exceeds receive buffer %d", size, receiveBufferSize))
	}

	payload := make([]byte, size-HeaderSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read chunk payload: %w", err)
	}
	return &RawMessage{
		Header:  Header{MessageType: msgType, ChunkType: chunkType, MessageSize: size},
		Payload: payload,
	}, nil
}

// WriteHeader renders a chunk header into an 8-byte prefix.
func WriteHeader(buf []byte, msgType string, chunkType byte, size uint32) {
	copy(buf[0:3], msgType)
	buf[3] = chunkType
	binary.LittleEndian.PutUint32(buf[4:8], size)
}
