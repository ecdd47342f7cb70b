package transport

import (
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// ProtocolVersion is the UA-TCP protocol version this server speaks.
const ProtocolVersion uint32 = 0

// Hello is the client's HEL body.
type Hello struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
	EndpointURL       string
}

// Acknowledge is the server's ACK body.
type Acknowledge struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// Limits are the negotiated connection parameters, from the server's point
// of view (ReceiveBufferSize bounds inbound chunks, SendBufferSize bounds
// outbound chunks). Zero means unlimited for message size and chunk count.
type Limits struct {
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// minBufferSize is the smallest legal buffer per UA-TCP; peers announcing
// less are rejected.
const minBufferSize = 8192

// DefaultLimits are the server-side connection parameters offered during
// the handshake.
func DefaultLimits() Limits {
	return Limits{
		ReceiveBufferSize: 65536,
		SendBufferSize:    65536,
		MaxMessageSize:    16 * 1024 * 1024,
		MaxChunkCount:     4096,
	}
}

// DecodeHello parses a HEL payload.
func DecodeHello(payload []byte) (*Hello, error) {
	r := uabin.NewReader(payload)
	h := &Hello{
		ProtocolVersion:   r.ReadUint32(),
		ReceiveBufferSize: r.ReadUint32(),
		SendBufferSize:    r.ReadUint32(),
		MaxMessageSize:    r.ReadUint32(),
		MaxChunkCount:     r.ReadUint32(),
		EndpointURL:       r.ReadString(),
	}
	if err := r.Err(); err != nil {
		return nil, NewProtocolError(ua.StatusBadDecodingError, "malformed HEL")
	}
	return h, nil
}

// Negotiate applies the per-direction minimum rule to a HEL against the
// server's own limits and returns the ACK to send plus the negotiated
// limits. A zero client value means "no limit" and yields the server
// value.
func Negotiate(hello *Hello, server Limits) (*Acknowledge, Limits, error) {
	// Protocol versions are backwards compatible; version 0 accepts all.
	if hello.ReceiveBufferSize < minBufferSize || hello.SendBufferSize < minBufferSize {
		return nil, Limits{}, NewProtocolError(ua.StatusBadTCPNotEnoughResources,
			"peer buffer size below minimum")
	}

	negotiated := Limits{
		// Inbound chunks must fit what the client may send and what we
		// can buffer.
		ReceiveBufferSize: minNonZero(server.ReceiveBufferSize, hello.SendBufferSize),
		// Outbound chunks must fit the client's receive buffer.
		SendBufferSize: minNonZero(server.SendBufferSize, hello.ReceiveBufferSize),
		MaxMessageSize: minNonZero(server.MaxMessageSize, hello.MaxMessageSize),
		MaxChunkCount:  minNonZero(server.MaxChunkCount, hello.MaxChunkCount),
	}

	ack := &Acknowledge{
		ProtocolVersion:   ProtocolVersion,
		ReceiveBufferSize: negotiated.ReceiveBufferSize,
		SendBufferSize:    negotiated.SendBufferSize,
		MaxMessageSize:    negotiated.MaxMessageSize,
		MaxChunkCount:     negotiated.MaxChunkCount,
	}
	return ack, negotiated, nil
}

func minNonZero(a, b uint32) uint32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// EncodeAcknowledge renders a complete ACK chunk.
func EncodeAcknowledge(ack *Acknowledge) []byte {
	w := uabin.NewWriter(HeaderSize + 20)
	w.WriteBytes(make([]byte, HeaderSize))
	w.WriteUint32(ack.ProtocolVersion)
	w.WriteUint32(ack.ReceiveBufferSize)
	w.WriteUint32(ack.SendBufferSize)
	w.WriteUint32(ack.MaxMessageSize)
	w.WriteUint32(ack.MaxChunkCount)
	buf := w.Bytes()
	WriteHeader(buf, MessageTypeAcknowledge, ChunkTypeFinal, uint32(len(buf)))
	return buf
}

// EncodeError renders a complete ERR chunk with a status code and reason.
func EncodeError(status ua.StatusCode, reason string) []byte {
	w := uabin.NewWriter(HeaderSize + 8 + len(reason))
	w.WriteBytes(make([]byte, HeaderSize))
	w.WriteUint32(uint32(status))
	w.WriteString(reason)
	buf := w.Bytes()
	WriteHeader(buf, MessageTypeError, ChunkTypeFinal, uint32(len(buf)))
	return buf
}

// DecodeAsymmetricSecurityHeader parses the OPN security header.
func DecodeAsymmetricSecurityHeader(r *uabin.Reader) AsymmetricSecurityHeader {
	return AsymmetricSecurityHeader{
		SecurityPolicyURI:             r.ReadString(),
		SenderCertificate:             r.ReadByteString(),
		ReceiverCertificateThumbprint: r.ReadByteString(),
	}
}

// EncodeAsymmetricSecurityHeader renders the OPN security header.
func EncodeAsymmetricSecurityHeader(w *uabin.Writer, h AsymmetricSecurityHeader) {
	w.WriteString(h.SecurityPolicyURI)
	w.WriteByteString(h.SenderCertificate)
	w.WriteByteString(h.ReceiverCertificateThumbprint)
}
