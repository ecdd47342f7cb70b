package transport

import (
	"fmt"

	"github.com/marmos91/opcuad/pkg/ua"
)

// Assembler accumulates intermediate chunks per request id until the final
// chunk arrives, enforcing the negotiated message size and chunk count.
// One assembler belongs to one secure channel.
type Assembler struct {
	limits  Limits
	pending map[uint32]*partialMessage
}

type partialMessage struct {
	chunks int
	body   []byte
}

// NewAssembler creates an assembler with the given limits.
func NewAssembler(limits Limits) *Assembler {
	return &Assembler{
		limits:  limits,
		pending: make(map[uint32]*partialMessage),
	}
}

// Add feeds one chunk body (after the sequence header). For intermediate
// chunks it returns (nil, false, nil). For the final chunk it returns the
// reassembled message. Abort chunks discard the partial message. Limit
// violations return a ProtocolError; the channel must be aborted.
func (a *Assembler) Add(requestID uint32, chunkType byte, body []byte) ([]byte, bool, error) {
	switch chunkType {
	case ChunkTypeAbort:
		delete(a.pending, requestID)
		return nil, false, nil

	case ChunkTypeIntermediate:
		p := a.pending[requestID]
		if p == nil {
			p = &partialMessage{}
			a.pending[requestID] = p
		}
		p.chunks++
		if a.limits.MaxChunkCount != 0 && uint32(p.chunks) > a.limits.MaxChunkCount {
			delete(a.pending, requestID)
			return nil, false, NewProtocolError(ua.StatusBadTCPMessageTooLarge,
				fmt.Sprintf("request %d exceeds max chunk count %d", requestID, a.limits.MaxChunkCount))
		}
		p.body = append(p.body, body...)
		if a.limits.MaxMessageSize != 0 && uint32(len(p.body)) > a.limits.MaxMessageSize {
			delete(a.pending, requestID)
			return nil, false, NewProtocolError(ua.StatusBadTCPMessageTooLarge,
				fmt.Sprintf("request %d exceeds max message size %d", requestID, a.limits.MaxMessageSize))
		}
		return nil, false, nil

	case ChunkTypeFinal:
		p := a.pending[requestID]
		if p == nil {
			// Unchunked message, the common case.
			if a.limits.MaxMessageSize != 0 && uint32(len(body)) > a.limits.MaxMessageSize {
				return nil, false, NewProtocolError(ua.StatusBadTCPMessageTooLarge,
					fmt.Sprintf("request %d exceeds max message size %d", requestID, a.limits.MaxMessageSize))
			}
			return body, true, nil
		}
		delete(a.pending, requestID)
		full := append(p.body, body...)
		if a.limits.MaxMessageSize != 0 && uint32(len(full)) > a.limits.MaxMessageSize {
			return nil, false, NewProtocolError(ua.StatusBadTCPMessageTooLarge,
				fmt.Sprintf("request %d exceeds max message size %d", requestID, a.limits.MaxMessageSize))
		}
		return full, true, nil

	default:
		return nil, false, NewProtocolError(ua.StatusBadTCPMessageTypeInvalid,
			fmt.Sprintf("chunk type %q", chunkType))
	}
}

// PendingCount returns the number of requests mid-reassembly.
func (a *Assembler) PendingCount() int {
	return len(a.pending)
}

// Reset discards all partial messages.
func (a *Assembler) Reset() {
	a.pending = make(map[uint32]*partialMessage)
}
