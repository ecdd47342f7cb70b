package transport

import (
	"encoding/binary"

	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// msgChunkOverhead is the per-chunk framing cost of a MSG/CLO chunk:
// header + channel id + token id + sequence header.
const msgChunkOverhead = HeaderSize + 4 + 4 + SequenceHeaderSize

// BuildMessageChunks splits a message body into MSG chunks that fit the
// negotiated send buffer. nextSeq is called once per chunk to allocate the
// sequence number, keeping the outbound series gap-free even when chunking.
func BuildMessageChunks(msgType string, channelID, tokenID, requestID uint32, body []byte, sendBufferSize uint32, nextSeq func() uint32) [][]byte {
	maxPayload := int(sendBufferSize) - msgChunkOverhead
	if sendBufferSize == 0 || maxPayload >= len(body) {
		return [][]byte{buildMessageChunk(msgType, ChunkTypeFinal, channelID, tokenID, requestID, body, nextSeq())}
	}

	var chunks [][]byte
	for offset := 0; offset < len(body); offset += maxPayload {
		end := offset + maxPayload
		chunkType := byte(ChunkTypeIntermediate)
		if end >= len(body) {
			end = len(body)
			chunkType = ChunkTypeFinal
		}
		chunks = append(chunks, buildMessageChunk(msgType, chunkType, channelID, tokenID, requestID, body[offset:end], nextSeq()))
	}
	return chunks
}

func buildMessageChunk(msgType string, chunkType byte, channelID, tokenID, requestID uint32, payload []byte, seq uint32) []byte {
	buf := make([]byte, msgChunkOverhead+len(payload))
	WriteHeader(buf, msgType, chunkType, uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[8:12], channelID)
	binary.LittleEndian.PutUint32(buf[12:16], tokenID)
	binary.LittleEndian.PutUint32(buf[16:20], seq)
	binary.LittleEndian.PutUint32(buf[20:24], requestID)
	copy(buf[24:], payload)
	return buf
}

// BuildOpenChannelChunk renders a complete OPN chunk. OPN responses are
// never chunked: the body is an OpenSecureChannelResponse, far below any
// legal buffer size.
func BuildOpenChannelChunk(channelID uint32, secHeader AsymmetricSecurityHeader, requestID uint32, body []byte, seq uint32) []byte {
	w := uabin.NewWriter(HeaderSize + 4 + 32 + SequenceHeaderSize + len(body))
	w.WriteBytes(make([]byte, HeaderSize))
	w.WriteUint32(channelID)
	EncodeAsymmetricSecurityHeader(w, secHeader)
	w.WriteUint32(seq)
	w.WriteUint32(requestID)
	w.WriteBytes(body)
	buf := w.Bytes()
	WriteHeader(buf, MessageTypeOpenChannel, ChunkTypeFinal, uint32(len(buf)))
	return buf
}
