package server

import (
	"errors"
	"io"

	"github.com/marmos91/opcuad/internal/bytesize"
	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/securechannel"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// connState tracks one client connection through the handshake and the
// channels it opened.
type connState struct {
	transport  *transport.TCPTransport
	limits     transport.Limits
	helloSeen  bool
	channelIDs []uint32
}

// handleConnection runs the per-connection read loop: HEL/ACK handshake,
// then OPN/MSG/CLO chunks until the peer disconnects or a protocol
// violation aborts the connection.
func (s *Server) handleConnection(t *transport.TCPTransport) {
	if s.transportMetrics != nil {
		s.transportMetrics.RecordConnectionOpened()
		defer s.transportMetrics.RecordConnectionClosed()
	}
	log := logger.Category("transport")
	log.Debug("connection accepted", logger.KeyClientAddr, t.RemoteAddr())

	state := &connState{transport: t, limits: t.Limits()}
	defer s.teardownConnection(state)

	for {
		msg, err := t.Recv()
		if err != nil {
			var protoErr *transport.ProtocolError
			if errors.As(err, &protoErr) {
				s.abortConnection(state, protoErr)
				return
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, transport.ErrClosed) {
				log.Debug("connection read failed",
					logger.KeyClientAddr, t.RemoteAddr(),
					logger.KeyError, err.Error())
			}
			return
		}
		if s.transportMetrics != nil {
			s.transportMetrics.RecordChunkReceived(msg.Header.MessageType, int(msg.Header.MessageSize))
		}

		if err := s.handleChunk(state, msg); err != nil {
			var protoErr *transport.ProtocolError
			if errors.As(err, &protoErr) {
				s.abortConnection(state, protoErr)
			}
			return
		}
	}
}

// handleChunk routes one chunk by message type.
func (s *Server) handleChunk(state *connState, msg *transport.RawMessage) error {
	switch msg.Header.MessageType {
	case transport.MessageTypeHello:
		return s.handleHello(state, msg)
	case transport.MessageTypeOpenChannel:
		return s.handleOpen(state, msg)
	case transport.MessageTypeMessage:
		return s.handleMessage(state, msg)
	case transport.MessageTypeCloseChannel:
		return s.handleClose(state, msg)
	default:
		return transport.NewProtocolError(ua.StatusBadTCPMessageTypeInvalid,
			"unexpected message type "+msg.Header.MessageType)
	}
}

func (s *Server) handleHello(state *connState, msg *transport.RawMessage) error {
	if state.helloSeen {
		return transport.NewProtocolError(ua.StatusBadTCPMessageTypeInvalid, "duplicate HEL")
	}
	hello, err := transport.DecodeHello(msg.Payload)
	if err != nil {
		return err
	}

	ack, limits, err := transport.Negotiate(hello, s.config.TransportLimits)
	if err != nil {
		return err
	}
	state.helloSeen = true
	state.limits = limits
	state.transport.SetLimits(limits)

	logger.Category("transport").Debug("handshake complete",
		logger.KeyClientAddr, state.transport.RemoteAddr(),
		logger.KeyEndpoint, hello.EndpointURL,
		"recv_buffer", bytesize.ByteSize(limits.ReceiveBufferSize).String(),
		"send_buffer", bytesize.ByteSize(limits.SendBufferSize).String())

	return s.sendRaw(state, transport.MessageTypeAcknowledge, transport.EncodeAcknowledge(ack))
}

// handleOpen processes an OPN chunk: open a new channel (channel id 0) or
// renew an existing one.
func (s *Server) handleOpen(state *connState, msg *transport.RawMessage) error {
	if !state.helloSeen {
		return transport.NewProtocolError(ua.StatusBadTCPMessageTypeInvalid, "OPN before HEL/ACK")
	}
	r := uabin.NewReader(msg.Payload)
	channelID := r.ReadUint32()
	secHeader := transport.DecodeAsymmetricSecurityHeader(r)
	seq := r.ReadUint32()
	requestID := r.ReadUint32()
	body := r.ReadBytes(r.Remaining())
	if r.Err() != nil {
		return transport.NewProtocolError(ua.StatusBadDecodingError, "malformed OPN")
	}

	decoded, _, err := uabin.DecodeMessage(body)
	if err != nil {
		return transport.NewProtocolError(ua.StatusBadDecodingError, "malformed OpenSecureChannelRequest")
	}
	req, ok := decoded.(*ua.OpenSecureChannelRequest)
	if !ok {
		return transport.NewProtocolError(ua.StatusBadTCPMessageTypeInvalid, "OPN carries wrong service")
	}

	var (
		ch     *securechannel.Channel
		resp   *ua.OpenSecureChannelResponse
		status ua.StatusCode
	)
	if channelID == 0 {
		ch, resp, status = s.channels.Open(state.transport, state.limits, req, secHeader.SecurityPolicyURI)
		if status == ua.StatusGood {
			state.channelIDs = append(state.channelIDs, ch.ID)
			if seqStatus := ch.ValidateSequence(seq); seqStatus != ua.StatusGood {
				return transport.NewProtocolError(seqStatus, "OPN sequence number invalid")
			}
		}
	} else {
		var found bool
		ch, found = s.channels.Get(channelID)
		if !found {
			return transport.NewProtocolError(ua.StatusBadTCPSecureChannelUnknown, "renew of unknown channel")
		}
		if seqStatus := ch.ValidateSequence(seq); seqStatus != ua.StatusGood {
			return transport.NewProtocolError(seqStatus, "OPN sequence number out of order")
		}
		resp, status = s.channels.Renew(ch, req)
	}
	if status != ua.StatusGood {
		return transport.NewProtocolError(status, "open secure channel failed")
	}

	resp.ResponseHeader = ua.ResponseHeader{
		Timestamp:     s.clock.Now(),
		RequestHandle: req.RequestHeader.RequestHandle,
		ServiceResult: ua.StatusGood,
	}
	respBody, err := uabin.EncodeMessage(resp)
	if err != nil {
		return transport.NewProtocolError(ua.StatusBadEncodingError, "encode OpenSecureChannelResponse")
	}
	chunk := transport.BuildOpenChannelChunk(ch.ID, transport.AsymmetricSecurityHeader{
		SecurityPolicyURI: ch.PolicyURI,
	}, requestID, respBody, ch.NextSendSequence())
	return s.sendRaw(state, transport.MessageTypeOpenChannel, chunk)
}

// handleMessage processes a MSG chunk: resolve the channel, validate the
// token and sequence number, reassemble, dispatch.
func (s *Server) handleMessage(state *connState, msg *transport.RawMessage) error {
	r := uabin.NewReader(msg.Payload)
	channelID := r.ReadUint32()
	tokenID := r.ReadUint32()
	seq := r.ReadUint32()
	requestID := r.ReadUint32()
	body := r.ReadBytes(r.Remaining())
	if r.Err() != nil {
		return transport.NewProtocolError(ua.StatusBadDecodingError, "malformed MSG chunk")
	}

	ch, ok := s.channels.Get(channelID)
	if !ok {
		return transport.NewProtocolError(ua.StatusBadTCPSecureChannelUnknown, "MSG on unknown channel")
	}
	if status := ch.ValidateToken(tokenID); status != ua.StatusGood {
		return transport.NewProtocolError(status, "MSG references unknown token")
	}
	if status := ch.ValidateSequence(seq); status != ua.StatusGood {
		return transport.NewProtocolError(status, "MSG sequence number out of order")
	}

	full, done, err := ch.Assembler.Add(requestID, msg.Header.ChunkType, body)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	s.dispatch(ch, requestID, full)
	return nil
}

// handleClose processes a CLO chunk. Per the UA-SC rules the server sends
// no response; the channel and the connection go down.
func (s *Server) handleClose(state *connState, msg *transport.RawMessage) error {
	r := uabin.NewReader(msg.Payload)
	channelID := r.ReadUint32()
	if r.Err() != nil {
		return transport.NewProtocolError(ua.StatusBadDecodingError, "malformed CLO chunk")
	}
	if ch, ok := s.channels.Get(channelID); ok {
		logger.Category("channel").Debug("channel closed by client", logger.KeyChannelID, ch.ID)
		s.closeChannel(ch)
	}
	return io.EOF
}

// closeChannel tears down a channel: bound sessions become unbound (they
// survive until their own timeout), then the channel is removed deferred.
func (s *Server) closeChannel(ch *securechannel.Channel) {
	s.sessions.UnbindChannel(ch.SessionIDs())
	s.channels.Close(ch.ID)
}

// teardownConnection runs when the read loop exits: channels lose their
// transport, their sessions are unbound, and the channels are closed.
func (s *Server) teardownConnection(state *connState) {
	for _, id := range state.channelIDs {
		if ch, ok := s.channels.Get(id); ok {
			ch.DetachTransport()
			s.sessions.UnbindChannel(ch.SessionIDs())
			s.channels.Close(id)
		}
	}
	_ = state.transport.Close()
}

// abortConnection emits an ERR chunk and closes the transport.
func (s *Server) abortConnection(state *connState, protoErr *transport.ProtocolError) {
	logger.Category("transport").Warn("aborting connection",
		logger.KeyClientAddr, state.transport.RemoteAddr(),
		logger.KeyStatus, protoErr.Status.Name(),
		logger.KeyError, protoErr.Reason)
	if s.transportMetrics != nil {
		s.transportMetrics.RecordProtocolError(protoErr.Status.Name())
	}
	_ = s.sendRaw(state, transport.MessageTypeError, transport.EncodeError(protoErr.Status, protoErr.Reason))
	_ = state.transport.Close()
}

func (s *Server) sendRaw(state *connState, messageType string, chunk []byte) error {
	if s.transportMetrics != nil {
		s.transportMetrics.RecordChunkSent(messageType, len(chunk))
	}
	return state.transport.Send(chunk)
}
