package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that logs from
// the transport, channel, session and subscription layers can be correlated.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Subsystem category (transport, channel, session, dispatch,
	// subscription, nodestore, sched, security)
	KeyCategory = "category"

	// Secure channel & session
	KeyChannelID  = "channel_id"  // Secure channel id
	KeyTokenID    = "token_id"    // Security token id
	KeySessionID  = "session_id"  // Session NodeId string form
	KeySessionName = "session_name"

	// Service dispatch
	KeyService       = "service"        // Service name: Read, Write, Browse, Publish, ...
	KeyRequestID     = "request_id"     // Transport-level request id
	KeyRequestHandle = "request_handle" // Client-assigned request handle
	KeyStatus        = "status"         // StatusCode name
	KeyDurationMS    = "duration_ms"    // Handler duration in milliseconds

	// Address space
	KeyNamespace   = "namespace"   // Namespace index
	KeyNodeID      = "node_id"     // NodeId string form
	KeyAttributeID = "attribute_id"
	KeyBrowseName  = "browse_name"

	// Subscriptions
	KeySubscriptionID  = "subscription_id"
	KeyMonitoredItemID = "monitored_item_id"
	KeySequenceNumber  = "sequence_number"

	// Connection/transport
	KeyClientIP   = "client_ip"   // Client IP address (without port)
	KeyClientAddr = "client_addr" // Full client address with port
	KeyEndpoint   = "endpoint"    // Endpoint URL
	KeyChunkType  = "chunk_type"  // F, C or A
	KeyMessageType = "message_type" // HEL, ACK, ERR, OPN, MSG, CLO
	KeySize       = "size"        // Message or chunk size in bytes

	// Errors
	KeyError = "error" // Error message
)
