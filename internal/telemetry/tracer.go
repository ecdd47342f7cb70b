package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys for OPC UA service tracing.
const (
	// Connection attributes
	AttrClientAddr = "client.address"
	AttrEndpoint   = "endpoint.url"

	// Secure channel attributes
	AttrChannelID = "ua.channel_id"
	AttrTokenID   = "ua.token_id"

	// Session attributes
	AttrSessionID   = "ua.session_id"
	AttrSessionName = "ua.session_name"

	// Service attributes
	AttrService       = "ua.service"
	AttrRequestHandle = "ua.request_handle"
	AttrStatus        = "ua.status"

	// Address space attributes
	AttrNodeID      = "ua.node_id"
	AttrAttributeID = "ua.attribute_id"

	// Subscription attributes
	AttrSubscriptionID  = "ua.subscription_id"
	AttrMonitoredItemID = "ua.monitored_item_id"
	AttrSequenceNumber  = "ua.sequence_number"
)

// Span names for the service sets.
const (
	SpanDispatch = "ua.dispatch"

	SpanRead      = "ua.Read"
	SpanWrite     = "ua.Write"
	SpanBrowse    = "ua.Browse"
	SpanCall      = "ua.Call"
	SpanPublish   = "ua.Publish"
	SpanCreateSession   = "ua.CreateSession"
	SpanActivateSession = "ua.ActivateSession"
)

// String builds a string attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Int builds an int attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// Int64 builds an int64 attribute.
func Int64(key string, value int64) attribute.KeyValue {
	return attribute.Int64(key, value)
}
