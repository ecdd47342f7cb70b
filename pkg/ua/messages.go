package ua

import "time"

// RequestHeader is common to every service request.
type RequestHeader struct {
	AuthenticationToken NodeID
	Timestamp           time.Time
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        string
	TimeoutHint         uint32
	AdditionalHeader    *ExtensionObject
}

// ResponseHeader is common to every service response.
type ResponseHeader struct {
	Timestamp          time.Time
	RequestHandle      uint32
	ServiceResult      StatusCode
	ServiceDiagnostics *DiagnosticInfo
	StringTable        []string
	AdditionalHeader   *ExtensionObject
}

// ServiceFault is the generic error response.
type ServiceFault struct {
	ResponseHeader ResponseHeader
}

// ============================================================================
// Discovery
// ============================================================================

// ApplicationDescription describes a server application.
type ApplicationDescription struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     LocalizedText
	ApplicationType     uint32 // 0 = server
	GatewayServerURI    string
	DiscoveryProfileURI string
	DiscoveryURLs       []string
}

// UserTokenPolicy describes an accepted user identity token type.
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         uint32 // 0 anonymous, 1 username, 2 certificate, 3 issued
	IssuedTokenType   string
	IssuerEndpointURL string
	SecurityPolicyURI string
}

// User token types.
const (
	UserTokenAnonymous   uint32 = 0
	UserTokenUserName    uint32 = 1
	UserTokenCertificate uint32 = 2
	UserTokenIssued      uint32 = 3
)

// EndpointDescription advertises one endpoint of the server.
type EndpointDescription struct {
	EndpointURL         string
	Server              ApplicationDescription
	ServerCertificate   []byte
	SecurityMode        MessageSecurityMode
	SecurityPolicyURI   string
	UserIdentityTokens  []UserTokenPolicy
	TransportProfileURI string
	SecurityLevel       byte
}

// FindServersRequest / FindServersResponse.
type FindServersRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ServerURIs    []string
}

type FindServersResponse struct {
	ResponseHeader ResponseHeader
	Servers        []ApplicationDescription
}

// GetEndpointsRequest / GetEndpointsResponse.
type GetEndpointsRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ProfileURIs   []string
}

type GetEndpointsResponse struct {
	ResponseHeader ResponseHeader
	Endpoints      []EndpointDescription
}

// ============================================================================
// SecureChannel
// ============================================================================

// Security token request types.
const (
	SecurityTokenIssue uint32 = 0
	SecurityTokenRenew uint32 = 1
)

// ChannelSecurityToken identifies the active token of a secure channel.
type ChannelSecurityToken struct {
	ChannelID       uint32
	TokenID         uint32
	CreatedAt       time.Time
	RevisedLifetime uint32 // milliseconds
}

type OpenSecureChannelRequest struct {
	RequestHeader     RequestHeader
	ClientProtocolVersion uint32
	RequestType       uint32
	SecurityMode      MessageSecurityMode
	ClientNonce       []byte
	RequestedLifetime uint32 // milliseconds
}

type OpenSecureChannelResponse struct {
	ResponseHeader        ResponseHeader
	ServerProtocolVersion uint32
	SecurityToken         ChannelSecurityToken
	ServerNonce           []byte
}

type CloseSecureChannelRequest struct {
	RequestHeader RequestHeader
}

type CloseSecureChannelResponse struct {
	ResponseHeader ResponseHeader
}

// ============================================================================
// Session
// ============================================================================

// SignatureData carries an asymmetric signature.
type SignatureData struct {
	Algorithm string
	Signature []byte
}

// SignedSoftwareCertificate is an opaque certificate blob with signature.
type SignedSoftwareCertificate struct {
	CertificateData []byte
	Signature       []byte
}

type CreateSessionRequest struct {
	RequestHeader           RequestHeader
	ClientDescription       ApplicationDescription
	ServerURI               string
	EndpointURL             string
	SessionName             string
	ClientNonce             []byte
	ClientCertificate       []byte
	RequestedSessionTimeout float64 // milliseconds
	MaxResponseMessageSize  uint32
}

type CreateSessionResponse struct {
	ResponseHeader         ResponseHeader
	SessionID              NodeID
	AuthenticationToken    NodeID
	RevisedSessionTimeout  float64
	ServerNonce            []byte
	ServerCertificate      []byte
	ServerEndpoints        []EndpointDescription
	ServerSoftwareCertificates []SignedSoftwareCertificate
	ServerSignature        SignatureData
	MaxRequestMessageSize  uint32
}

// AnonymousIdentityToken selects a policy without credentials.
type AnonymousIdentityToken struct {
	PolicyID string
}

// UserNameIdentityToken carries username/password credentials.
type UserNameIdentityToken struct {
	PolicyID            string
	UserName            string
	Password            []byte
	EncryptionAlgorithm string
}

type ActivateSessionRequest struct {
	RequestHeader              RequestHeader
	ClientSignature            SignatureData
	ClientSoftwareCertificates []SignedSoftwareCertificate
	LocaleIDs                  []string
	UserIdentityToken          *ExtensionObject
	UserTokenSignature         SignatureData
}

type ActivateSessionResponse struct {
	ResponseHeader  ResponseHeader
	ServerNonce     []byte
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

type CloseSessionRequest struct {
	RequestHeader       RequestHeader
	DeleteSubscriptions bool
}

type CloseSessionResponse struct {
	ResponseHeader ResponseHeader
}

type CancelRequest struct {
	RequestHeader RequestHeader
	RequestHandle uint32
}

type CancelResponse struct {
	ResponseHeader ResponseHeader
	CancelCount    uint32
}

// ============================================================================
// Attribute services
// ============================================================================

// ReadValueID selects one (node, attribute, range) to read.
type ReadValueID struct {
	NodeID       NodeID
	AttributeID  AttributeID
	IndexRange   string
	DataEncoding QualifiedName
}

type ReadRequest struct {
	RequestHeader      RequestHeader
	MaxAge             float64
	TimestampsToReturn TimestampsToReturn
	NodesToRead        []ReadValueID
}

type ReadResponse struct {
	ResponseHeader  ResponseHeader
	Results         []DataValue
	DiagnosticInfos []DiagnosticInfo
}

// WriteValue selects one (node, attribute, range) to write.
type WriteValue struct {
	NodeID      NodeID
	AttributeID AttributeID
	IndexRange  string
	Value       DataValue
}

type WriteRequest struct {
	RequestHeader RequestHeader
	NodesToWrite  []WriteValue
}

type WriteResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// ============================================================================
// View services
// ============================================================================

// ViewDescription selects the view context of a Browse (null = whole space).
type ViewDescription struct {
	ViewID      NodeID
	Timestamp   time.Time
	ViewVersion uint32
}

// BrowseDescription selects the references to follow from one node.
type BrowseDescription struct {
	NodeID          NodeID
	Direction       BrowseDirection
	ReferenceTypeID NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// BrowseResultMask bits.
const (
	BrowseResultMaskReferenceType uint32 = 1 << 0
	BrowseResultMaskIsForward     uint32 = 1 << 1
	BrowseResultMaskNodeClass     uint32 = 1 << 2
	BrowseResultMaskBrowseName    uint32 = 1 << 3
	BrowseResultMaskDisplayName   uint32 = 1 << 4
	BrowseResultMaskTypeDefinition uint32 = 1 << 5
	BrowseResultMaskAll           uint32 = 63
)

// ReferenceDescription is one browse result entry.
type ReferenceDescription struct {
	ReferenceTypeID NodeID
	IsForward       bool
	NodeID          ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       NodeClass
	TypeDefinition  ExpandedNodeID
}

// BrowseResult is the per-node outcome of Browse/BrowseNext.
type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	References        []ReferenceDescription
}

type BrowseRequest struct {
	RequestHeader          RequestHeader
	View                   ViewDescription
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse          []BrowseDescription
}

type BrowseResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []DiagnosticInfo
}

type BrowseNextRequest struct {
	RequestHeader            RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints       [][]byte
}

type BrowseNextResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []DiagnosticInfo
}

// RelativePathElement is one hop of a browse path.
type RelativePathElement struct {
	ReferenceTypeID NodeID
	IsInverse       bool
	IncludeSubtypes bool
	TargetName      QualifiedName
}

// BrowsePath is a starting node plus a relative path.
type BrowsePath struct {
	StartingNode NodeID
	RelativePath []RelativePathElement
}

// BrowsePathTarget is one end node of a translated path.
type BrowsePathTarget struct {
	TargetID           ExpandedNodeID
	RemainingPathIndex uint32
}

// BrowsePathResult is the outcome of translating one path.
type BrowsePathResult struct {
	StatusCode StatusCode
	Targets    []BrowsePathTarget
}

type TranslateBrowsePathsRequest struct {
	RequestHeader RequestHeader
	BrowsePaths   []BrowsePath
}

type TranslateBrowsePathsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowsePathResult
	DiagnosticInfos []DiagnosticInfo
}

type RegisterNodesRequest struct {
	RequestHeader   RequestHeader
	NodesToRegister []NodeID
}

type RegisterNodesResponse struct {
	ResponseHeader    ResponseHeader
	RegisteredNodeIDs []NodeID
}

type UnregisterNodesRequest struct {
	RequestHeader     RequestHeader
	NodesToUnregister []NodeID
}

type UnregisterNodesResponse struct {
	ResponseHeader ResponseHeader
}

// ============================================================================
// Node management
// ============================================================================

// NodeAttributes is the common part of the per-class attribute structures
// carried in AddNodes items. SpecifiedAttributes flags which fields are set.
type NodeAttributes struct {
	SpecifiedAttributes uint32
	DisplayName         LocalizedText
	Description         LocalizedText
	WriteMask           uint32
	UserWriteMask       uint32
}

// ObjectAttributes for AddNodes of an Object.
type ObjectAttributes struct {
	NodeAttributes
	EventNotifier byte
}

// VariableAttributes for AddNodes of a Variable.
type VariableAttributes struct {
	NodeAttributes
	Value                   Variant
	DataType                NodeID
	ValueRank               int32
	ArrayDimensions         []uint32
	AccessLevel             byte
	UserAccessLevel         byte
	MinimumSamplingInterval float64
	Historizing             bool
}

// MethodAttributes for AddNodes of a Method.
type MethodAttributes struct {
	NodeAttributes
	Executable     bool
	UserExecutable bool
}

// ObjectTypeAttributes for AddNodes of an ObjectType.
type ObjectTypeAttributes struct {
	NodeAttributes
	IsAbstract bool
}

// VariableTypeAttributes for AddNodes of a VariableType.
type VariableTypeAttributes struct {
	NodeAttributes
	Value           Variant
	DataType        NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	IsAbstract      bool
}

// ReferenceTypeAttributes for AddNodes of a ReferenceType.
type ReferenceTypeAttributes struct {
	NodeAttributes
	IsAbstract  bool
	Symmetric   bool
	InverseName LocalizedText
}

// DataTypeAttributes for AddNodes of a DataType.
type DataTypeAttributes struct {
	NodeAttributes
	IsAbstract bool
}

// ViewAttributes for AddNodes of a View.
type ViewAttributes struct {
	NodeAttributes
	ContainsNoLoops bool
	EventNotifier   byte
}

// AddNodesItem describes one node to add.
type AddNodesItem struct {
	ParentNodeID       ExpandedNodeID
	ReferenceTypeID    NodeID
	RequestedNewNodeID ExpandedNodeID
	BrowseName         QualifiedName
	NodeClass          NodeClass
	NodeAttributes     *ExtensionObject
	TypeDefinition     ExpandedNodeID
}

// AddNodesResult is the per-item outcome.
type AddNodesResult struct {
	StatusCode  StatusCode
	AddedNodeID NodeID
}

type AddNodesRequest struct {
	RequestHeader RequestHeader
	NodesToAdd    []AddNodesItem
}

type AddNodesResponse struct {
	ResponseHeader  ResponseHeader
	Results         []AddNodesResult
	DiagnosticInfos []DiagnosticInfo
}

// AddReferencesItem describes one reference to add.
type AddReferencesItem struct {
	SourceNodeID    NodeID
	ReferenceTypeID NodeID
	IsForward       bool
	TargetServerURI string
	TargetNodeID    ExpandedNodeID
	TargetNodeClass NodeClass
}

type AddReferencesRequest struct {
	RequestHeader   RequestHeader
	ReferencesToAdd []AddReferencesItem
}

type AddReferencesResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// DeleteNodesItem describes one node to delete.
type DeleteNodesItem struct {
	NodeID                NodeID
	DeleteTargetReferences bool
}

type DeleteNodesRequest struct {
	RequestHeader RequestHeader
	NodesToDelete []DeleteNodesItem
}

type DeleteNodesResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// DeleteReferencesItem describes one reference to delete.
type DeleteReferencesItem struct {
	SourceNodeID    NodeID
	ReferenceTypeID NodeID
	IsForward       bool
	TargetNodeID    ExpandedNodeID
	DeleteBidirectional bool
}

type DeleteReferencesRequest struct {
	RequestHeader      RequestHeader
	ReferencesToDelete []DeleteReferencesItem
}

type DeleteReferencesResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// ============================================================================
// Method services
// ============================================================================

// CallMethodRequest invokes one method.
type CallMethodRequest struct {
	ObjectID       NodeID
	MethodID       NodeID
	InputArguments []Variant
}

// CallMethodResult is the per-method outcome.
type CallMethodResult struct {
	StatusCode              StatusCode
	InputArgumentResults    []StatusCode
	InputArgumentDiagnostics []DiagnosticInfo
	OutputArguments         []Variant
}

type CallRequest struct {
	RequestHeader  RequestHeader
	MethodsToCall  []CallMethodRequest
}

type CallResponse struct {
	ResponseHeader  ResponseHeader
	Results         []CallMethodResult
	DiagnosticInfos []DiagnosticInfo
}

// ============================================================================
// MonitoredItem services
// ============================================================================

// DataChangeFilter configures change detection of a monitored item.
type DataChangeFilter struct {
	Trigger       DataChangeTrigger
	DeadbandType  uint32
	DeadbandValue float64
}

// MonitoringParameters of a monitored item.
type MonitoringParameters struct {
	ClientHandle     uint32
	SamplingInterval float64 // milliseconds
	Filter           *ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool
}

// MonitoredItemCreateRequest adds one monitored item.
type MonitoredItemCreateRequest struct {
	ItemToMonitor       ReadValueID
	MonitoringMode      MonitoringMode
	RequestedParameters MonitoringParameters
}

// MonitoredItemCreateResult is the per-item outcome.
type MonitoredItemCreateResult struct {
	StatusCode              StatusCode
	MonitoredItemID         uint32
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
	FilterResult            *ExtensionObject
}

type CreateMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToCreate      []MonitoredItemCreateRequest
}

type CreateMonitoredItemsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []MonitoredItemCreateResult
	DiagnosticInfos []DiagnosticInfo
}

// MonitoredItemModifyRequest modifies one monitored item.
type MonitoredItemModifyRequest struct {
	MonitoredItemID     uint32
	RequestedParameters MonitoringParameters
}

// MonitoredItemModifyResult is the per-item outcome.
type MonitoredItemModifyResult struct {
	StatusCode              StatusCode
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
	FilterResult            *ExtensionObject
}

type ModifyMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToModify      []MonitoredItemModifyRequest
}

type ModifyMonitoredItemsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []MonitoredItemModifyResult
	DiagnosticInfos []DiagnosticInfo
}

type SetMonitoringModeRequest struct {
	RequestHeader    RequestHeader
	SubscriptionID   uint32
	MonitoringMode   MonitoringMode
	MonitoredItemIDs []uint32
}

type SetMonitoringModeResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

type DeleteMonitoredItemsRequest struct {
	RequestHeader    RequestHeader
	SubscriptionID   uint32
	MonitoredItemIDs []uint32
}

type DeleteMonitoredItemsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// ============================================================================
// Subscription services
// ============================================================================

type CreateSubscriptionRequest struct {
	RequestHeader               RequestHeader
	RequestedPublishingInterval float64 // milliseconds
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	PublishingEnabled           bool
	Priority                    byte
}

type CreateSubscriptionResponse struct {
	ResponseHeader            ResponseHeader
	SubscriptionID            uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

type ModifySubscriptionRequest struct {
	RequestHeader               RequestHeader
	SubscriptionID              uint32
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	Priority                    byte
}

type ModifySubscriptionResponse struct {
	ResponseHeader            ResponseHeader
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

type SetPublishingModeRequest struct {
	RequestHeader     RequestHeader
	PublishingEnabled bool
	SubscriptionIDs   []uint32
}

type SetPublishingModeResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// SubscriptionAcknowledgement acknowledges one retained notification.
type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

// MonitoredItemNotification carries one sampled value.
type MonitoredItemNotification struct {
	ClientHandle uint32
	Value        DataValue
}

// DataChangeNotification is the notification payload for data changes.
type DataChangeNotification struct {
	MonitoredItems  []MonitoredItemNotification
	DiagnosticInfos []DiagnosticInfo
}

// StatusChangeNotification signals a subscription state change.
type StatusChangeNotification struct {
	Status         StatusCode
	DiagnosticInfo DiagnosticInfo
}

// NotificationMessage is one publish payload.
type NotificationMessage struct {
	SequenceNumber   uint32
	PublishTime      time.Time
	NotificationData []*ExtensionObject
}

type PublishRequest struct {
	RequestHeader                RequestHeader
	SubscriptionAcknowledgements []SubscriptionAcknowledgement
}

type PublishResponse struct {
	ResponseHeader           ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      NotificationMessage
	Results                  []StatusCode
	DiagnosticInfos          []DiagnosticInfo
}

type RepublishRequest struct {
	RequestHeader           RequestHeader
	SubscriptionID          uint32
	RetransmitSequenceNumber uint32
}

type RepublishResponse struct {
	ResponseHeader      ResponseHeader
	NotificationMessage NotificationMessage
}

type TransferSubscriptionsRequest struct {
	RequestHeader     RequestHeader
	SubscriptionIDs   []uint32
	SendInitialValues bool
}

// TransferResult is the per-subscription outcome.
type TransferResult struct {
	StatusCode               StatusCode
	AvailableSequenceNumbers []uint32
}

type TransferSubscriptionsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []TransferResult
	DiagnosticInfos []DiagnosticInfo
}

type DeleteSubscriptionsRequest struct {
	RequestHeader   RequestHeader
	SubscriptionIDs []uint32
}

type DeleteSubscriptionsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []StatusCode
	DiagnosticInfos []DiagnosticInfo
}

// ============================================================================
// Server status
// ============================================================================

// BuildInfo describes the server build.
type BuildInfo struct {
	ProductURI       string
	ManufacturerName string
	ProductName      string
	SoftwareVersion  string
	BuildNumber      string
	BuildDate        time.Time
}

// ServerStatusDataType is the value of the ServerStatus variable.
type ServerStatusDataType struct {
	StartTime           time.Time
	CurrentTime         time.Time
	State               ServerState
	BuildInfo           BuildInfo
	SecondsTillShutdown uint32
	ShutdownReason      LocalizedText
}

// Argument describes one method input or output argument.
type Argument struct {
	Name            string
	DataType        NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	Description     LocalizedText
}
