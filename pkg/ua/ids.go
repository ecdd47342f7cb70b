package ua

// TypeID identifies an OPC UA built-in type. The values double as the
// Variant encoding-mask type bits.
type TypeID byte

const (
	TypeNull            TypeID = 0
	TypeBoolean         TypeID = 1
	TypeSByte           TypeID = 2
	TypeByte            TypeID = 3
	TypeInt16           TypeID = 4
	TypeUInt16          TypeID = 5
	TypeInt32           TypeID = 6
	TypeUInt32          TypeID = 7
	TypeInt64           TypeID = 8
	TypeUInt64          TypeID = 9
	TypeFloat           TypeID = 10
	TypeDouble          TypeID = 11
	TypeString          TypeID = 12
	TypeDateTime        TypeID = 13
	TypeGUID            TypeID = 14
	TypeByteString      TypeID = 15
	TypeXMLElement      TypeID = 16
	TypeNodeID          TypeID = 17
	TypeExpandedNodeID  TypeID = 18
	TypeStatusCode      TypeID = 19
	TypeQualifiedName   TypeID = 20
	TypeLocalizedText   TypeID = 21
	TypeExtensionObject TypeID = 22
	TypeDataValue       TypeID = 23
	TypeVariant         TypeID = 24
	TypeDiagnosticInfo  TypeID = 25
)

// NodeClass is the class tag of an address-space node.
type NodeClass uint32

const (
	NodeClassUnspecified   NodeClass = 0
	NodeClassObject        NodeClass = 1
	NodeClassVariable      NodeClass = 2
	NodeClassMethod        NodeClass = 4
	NodeClassObjectType    NodeClass = 8
	NodeClassVariableType  NodeClass = 16
	NodeClassReferenceType NodeClass = 32
	NodeClassDataType      NodeClass = 64
	NodeClassView          NodeClass = 128
)

func (c NodeClass) String() string {
	switch c {
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	default:
		return "Unspecified"
	}
}

// AttributeID selects a node attribute in Read/Write/MonitoredItem requests.
type AttributeID uint32

const (
	AttrNodeID                  AttributeID = 1
	AttrNodeClass               AttributeID = 2
	AttrBrowseName              AttributeID = 3
	AttrDisplayName             AttributeID = 4
	AttrDescription             AttributeID = 5
	AttrWriteMask               AttributeID = 6
	AttrUserWriteMask           AttributeID = 7
	AttrIsAbstract              AttributeID = 8
	AttrSymmetric               AttributeID = 9
	AttrInverseName             AttributeID = 10
	AttrContainsNoLoops         AttributeID = 11
	AttrEventNotifier           AttributeID = 12
	AttrValue                   AttributeID = 13
	AttrDataType                AttributeID = 14
	AttrValueRank               AttributeID = 15
	AttrArrayDimensions         AttributeID = 16
	AttrAccessLevel             AttributeID = 17
	AttrUserAccessLevel         AttributeID = 18
	AttrMinimumSamplingInterval AttributeID = 19
	AttrHistorizing             AttributeID = 20
	AttrExecutable              AttributeID = 21
	AttrUserExecutable          AttributeID = 22
)

// ValueRank constants.
const (
	ValueRankScalarOrOneDimension int32 = -3
	ValueRankAny                  int32 = -2
	ValueRankScalar               int32 = -1
	ValueRankOneOrMoreDimensions  int32 = 0
	ValueRankOneDimension         int32 = 1
)

// AccessLevel bits.
const (
	AccessLevelCurrentRead  byte = 1 << 0
	AccessLevelCurrentWrite byte = 1 << 1
	AccessLevelHistoryRead  byte = 1 << 2
	AccessLevelHistoryWrite byte = 1 << 3
)

// WriteMask bits (per attribute) used by the Write service.
const (
	WriteMaskAccessLevel             uint32 = 1 << 0
	WriteMaskArrayDimensions         uint32 = 1 << 1
	WriteMaskBrowseName              uint32 = 1 << 2
	WriteMaskContainsNoLoops         uint32 = 1 << 3
	WriteMaskDataType                uint32 = 1 << 4
	WriteMaskDescription             uint32 = 1 << 5
	WriteMaskDisplayName             uint32 = 1 << 6
	WriteMaskEventNotifier           uint32 = 1 << 7
	WriteMaskExecutable              uint32 = 1 << 8
	WriteMaskHistorizing             uint32 = 1 << 9
	WriteMaskInverseName             uint32 = 1 << 10
	WriteMaskIsAbstract              uint32 = 1 << 11
	WriteMaskMinimumSamplingInterval uint32 = 1 << 12
	WriteMaskNodeClass               uint32 = 1 << 13
	WriteMaskNodeID                  uint32 = 1 << 14
	WriteMaskSymmetric               uint32 = 1 << 15
	WriteMaskUserAccessLevel         uint32 = 1 << 16
	WriteMaskUserExecutable          uint32 = 1 << 17
	WriteMaskUserWriteMask           uint32 = 1 << 18
	WriteMaskValueRank               uint32 = 1 << 19
	WriteMaskWriteMask               uint32 = 1 << 20
	WriteMaskValueForVariableType    uint32 = 1 << 21
)

// Well-known NodeIds in namespace 0 (numeric identifiers).
const (
	IDBoolean        uint32 = 1
	IDSByte          uint32 = 2
	IDByte           uint32 = 3
	IDInt16          uint32 = 4
	IDUInt16         uint32 = 5
	IDInt32          uint32 = 6
	IDUInt32         uint32 = 7
	IDInt64          uint32 = 8
	IDUInt64         uint32 = 9
	IDFloat          uint32 = 10
	IDDouble         uint32 = 11
	IDString         uint32 = 12
	IDDateTime       uint32 = 13
	IDGUID           uint32 = 14
	IDByteString     uint32 = 15
	IDXMLElement     uint32 = 16
	IDNodeID         uint32 = 17
	IDExpandedNodeID uint32 = 18
	IDStatusCode     uint32 = 19
	IDQualifiedName  uint32 = 20
	IDLocalizedText  uint32 = 21
	IDStructure      uint32 = 22
	IDDataValue      uint32 = 23
	IDBaseDataType   uint32 = 24
	IDDiagnosticInfo uint32 = 25
	IDNumber         uint32 = 26
	IDInteger        uint32 = 27
	IDUInteger       uint32 = 28
	IDEnumeration    uint32 = 29
	IDImage          uint32 = 30

	IDReferences                 uint32 = 31
	IDNonHierarchicalReferences  uint32 = 32
	IDHierarchicalReferences     uint32 = 33
	IDHasChild                   uint32 = 34
	IDOrganizes                  uint32 = 35
	IDHasEventSource             uint32 = 36
	IDHasModellingRule           uint32 = 37
	IDHasEncoding                uint32 = 38
	IDHasDescription             uint32 = 39
	IDHasTypeDefinition          uint32 = 40
	IDGeneratesEvent             uint32 = 41
	IDAggregates                 uint32 = 44
	IDHasSubtype                 uint32 = 45
	IDHasProperty                uint32 = 46
	IDHasComponent               uint32 = 47
	IDHasNotifier                uint32 = 48
	IDHasOrderedComponent        uint32 = 49

	IDBaseObjectType       uint32 = 58
	IDFolderType           uint32 = 61
	IDBaseVariableType     uint32 = 62
	IDBaseDataVariableType uint32 = 63
	IDPropertyType         uint32 = 68
	IDModellingRuleMandatory uint32 = 78

	IDRootFolder           uint32 = 84
	IDObjectsFolder        uint32 = 85
	IDTypesFolder          uint32 = 86
	IDViewsFolder          uint32 = 87
	IDObjectTypesFolder    uint32 = 88
	IDVariableTypesFolder  uint32 = 89
	IDDataTypesFolder      uint32 = 90
	IDReferenceTypesFolder uint32 = 91

	IDServerType            uint32 = 2004
	IDServer                uint32 = 2253
	IDServerArray           uint32 = 2254
	IDNamespaceArray        uint32 = 2255
	IDServerStatus          uint32 = 2256
	IDServerStatusStartTime uint32 = 2257
	IDServerStatusCurrentTime uint32 = 2258
	IDServerStatusState     uint32 = 2259
	IDServerStatusBuildInfo uint32 = 2260
)

// Binary encoding NodeIds of the service request/response structures
// (the "<name>_Encoding_DefaultBinary" numeric ids of OPC UA 1.04).
const (
	IDServiceFaultEncoding                          uint32 = 397
	IDFindServersRequestEncoding                    uint32 = 422
	IDFindServersResponseEncoding                   uint32 = 425
	IDGetEndpointsRequestEncoding                   uint32 = 428
	IDGetEndpointsResponseEncoding                  uint32 = 431
	IDOpenSecureChannelRequestEncoding              uint32 = 446
	IDOpenSecureChannelResponseEncoding             uint32 = 449
	IDCloseSecureChannelRequestEncoding             uint32 = 452
	IDCloseSecureChannelResponseEncoding            uint32 = 455
	IDCreateSessionRequestEncoding                  uint32 = 461
	IDCreateSessionResponseEncoding                 uint32 = 464
	IDActivateSessionRequestEncoding                uint32 = 467
	IDActivateSessionResponseEncoding               uint32 = 470
	IDCloseSessionRequestEncoding                   uint32 = 473
	IDCloseSessionResponseEncoding                  uint32 = 476
	IDCancelRequestEncoding                         uint32 = 479
	IDCancelResponseEncoding                        uint32 = 482
	IDAddNodesRequestEncoding                       uint32 = 488
	IDAddNodesResponseEncoding                      uint32 = 491
	IDAddReferencesRequestEncoding                  uint32 = 494
	IDAddReferencesResponseEncoding                 uint32 = 497
	IDDeleteNodesRequestEncoding                    uint32 = 500
	IDDeleteNodesResponseEncoding                   uint32 = 503
	IDDeleteReferencesRequestEncoding               uint32 = 506
	IDDeleteReferencesResponseEncoding              uint32 = 509
	IDBrowseRequestEncoding                         uint32 = 527
	IDBrowseResponseEncoding                        uint32 = 530
	IDBrowseNextRequestEncoding                     uint32 = 533
	IDBrowseNextResponseEncoding                    uint32 = 536
	IDTranslateBrowsePathsRequestEncoding           uint32 = 554
	IDTranslateBrowsePathsResponseEncoding          uint32 = 557
	IDRegisterNodesRequestEncoding                  uint32 = 560
	IDRegisterNodesResponseEncoding                 uint32 = 563
	IDUnregisterNodesRequestEncoding                uint32 = 566
	IDUnregisterNodesResponseEncoding               uint32 = 569
	IDReadRequestEncoding                           uint32 = 631
	IDReadResponseEncoding                          uint32 = 634
	IDWriteRequestEncoding                          uint32 = 673
	IDWriteResponseEncoding                         uint32 = 676
	IDCallRequestEncoding                           uint32 = 710
	IDCallResponseEncoding                          uint32 = 713
	IDCreateMonitoredItemsRequestEncoding           uint32 = 749
	IDCreateMonitoredItemsResponseEncoding          uint32 = 752
	IDModifyMonitoredItemsRequestEncoding           uint32 = 761
	IDModifyMonitoredItemsResponseEncoding          uint32 = 764
	IDSetMonitoringModeRequestEncoding              uint32 = 767
	IDSetMonitoringModeResponseEncoding             uint32 = 770
	IDDeleteMonitoredItemsRequestEncoding           uint32 = 779
	IDDeleteMonitoredItemsResponseEncoding          uint32 = 782
	IDCreateSubscriptionRequestEncoding             uint32 = 785
	IDCreateSubscriptionResponseEncoding            uint32 = 788
	IDModifySubscriptionRequestEncoding             uint32 = 791
	IDModifySubscriptionResponseEncoding            uint32 = 794
	IDSetPublishingModeRequestEncoding              uint32 = 797
	IDSetPublishingModeResponseEncoding             uint32 = 800
	IDPublishRequestEncoding                        uint32 = 824
	IDPublishResponseEncoding                       uint32 = 827
	IDRepublishRequestEncoding                      uint32 = 830
	IDRepublishResponseEncoding                     uint32 = 833
	IDTransferSubscriptionsRequestEncoding          uint32 = 839
	IDTransferSubscriptionsResponseEncoding         uint32 = 842
	IDDeleteSubscriptionsRequestEncoding            uint32 = 845
	IDDeleteSubscriptionsResponseEncoding           uint32 = 848
)

// Binary encoding NodeIds of structured types carried in ExtensionObjects.
const (
	IDArgumentEncoding                 uint32 = 298
	IDObjectAttributesEncoding         uint32 = 354
	IDVariableAttributesEncoding       uint32 = 357
	IDMethodAttributesEncoding         uint32 = 360
	IDObjectTypeAttributesEncoding     uint32 = 363
	IDVariableTypeAttributesEncoding   uint32 = 366
	IDReferenceTypeAttributesEncoding  uint32 = 369
	IDDataTypeAttributesEncoding       uint32 = 372
	IDViewAttributesEncoding           uint32 = 375
	IDAnonymousIdentityTokenEncoding   uint32 = 321
	IDUserNameIdentityTokenEncoding    uint32 = 324
	IDX509IdentityTokenEncoding        uint32 = 327
	IDBuildInfoEncoding                uint32 = 340
	IDServerStatusDataTypeEncoding     uint32 = 864
	IDDataChangeFilterEncoding         uint32 = 724
	IDEventFilterEncoding              uint32 = 727
	IDDataChangeNotificationEncoding   uint32 = 811
	IDStatusChangeNotificationEncoding uint32 = 820
	IDEventNotificationListEncoding    uint32 = 916
)
