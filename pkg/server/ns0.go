package server

import (
	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// bootstrapNamespaceZero builds the standard OPC UA hierarchy in a fixed
// order: References and HasSubtype first (everything else hangs off them),
// the remaining reference types, the base data/object/variable types, the
// folder skeleton, then the Server object.
func (s *Server) bootstrapNamespaceZero() {
	s.addReferenceTypes()
	s.addDataTypes()
	s.addObjectAndVariableTypes()
	s.addFolderSkeleton()
	s.addServerObject()
	logger.Category("nodestore").Debug("namespace 0 bootstrapped")
}

func nid(id uint32) ua.NodeID {
	return ua.NewNumericNodeID(0, id)
}

// insertNS0 inserts a node. The bootstrap set is static; a collision is a
// programming error and gets logged loudly rather than taking the server
// down.
func (s *Server) insertNS0(node *nodestore.Node) {
	if _, status := s.store.Insert(node); status != ua.StatusGood {
		logger.Category("nodestore").Error("ns0 bootstrap insert failed",
			logger.KeyNodeID, node.ID.String(),
			logger.KeyStatus, status.Name())
	}
}

func (s *Server) subtypeRef(sub, super uint32) {
	s.store.AddReference(nid(super), nid(ua.IDHasSubtype), ua.NewExpandedNodeID(nid(sub)), true)
}

func (s *Server) addReferenceType(id uint32, name string, abstract, symmetric bool, inverseName string, supertype uint32) {
	node := &nodestore.Node{
		ID:          nid(id),
		Class:       ua.NodeClassReferenceType,
		BrowseName:  ua.NewQualifiedName(0, name),
		DisplayName: ua.NewLocalizedText(name),
		IsAbstract:  abstract,
		Symmetric:   symmetric,
	}
	if inverseName != "" {
		node.InverseName = ua.NewLocalizedText(inverseName)
	}
	s.insertNS0(node)
	if supertype != 0 {
		s.subtypeRef(id, supertype)
	}
}

func (s *Server) addReferenceTypes() {
	// References first, then the chain down to HasSubtype. AddReference
	// only checks the source and target nodes, so the subtype edges of
	// HierarchicalReferences and HasChild go in before HasSubtype exists.
	s.addReferenceType(ua.IDReferences, "References", true, true, "", 0)
	s.addReferenceType(ua.IDHierarchicalReferences, "HierarchicalReferences", true, false, "InverseHierarchicalReferences", ua.IDReferences)
	s.addReferenceType(ua.IDHasChild, "HasChild", true, false, "ChildOf", ua.IDHierarchicalReferences)
	s.addReferenceType(ua.IDHasSubtype, "HasSubtype", false, false, "SubtypeOf", ua.IDHasChild)

	s.addReferenceType(ua.IDNonHierarchicalReferences, "NonHierarchicalReferences", true, true, "", ua.IDReferences)
	s.addReferenceType(ua.IDOrganizes, "Organizes", false, false, "OrganizedBy", ua.IDHierarchicalReferences)
	s.addReferenceType(ua.IDHasEventSource, "HasEventSource", false, false, "EventSourceOf", ua.IDHierarchicalReferences)
	s.addReferenceType(ua.IDHasModellingRule, "HasModellingRule", false, false, "ModellingRuleOf", ua.IDNonHierarchicalReferences)
	s.addReferenceType(ua.IDHasEncoding, "HasEncoding", false, false, "EncodingOf", ua.IDNonHierarchicalReferences)
	s.addReferenceType(ua.IDHasDescription, "HasDescription", false, false, "DescriptionOf", ua.IDNonHierarchicalReferences)
	s.addReferenceType(ua.IDHasTypeDefinition, "HasTypeDefinition", false, false, "TypeDefinitionOf", ua.IDNonHierarchicalReferences)
	s.addReferenceType(ua.IDGeneratesEvent, "GeneratesEvent", false, false, "GeneratedBy", ua.IDNonHierarchicalReferences)
	s.addReferenceType(ua.IDAggregates, "Aggregates", true, false, "AggregatedBy", ua.IDHasChild)
	s.addReferenceType(ua.IDHasProperty, "HasProperty", false, false, "PropertyOf", ua.IDAggregates)
	s.addReferenceType(ua.IDHasComponent, "HasComponent", false, false, "ComponentOf", ua.IDAggregates)
	s.addReferenceType(ua.IDHasNotifier, "HasNotifier", false, false, "NotifierOf", ua.IDHasEventSource)
	s.addReferenceType(ua.IDHasOrderedComponent, "HasOrderedComponent", false, false, "OrderedComponentOf", ua.IDHasComponent)
}

func (s *Server) addDataType(id uint32, name string, abstract bool, supertype uint32) {
	s.insertNS0(&nodestore.Node{
		ID:          nid(id),
		Class:       ua.NodeClassDataType,
		BrowseName:  ua.NewQualifiedName(0, name),
		DisplayName: ua.NewLocalizedText(name),
		IsAbstract:  abstract,
	})
	if supertype != 0 {
		s.subtypeRef(id, supertype)
	}
}

func (s *Server) addDataTypes() {
	s.addDataType(ua.IDBaseDataType, "BaseDataType", true, 0)
	s.addDataType(ua.IDBoolean, "Boolean", false, ua.IDBaseDataType)
	s.addDataType(ua.IDNumber, "Number", true, ua.IDBaseDataType)
	s.addDataType(ua.IDInteger, "Integer", true, ua.IDNumber)
	s.addDataType(ua.IDSByte, "SByte", false, ua.IDInteger)
	s.addDataType(ua.IDInt16, "Int16", false, ua.IDInteger)
	s.addDataType(ua.IDInt32, "Int32", false, ua.IDInteger)
	s.addDataType(ua.IDInt64, "Int64", false, ua.IDInteger)
	s.addDataType(ua.IDUInteger, "UInteger", true, ua.IDNumber)
	s.addDataType(ua.IDByte, "Byte", false, ua.IDUInteger)
	s.addDataType(ua.IDUInt16, "UInt16", false, ua.IDUInteger)
	s.addDataType(ua.IDUInt32, "UInt32", false, ua.IDUInteger)
	s.addDataType(ua.IDUInt64, "UInt64", false, ua.IDUInteger)
	s.addDataType(ua.IDFloat, "Float", false, ua.IDNumber)
	s.addDataType(ua.IDDouble, "Double", false, ua.IDNumber)
	s.addDataType(ua.IDString, "String", false, ua.IDBaseDataType)
	s.addDataType(ua.IDDateTime, "DateTime", false, ua.IDBaseDataType)
	s.addDataType(ua.IDGUID, "Guid", false, ua.IDBaseDataType)
	s.addDataType(ua.IDByteString, "ByteString", false, ua.IDBaseDataType)
	s.addDataType(ua.IDImage, "Image", true, ua.IDByteString)
	s.addDataType(ua.IDXMLElement, "XmlElement", false, ua.IDBaseDataType)
	s.addDataType(ua.IDNodeID, "NodeId", false, ua.IDBaseDataType)
	s.addDataType(ua.IDExpandedNodeID, "ExpandedNodeId", false, ua.IDBaseDataType)
	s.addDataType(ua.IDStatusCode, "StatusCode", false, ua.IDBaseDataType)
	s.addDataType(ua.IDQualifiedName, "QualifiedName", false, ua.IDBaseDataType)
	s.addDataType(ua.IDLocalizedText, "LocalizedText", false, ua.IDBaseDataType)
	s.addDataType(ua.IDStructure, "Structure", true, ua.IDBaseDataType)
	s.addDataType(ua.IDDataValue, "DataValue", false, ua.IDBaseDataType)
	s.addDataType(ua.IDDiagnosticInfo, "DiagnosticInfo", false, ua.IDBaseDataType)
	s.addDataType(ua.IDEnumeration, "Enumeration", true, ua.IDBaseDataType)
}

func (s *Server) addObjectType(id uint32, name string, abstract bool, supertype uint32) {
	s.insertNS0(&nodestore.Node{
		ID:          nid(id),
		Class:       ua.NodeClassObjectType,
		BrowseName:  ua.NewQualifiedName(0, name),
		DisplayName: ua.NewLocalizedText(name),
		IsAbstract:  abstract,
	})
	if supertype != 0 {
		s.subtypeRef(id, supertype)
	}
}

func (s *Server) addVariableType(id uint32, name string, abstract bool, valueRank int32, supertype uint32) {
	s.insertNS0(&nodestore.Node{
		ID:          nid(id),
		Class:       ua.NodeClassVariableType,
		BrowseName:  ua.NewQualifiedName(0, name),
		DisplayName: ua.NewLocalizedText(name),
		IsAbstract:  abstract,
		ValueRank:   valueRank,
		DataType:    nid(ua.IDBaseDataType),
	})
	if supertype != 0 {
		s.subtypeRef(id, supertype)
	}
}

func (s *Server) addObjectAndVariableTypes() {
	s.addObjectType(ua.IDBaseObjectType, "BaseObjectType", false, 0)
	s.addObjectType(ua.IDFolderType, "FolderType", false, ua.IDBaseObjectType)
	s.addObjectType(ua.IDServerType, "ServerType", false, ua.IDBaseObjectType)

	s.addVariableType(ua.IDBaseVariableType, "BaseVariableType", true, ua.ValueRankAny, 0)
	s.addVariableType(ua.IDBaseDataVariableType, "BaseDataVariableType", false, ua.ValueRankAny, ua.IDBaseVariableType)
	s.addVariableType(ua.IDPropertyType, "PropertyType", false, ua.ValueRankAny, ua.IDBaseVariableType)

	// Mandatory modelling rule object.
	s.insertNS0(&nodestore.Node{
		ID:          nid(ua.IDModellingRuleMandatory),
		Class:       ua.NodeClassObject,
		BrowseName:  ua.NewQualifiedName(0, "Mandatory"),
		DisplayName: ua.NewLocalizedText("Mandatory"),
	})
}

func (s *Server) addFolder(id uint32, name string) {
	s.insertNS0(&nodestore.Node{
		ID:          nid(id),
		Class:       ua.NodeClassObject,
		BrowseName:  ua.NewQualifiedName(0, name),
		DisplayName: ua.NewLocalizedText(name),
	})
	s.store.AddReference(nid(id), nid(ua.IDHasTypeDefinition), ua.NewExpandedNodeID(nid(ua.IDFolderType)), true)
}

func (s *Server) addFolderSkeleton() {
	s.addFolder(ua.IDRootFolder, "Root")
	s.addFolder(ua.IDObjectsFolder, "Objects")
	s.addFolder(ua.IDTypesFolder, "Types")
	s.addFolder(ua.IDViewsFolder, "Views")
	organizes := nid(ua.IDOrganizes)
	s.store.AddReference(nid(ua.IDRootFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDObjectsFolder)), true)
	s.store.AddReference(nid(ua.IDRootFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDTypesFolder)), true)
	s.store.AddReference(nid(ua.IDRootFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDViewsFolder)), true)

	s.addFolder(ua.IDObjectTypesFolder, "ObjectTypes")
	s.addFolder(ua.IDVariableTypesFolder, "VariableTypes")
	s.addFolder(ua.IDDataTypesFolder, "DataTypes")
	s.addFolder(ua.IDReferenceTypesFolder, "ReferenceTypes")
	s.store.AddReference(nid(ua.IDTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDObjectTypesFolder)), true)
	s.store.AddReference(nid(ua.IDTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDVariableTypesFolder)), true)
	s.store.AddReference(nid(ua.IDTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDDataTypesFolder)), true)
	s.store.AddReference(nid(ua.IDTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDReferenceTypesFolder)), true)

	// Type roots hang under their folders.
	s.store.AddReference(nid(ua.IDObjectTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDBaseObjectType)), true)
	s.store.AddReference(nid(ua.IDVariableTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDBaseVariableType)), true)
	s.store.AddReference(nid(ua.IDDataTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDBaseDataType)), true)
	s.store.AddReference(nid(ua.IDReferenceTypesFolder), organizes, ua.NewExpandedNodeID(nid(ua.IDReferences)), true)
}

// addServerObject builds the Server object with its capability variables:
// NamespaceArray (value-source backed so it always shows the registered
// namespaces), ServerArray (a static value) and the ServerStatus subtree.
func (s *Server) addServerObject() {
	hasProperty := nid(ua.IDHasProperty)
	hasComponent := nid(ua.IDHasComponent)
	hasTypeDef := nid(ua.IDHasTypeDefinition)

	s.insertNS0(&nodestore.Node{
		ID:          nid(ua.IDServer),
		Class:       ua.NodeClassObject,
		BrowseName:  ua.NewQualifiedName(0, "Server"),
		DisplayName: ua.NewLocalizedText("Server"),
	})
	s.store.AddReference(nid(ua.IDServer), hasTypeDef, ua.NewExpandedNodeID(nid(ua.IDServerType)), true)
	s.store.AddReference(nid(ua.IDObjectsFolder), nid(ua.IDOrganizes), ua.NewExpandedNodeID(nid(ua.IDServer)), true)

	addProperty := func(id uint32, name string, dataType uint32, valueRank int32, source *nodestore.ValueSource, value ua.Variant) {
		node := &nodestore.Node{
			ID:          nid(id),
			Class:       ua.NodeClassVariable,
			BrowseName:  ua.NewQualifiedName(0, name),
			DisplayName: ua.NewLocalizedText(name),
			DataType:    nid(dataType),
			ValueRank:   valueRank,
			AccessLevel: ua.AccessLevelCurrentRead,
			UserAccessLevel: ua.AccessLevelCurrentRead,
			Source:      source,
		}
		if source == nil {
			node.Value = ua.NewDataValue(value)
		}
		s.insertNS0(node)
		s.store.AddReference(nid(ua.IDServer), hasProperty, ua.NewExpandedNodeID(nid(id)), true)
		s.store.AddReference(nid(id), hasTypeDef, ua.NewExpandedNodeID(nid(ua.IDPropertyType)), true)
	}

	// NamespaceArray: always reflects the registered namespaces.
	addProperty(ua.IDNamespaceArray, "NamespaceArray", ua.IDString, ua.ValueRankOneDimension,
		&nodestore.ValueSource{
			Read: func(ua.NodeID) (ua.DataValue, ua.StatusCode) {
				return ua.NewDataValue(ua.NewVariant(s.store.NamespaceArray())), ua.StatusGood
			},
		}, ua.Variant{})

	// ServerArray: this server's application URI at index 0.
	addProperty(ua.IDServerArray, "ServerArray", ua.IDString, ua.ValueRankOneDimension,
		nil, ua.NewVariant([]string{s.config.ApplicationURI}))

	// ServerStatus with a live value source.
	statusSource := &nodestore.ValueSource{
		Read: func(ua.NodeID) (ua.DataValue, ua.StatusCode) {
			status := s.serverStatus()
			ext := uabin.NewExtensionObject(ua.IDServerStatusDataTypeEncoding, &status)
			return ua.NewDataValue(ua.NewVariant(ext)), ua.StatusGood
		},
	}
	s.insertNS0(&nodestore.Node{
		ID:          nid(ua.IDServerStatus),
		Class:       ua.NodeClassVariable,
		BrowseName:  ua.NewQualifiedName(0, "ServerStatus"),
		DisplayName: ua.NewLocalizedText("ServerStatus"),
		DataType:    nid(ua.IDStructure),
		ValueRank:   ua.ValueRankScalar,
		AccessLevel: ua.AccessLevelCurrentRead,
		UserAccessLevel: ua.AccessLevelCurrentRead,
		Source:      statusSource,
	})
	s.store.AddReference(nid(ua.IDServer), hasComponent, ua.NewExpandedNodeID(nid(ua.IDServerStatus)), true)
	s.store.AddReference(nid(ua.IDServerStatus), hasTypeDef, ua.NewExpandedNodeID(nid(ua.IDBaseDataVariableType)), true)

	addStatusChild := func(id uint32, name string, dataType uint32, source *nodestore.ValueSource, value ua.Variant) {
		node := &nodestore.Node{
			ID:          nid(id),
			Class:       ua.NodeClassVariable,
			BrowseName:  ua.NewQualifiedName(0, name),
			DisplayName: ua.NewLocalizedText(name),
			DataType:    nid(dataType),
			ValueRank:   ua.ValueRankScalar,
			AccessLevel: ua.AccessLevelCurrentRead,
			UserAccessLevel: ua.AccessLevelCurrentRead,
			Source:      source,
		}
		if source == nil {
			node.Value = ua.NewDataValue(value)
		}
		s.insertNS0(node)
		s.store.AddReference(nid(ua.IDServerStatus), hasComponent, ua.NewExpandedNodeID(nid(id)), true)
		s.store.AddReference(nid(id), hasTypeDef, ua.NewExpandedNodeID(nid(ua.IDBaseDataVariableType)), true)
	}

	addStatusChild(ua.IDServerStatusStartTime, "StartTime", ua.IDDateTime, nil, ua.NewVariant(s.startTime))
	addStatusChild(ua.IDServerStatusCurrentTime, "CurrentTime", ua.IDDateTime,
		&nodestore.ValueSource{
			Read: func(ua.NodeID) (ua.DataValue, ua.StatusCode) {
				return ua.NewDataValue(ua.NewVariant(s.clock.Now())), ua.StatusGood
			},
		}, ua.Variant{})
	addStatusChild(ua.IDServerStatusState, "State", ua.IDInt32, nil, ua.NewVariant(int32(ua.ServerStateRunning)))
	addStatusChild(ua.IDServerStatusBuildInfo, "BuildInfo", ua.IDStructure, nil,
		ua.NewVariant(uabin.NewExtensionObject(ua.IDBuildInfoEncoding, s.buildInfo())))
}

func (s *Server) buildInfo() *ua.BuildInfo {
	return &ua.BuildInfo{
		ProductURI:       s.config.ProductURI,
		ManufacturerName: s.config.ManufacturerName,
		ProductName:      s.config.ProductName,
		SoftwareVersion:  s.config.SoftwareVersion,
		BuildNumber:      s.config.BuildNumber,
		BuildDate:        s.startTime,
	}
}

func (s *Server) serverStatus() ua.ServerStatusDataType {
	return ua.ServerStatusDataType{
		StartTime:   s.startTime,
		CurrentTime: s.clock.Now(),
		State:       ua.ServerStateRunning,
		BuildInfo:   *s.buildInfo(),
	}
}
