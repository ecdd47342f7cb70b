package server

import (
	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/ua"
)

func (s *Server) handleAddNodes(ctx *requestContext, req *ua.AddNodesRequest) any {
	if len(req.NodesToAdd) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.AddNodesResult, len(req.NodesToAdd))
	for i, item := range req.NodesToAdd {
		results[i] = s.addNode(item)
	}
	return &ua.AddNodesResponse{Results: results}
}

// addNode validates one AddNodes item and inserts the node with its
// parent reference and type definition.
func (s *Server) addNode(item ua.AddNodesItem) ua.AddNodesResult {
	fail := func(status ua.StatusCode) ua.AddNodesResult {
		return ua.AddNodesResult{StatusCode: status}
	}

	if !item.ParentNodeID.IsLocal() {
		return fail(ua.StatusBadParentNodeIDInvalid)
	}
	parent, status := s.store.Get(item.ParentNodeID.NodeID)
	if status != ua.StatusGood {
		return fail(ua.StatusBadParentNodeIDInvalid)
	}
	_ = parent

	refNode, status := s.store.Get(item.ReferenceTypeID)
	if status != ua.StatusGood || refNode.Class != ua.NodeClassReferenceType {
		return fail(ua.StatusBadReferenceTypeIDInvalid)
	}
	if item.BrowseName.Name == "" {
		return fail(ua.StatusBadBrowseNameInvalid)
	}

	node := &nodestore.Node{
		Class:      item.NodeClass,
		BrowseName: item.BrowseName,
	}
	if !item.RequestedNewNodeID.NodeID.IsNull() {
		if !item.RequestedNewNodeID.IsLocal() {
			return fail(ua.StatusBadNodeIDRejected)
		}
		node.ID = item.RequestedNewNodeID.NodeID
	}

	// Apply the class-specific attribute structure.
	var typeDefRequired bool
	switch item.NodeClass {
	case ua.NodeClassObject:
		typeDefRequired = true
		attrs, ok := decodedAttributes[*ua.ObjectAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.EventNotifier = attrs.EventNotifier

	case ua.NodeClassVariable:
		typeDefRequired = true
		attrs, ok := decodedAttributes[*ua.VariableAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.Value = ua.NewDataValue(attrs.Value)
		node.DataType = attrs.DataType
		node.ValueRank = attrs.ValueRank
		node.ArrayDimensions = attrs.ArrayDimensions
		node.AccessLevel = attrs.AccessLevel
		node.UserAccessLevel = attrs.UserAccessLevel
		node.MinimumSamplingInterval = attrs.MinimumSamplingInterval
		node.Historizing = attrs.Historizing
		if node.DataType.IsNull() {
			node.DataType = ua.NewNumericNodeID(0, ua.IDBaseDataType)
		}
		if !s.store.IsValueCompatible(attrs.Value, node.DataType, node.ValueRank, node.ArrayDimensions) {
			return fail(ua.StatusBadTypeMismatch)
		}

	case ua.NodeClassMethod:
		attrs, ok := decodedAttributes[*ua.MethodAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.Executable = attrs.Executable
		node.UserExecutable = attrs.UserExecutable

	case ua.NodeClassObjectType:
		attrs, ok := decodedAttributes[*ua.ObjectTypeAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.IsAbstract = attrs.IsAbstract

	case ua.NodeClassVariableType:
		attrs, ok := decodedAttributes[*ua.VariableTypeAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.Value = ua.NewDataValue(attrs.Value)
		node.DataType = attrs.DataType
		node.ValueRank = attrs.ValueRank
		node.ArrayDimensions = attrs.ArrayDimensions
		node.IsAbstract = attrs.IsAbstract

	case ua.NodeClassReferenceType:
		attrs, ok := decodedAttributes[*ua.ReferenceTypeAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.IsAbstract = attrs.IsAbstract
		node.Symmetric = attrs.Symmetric
		node.InverseName = attrs.InverseName

	case ua.NodeClassDataType:
		attrs, ok := decodedAttributes[*ua.DataTypeAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.IsAbstract = attrs.IsAbstract

	case ua.NodeClassView:
		attrs, ok := decodedAttributes[*ua.ViewAttributes](item.NodeAttributes)
		if !ok {
			return fail(ua.StatusBadNodeAttributesInvalid)
		}
		applyCommonAttributes(node, attrs.NodeAttributes)
		node.ContainsNoLoops = attrs.ContainsNoLoops
		node.EventNotifier = attrs.EventNotifier

	default:
		return fail(ua.StatusBadNodeClassInvalid)
	}

	// Object and Variable nodes need a concrete type definition.
	var typeDef ua.NodeID
	if typeDefRequired {
		if !item.TypeDefinition.IsLocal() || item.TypeDefinition.NodeID.IsNull() {
			return fail(ua.StatusBadTypeDefinitionInvalid)
		}
		typeDef = item.TypeDefinition.NodeID
		typeNode, status := s.store.Get(typeDef)
		if status != ua.StatusGood {
			return fail(ua.StatusBadTypeDefinitionInvalid)
		}
		wantClass := ua.NodeClassObjectType
		if item.NodeClass == ua.NodeClassVariable {
			wantClass = ua.NodeClassVariableType
		}
		if typeNode.Class != wantClass || typeNode.IsAbstract {
			return fail(ua.StatusBadTypeDefinitionInvalid)
		}
	}

	id, status := s.store.Insert(node)
	if status != ua.StatusGood {
		return fail(status)
	}
	if status := s.store.AddReference(item.ParentNodeID.NodeID, item.ReferenceTypeID, ua.NewExpandedNodeID(id), true); status != ua.StatusGood {
		s.store.Remove(id)
		return fail(status)
	}
	if typeDefRequired {
		hasTypeDef := ua.NewNumericNodeID(0, ua.IDHasTypeDefinition)
		if status := s.store.AddReference(id, hasTypeDef, ua.NewExpandedNodeID(typeDef), true); status != ua.StatusGood {
			s.store.Remove(id)
			return fail(status)
		}
	}
	return ua.AddNodesResult{StatusCode: ua.StatusGood, AddedNodeID: id}
}

// decodedAttributes extracts a typed attribute structure from the item's
// ExtensionObject.
func decodedAttributes[T any](obj *ua.ExtensionObject) (T, bool) {
	var zero T
	if obj == nil || obj.Decoded == nil {
		return zero, false
	}
	v, ok := obj.Decoded.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func applyCommonAttributes(node *nodestore.Node, attrs ua.NodeAttributes) {
	node.DisplayName = attrs.DisplayName
	node.Description = attrs.Description
	node.WriteMask = attrs.WriteMask
	node.UserWriteMask = attrs.UserWriteMask
	if node.DisplayName.Text == "" {
		node.DisplayName = ua.NewLocalizedText(node.BrowseName.Name)
	}
}

func (s *Server) handleAddReferences(ctx *requestContext, req *ua.AddReferencesRequest) any {
	if len(req.ReferencesToAdd) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.StatusCode, len(req.ReferencesToAdd))
	for i, item := range req.ReferencesToAdd {
		if refNode, status := s.store.Get(item.ReferenceTypeID); status != ua.StatusGood || refNode.Class != ua.NodeClassReferenceType {
			results[i] = ua.StatusBadReferenceTypeIDInvalid
			continue
		}
		results[i] = s.store.AddReference(item.SourceNodeID, item.ReferenceTypeID, item.TargetNodeID, item.IsForward)
	}
	return &ua.AddReferencesResponse{Results: results}
}

func (s *Server) handleDeleteNodes(ctx *requestContext, req *ua.DeleteNodesRequest) any {
	if len(req.NodesToDelete) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.StatusCode, len(req.NodesToDelete))
	for i, item := range req.NodesToDelete {
		if item.NodeID.Namespace == 0 {
			// The standard namespace is immutable.
			results[i] = ua.StatusBadNoDeleteRights
			continue
		}
		status := s.store.Remove(item.NodeID)
		if status == ua.StatusGood && item.DeleteTargetReferences {
			s.store.StripInboundReferences(item.NodeID)
		}
		results[i] = status
	}
	return &ua.DeleteNodesResponse{Results: results}
}

func (s *Server) handleDeleteReferences(ctx *requestContext, req *ua.DeleteReferencesRequest) any {
	if len(req.ReferencesToDelete) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.StatusCode, len(req.ReferencesToDelete))
	for i, item := range req.ReferencesToDelete {
		results[i] = s.store.DeleteReference(item.SourceNodeID, item.ReferenceTypeID,
			item.TargetNodeID, item.IsForward, item.DeleteBidirectional)
	}
	return &ua.DeleteReferencesResponse{Results: results}
}
