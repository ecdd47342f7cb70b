package server

import (
	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/ua"
)

func (s *Server) handleBrowse(ctx *requestContext, req *ua.BrowseRequest) any {
	if len(req.NodesToBrowse) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	if !req.View.ViewID.IsNull() {
		// Views are not populated; only the whole-space view exists.
		results := make([]ua.BrowseResult, len(req.NodesToBrowse))
		for i := range results {
			results[i] = ua.BrowseResult{StatusCode: ua.StatusBadNodeIDUnknown}
		}
		return &ua.BrowseResponse{Results: results}
	}

	maxRefs := req.RequestedMaxReferencesPerNode
	if maxRefs == 0 || maxRefs > s.config.MaxReferencesPerNode {
		maxRefs = s.config.MaxReferencesPerNode
	}

	results := make([]ua.BrowseResult, len(req.NodesToBrowse))
	for i, desc := range req.NodesToBrowse {
		results[i] = s.browseNode(ctx.session.ID, desc, maxRefs)
	}
	return &ua.BrowseResponse{Results: results}
}

// browseNode produces the reference descriptors of one node, creating a
// continuation point when the result exceeds maxRefs.
func (s *Server) browseNode(sessionID ua.NodeID, desc ua.BrowseDescription, maxRefs uint32) ua.BrowseResult {
	if desc.Direction > ua.BrowseDirectionBoth {
		return ua.BrowseResult{StatusCode: ua.StatusBadBrowseDirectionInvalid}
	}
	node, status := s.store.Get(desc.NodeID)
	if status != ua.StatusGood {
		return ua.BrowseResult{StatusCode: status}
	}
	if !desc.ReferenceTypeID.IsNull() {
		if refNode, st := s.store.Get(desc.ReferenceTypeID); st != ua.StatusGood || refNode.Class != ua.NodeClassReferenceType {
			return ua.BrowseResult{StatusCode: ua.StatusBadReferenceTypeIDInvalid}
		}
	}

	var all []ua.ReferenceDescription
	for _, ref := range node.References {
		if !s.referenceMatches(ref, desc) {
			continue
		}
		all = append(all, s.describeReference(ref, desc.ResultMask, desc.NodeClassMask))
	}
	// Strip entries filtered out by node class.
	kept := all[:0]
	for _, rd := range all {
		if rd.NodeID.NodeID.IsNull() && rd.NodeClass == 0 && rd.ReferenceTypeID.IsNull() {
			continue
		}
		kept = append(kept, rd)
	}
	all = kept

	result := ua.BrowseResult{StatusCode: ua.StatusGood}
	if uint32(len(all)) > maxRefs {
		cp := s.continuations.create(sessionID, all[maxRefs:], maxRefs)
		if cp == nil {
			return ua.BrowseResult{StatusCode: ua.StatusBadNoContinuationPoints}
		}
		result.ContinuationPoint = cp
		all = all[:maxRefs]
	}
	result.References = all
	return result
}

// referenceMatches applies direction and reference-type filtering.
func (s *Server) referenceMatches(ref nodestore.Reference, desc ua.BrowseDescription) bool {
	switch desc.Direction {
	case ua.BrowseDirectionForward:
		if ref.IsInverse {
			return false
		}
	case ua.BrowseDirectionInverse:
		if !ref.IsInverse {
			return false
		}
	}
	if desc.ReferenceTypeID.IsNull() {
		return true
	}
	if ref.ReferenceTypeID == desc.ReferenceTypeID {
		return true
	}
	if desc.IncludeSubtypes {
		return s.store.IsSubtypeOf(ref.ReferenceTypeID, desc.ReferenceTypeID)
	}
	return false
}

// describeReference renders one reference per the result mask. A zero
// value signals the target was filtered out by node class.
func (s *Server) describeReference(ref nodestore.Reference, resultMask, nodeClassMask uint32) ua.ReferenceDescription {
	rd := ua.ReferenceDescription{NodeID: ref.Target}

	var target *nodestore.Node
	if ref.Target.IsLocal() {
		target, _ = s.store.Get(ref.Target.NodeID)
	}
	if target != nil && nodeClassMask != 0 && uint32(target.Class)&nodeClassMask == 0 {
		return ua.ReferenceDescription{}
	}

	if resultMask&ua.BrowseResultMaskReferenceType != 0 {
		rd.ReferenceTypeID = ref.ReferenceTypeID
	}
	if resultMask&ua.BrowseResultMaskIsForward != 0 {
		rd.IsForward = !ref.IsInverse
	}
	if target != nil {
		if resultMask&ua.BrowseResultMaskNodeClass != 0 {
			rd.NodeClass = target.Class
		}
		if resultMask&ua.BrowseResultMaskBrowseName != 0 {
			rd.BrowseName = target.BrowseName
		}
		if resultMask&ua.BrowseResultMaskDisplayName != 0 {
			rd.DisplayName = target.DisplayName
		}
		if resultMask&ua.BrowseResultMaskTypeDefinition != 0 &&
			(target.Class == ua.NodeClassObject || target.Class == ua.NodeClassVariable) {
			rd.TypeDefinition = target.TypeDefinition()
		}
	}
	return rd
}

func (s *Server) handleBrowseNext(ctx *requestContext, req *ua.BrowseNextRequest) any {
	if len(req.ContinuationPoints) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.BrowseResult, len(req.ContinuationPoints))
	for i, cpID := range req.ContinuationPoints {
		cp, ok := s.continuations.take(ctx.session.ID, cpID)
		if !ok {
			results[i] = ua.BrowseResult{StatusCode: ua.StatusBadContinuationPointInvalid}
			continue
		}
		if req.ReleaseContinuationPoints {
			results[i] = ua.BrowseResult{StatusCode: ua.StatusGood}
			continue
		}
		refs := cp.remaining
		result := ua.BrowseResult{StatusCode: ua.StatusGood}
		if uint32(len(refs)) > cp.maxPerCall {
			newCP := s.continuations.create(ctx.session.ID, refs[cp.maxPerCall:], cp.maxPerCall)
			if newCP == nil {
				results[i] = ua.BrowseResult{StatusCode: ua.StatusBadNoContinuationPoints}
				continue
			}
			result.ContinuationPoint = newCP
			refs = refs[:cp.maxPerCall]
		}
		result.References = refs
		results[i] = result
	}
	return &ua.BrowseNextResponse{Results: results}
}

func (s *Server) handleTranslateBrowsePaths(ctx *requestContext, req *ua.TranslateBrowsePathsRequest) any {
	if len(req.BrowsePaths) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.BrowsePathResult, len(req.BrowsePaths))
	for i, path := range req.BrowsePaths {
		results[i] = s.translatePath(path)
	}
	return &ua.TranslateBrowsePathsResponse{Results: results}
}

// translatePath walks one browse path, collecting all matching end nodes.
func (s *Server) translatePath(path ua.BrowsePath) ua.BrowsePathResult {
	if len(path.RelativePath) == 0 {
		return ua.BrowsePathResult{StatusCode: ua.StatusBadNothingToDo}
	}
	if _, status := s.store.Get(path.StartingNode); status != ua.StatusGood {
		return ua.BrowsePathResult{StatusCode: status}
	}

	current := []ua.NodeID{path.StartingNode}
	for _, elem := range path.RelativePath {
		var next []ua.NodeID
		for _, nodeID := range current {
			node, status := s.store.Get(nodeID)
			if status != ua.StatusGood {
				continue
			}
			for _, ref := range node.References {
				if ref.IsInverse != elem.IsInverse {
					continue
				}
				if !elem.ReferenceTypeID.IsNull() {
					if ref.ReferenceTypeID != elem.ReferenceTypeID {
						if !elem.IncludeSubtypes || !s.store.IsSubtypeOf(ref.ReferenceTypeID, elem.ReferenceTypeID) {
							continue
						}
					}
				}
				if !ref.Target.IsLocal() {
					continue
				}
				target, status := s.store.Get(ref.Target.NodeID)
				if status != ua.StatusGood {
					continue
				}
				if target.BrowseName == elem.TargetName {
					next = append(next, target.ID)
				}
			}
		}
		if len(next) == 0 {
			return ua.BrowsePathResult{StatusCode: ua.StatusBadNoMatch}
		}
		current = next
	}

	targets := make([]ua.BrowsePathTarget, len(current))
	for i, id := range current {
		targets[i] = ua.BrowsePathTarget{
			TargetID:           ua.NewExpandedNodeID(id),
			RemainingPathIndex: 0xFFFFFFFF,
		}
	}
	return ua.BrowsePathResult{StatusCode: ua.StatusGood, Targets: targets}
}

func (s *Server) handleRegisterNodes(ctx *requestContext, req *ua.RegisterNodesRequest) any {
	if len(req.NodesToRegister) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	// Registration is an optimization hint; the ids come back unchanged.
	return &ua.RegisterNodesResponse{RegisteredNodeIDs: req.NodesToRegister}
}

func (s *Server) handleUnregisterNodes(ctx *requestContext, req *ua.UnregisterNodesRequest) any {
	if len(req.NodesToUnregister) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	return &ua.UnregisterNodesResponse{}
}
