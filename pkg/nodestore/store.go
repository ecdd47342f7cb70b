package nodestore

import (
	"sync"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/ua"
)

// namespaceStore is the arena of one namespace: node slots plus a NodeId
// index. Removed slots are nil and stay reserved; the identifier is never
// reissued within the namespace.
type namespaceStore struct {
	uri         string
	nodes       []*Node
	index       map[ua.NodeID]int
	nextNumeric uint32
}

// Store is the address space. All methods are safe for concurrent use; the
// service layer serializes mutations, so the lock mostly guards the
// background samplers.
type Store struct {
	mu         sync.RWMutex
	namespaces []*namespaceStore
	subtypes   *subtypeCache
}

// New creates a Store with namespace 0 (the OPC UA namespace) and
// namespace 1 (the application namespace with the given URI) registered.
// Callers bootstrap namespace 0 content separately.
func New(applicationURI string) *Store {
	s := &Store{
		subtypes: newSubtypeCache(),
	}
	s.namespaces = []*namespaceStore{
		{uri: "http://opcfoundation.org/UA/", index: make(map[ua.NodeID]int), nextNumeric: 50000},
		{uri: applicationURI, index: make(map[ua.NodeID]int), nextNumeric: 1000},
	}
	return s
}

// NamespaceArray returns the registered namespace URIs in index order.
func (s *Store) NamespaceArray() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, len(s.namespaces))
	for i, ns := range s.namespaces {
		uris[i] = ns.uri
	}
	return uris
}

// AddNamespace registers a namespace URI and returns its index. A URI that
// is already registered returns its existing index.
func (s *Store) AddNamespace(uri string) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ns := range s.namespaces {
		if ns.uri == uri {
			return uint16(i)
		}
	}
	s.namespaces = append(s.namespaces, &namespaceStore{
		uri:         uri,
		index:       make(map[ua.NodeID]int),
		nextNumeric: 1000,
	})
	return uint16(len(s.namespaces) - 1)
}

// NamespaceCount returns the number of registered namespaces.
func (s *Store) NamespaceCount() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint16(len(s.namespaces))
}

func (s *Store) namespaceLocked(index uint16) *namespaceStore {
	if int(index) >= len(s.namespaces) {
		return nil
	}
	return s.namespaces[index]
}

// Get returns the stored node for reading. The returned pointer must not
// be mutated; use GetCopy + Replace for edits.
func (s *Store) Get(id ua.NodeID) (*Node, ua.StatusCode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id ua.NodeID) (*Node, ua.StatusCode) {
	ns := s.namespaceLocked(id.Namespace)
	if ns == nil {
		return nil, ua.StatusBadNodeIDUnknown
	}
	slot, ok := ns.index[id]
	if !ok || ns.nodes[slot] == nil {
		return nil, ua.StatusBadNodeIDUnknown
	}
	return ns.nodes[slot], ua.StatusGood
}

// GetCopy returns an editable deep copy of the node, suitable for Replace.
func (s *Store) GetCopy(id ua.NodeID) (*Node, ua.StatusCode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, status := s.getLocked(id)
	if status != ua.StatusGood {
		return nil, status
	}
	return node.Copy(), ua.StatusGood
}

// Insert adds a node. A null NodeId is assigned a fresh numeric identifier
// in the node's namespace (namespace index 0 in the id selects the
// application namespace 1, matching how AddNodes treats absent ids).
// Returns the assigned id.
func (s *Store) Insert(node *Node) (ua.NodeID, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := node.ID
	if id.IsNull() {
		id = s.assignIDLocked(1)
	}
	ns := s.namespaceLocked(id.Namespace)
	if ns == nil {
		return ua.NodeID{}, ua.StatusBadNodeIDInvalid
	}
	if slot, ok := ns.index[id]; ok && ns.nodes[slot] != nil {
		return ua.NodeID{}, ua.StatusBadNodeIDExists
	}
	node.ID = id
	node.Version = 1
	ns.index[id] = len(ns.nodes)
	ns.nodes = append(ns.nodes, node)
	s.subtypes.purge()
	return id, ua.StatusGood
}

func (s *Store) assignIDLocked(nsIndex uint16) ua.NodeID {
	ns := s.namespaceLocked(nsIndex)
	for {
		ns.nextNumeric++
		id := ua.NewNumericNodeID(nsIndex, ns.nextNumeric)
		if _, ok := ns.index[id]; !ok {
			return id
		}
	}
}

// Replace installs an edited copy obtained from GetCopy. A version mismatch
// means the node changed underneath the editor; the caller lost the update
// race and the store keeps the current node.
func (s *Store) Replace(node *Node) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespaceLocked(node.ID.Namespace)
	if ns == nil {
		return ua.StatusBadNodeIDUnknown
	}
	slot, ok := ns.index[node.ID]
	if !ok || ns.nodes[slot] == nil {
		return ua.StatusBadNodeIDUnknown
	}
	current := ns.nodes[slot]
	if current.Version != node.Version {
		logger.Category("nodestore").Warn("replace lost update race",
			logger.KeyNodeID, node.ID.String(),
			"have_version", node.Version,
			"current_version", current.Version)
		return ua.StatusBadInternalError
	}
	node.Version++
	ns.nodes[slot] = node
	s.subtypes.purge()
	return ua.StatusGood
}

// Remove deletes a node. References pointing at the removed node from other
// nodes are cleaned up by the caller (DeleteNodes service) which knows the
// delete semantics; the slot is retired so the id is not reused.
func (s *Store) Remove(id ua.NodeID) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespaceLocked(id.Namespace)
	if ns == nil {
		return ua.StatusBadNodeIDUnknown
	}
	slot, ok := ns.index[id]
	if !ok || ns.nodes[slot] == nil {
		return ua.StatusBadNodeIDUnknown
	}
	ns.nodes[slot] = nil
	delete(ns.index, id)
	s.subtypes.purge()
	return ua.StatusGood
}

// AddReference adds the (refType, target) edge to src and the mirrored
// inverse edge to the target, atomically. The mirrored edge always carries
// the opposite direction; Symmetric reference types are not treated
// differently.
func (s *Store) AddReference(src ua.NodeID, refType ua.NodeID, target ua.ExpandedNodeID, forward bool) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcNode, status := s.getLocked(src)
	if status != ua.StatusGood {
		return ua.StatusBadSourceNodeIDInvalid
	}
	if srcNode.HasReference(refType, target, !forward) {
		return ua.StatusBadDuplicateReferenceNotAllowed
	}

	// The inverse side only exists for local targets.
	var targetNode *Node
	if target.IsLocal() {
		targetNode, status = s.getLocked(target.NodeID)
		if status != ua.StatusGood {
			return ua.StatusBadTargetNodeIDInvalid
		}
		if target.NodeID == src {
			return ua.StatusBadInvalidSelfReference
		}
	}

	srcNode.References = append(srcNode.References, Reference{
		ReferenceTypeID: refType,
		IsInverse:       !forward,
		Target:          target,
	})
	if targetNode != nil {
		targetNode.References = append(targetNode.References, Reference{
			ReferenceTypeID: refType,
			IsInverse:       forward,
			Target:          ua.NewExpandedNodeID(src),
		})
	}
	s.subtypes.purge()
	return ua.StatusGood
}

// DeleteReference removes the edge from src; with bidirectional=true the
// mirrored edge on the target goes too.
func (s *Store) DeleteReference(src ua.NodeID, refType ua.NodeID, target ua.ExpandedNodeID, forward, bidirectional bool) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcNode, status := s.getLocked(src)
	if status != ua.StatusGood {
		return ua.StatusBadSourceNodeIDInvalid
	}
	if !removeReference(srcNode, refType, target, !forward) {
		return ua.StatusBadNotFound
	}
	if bidirectional && target.IsLocal() {
		if targetNode, st := s.getLocked(target.NodeID); st == ua.StatusGood {
			removeReference(targetNode, refType, ua.NewExpandedNodeID(src), forward)
		}
	}
	s.subtypes.purge()
	return ua.StatusGood
}

func removeReference(node *Node, refType ua.NodeID, target ua.ExpandedNodeID, isInverse bool) bool {
	for i, ref := range node.References {
		if ref.ReferenceTypeID == refType && ref.Target == target && ref.IsInverse == isInverse {
			node.References = append(node.References[:i], node.References[i+1:]...)
			return true
		}
	}
	return false
}

// StripInboundReferences removes, on every node of the space, references
// that point at the given node. Used by DeleteNodes with
// deleteTargetReferences set.
func (s *Store) StripInboundReferences(id ua.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := ua.NewExpandedNodeID(id)
	for _, ns := range s.namespaces {
		for _, node := range ns.nodes {
			if node == nil {
				continue
			}
			kept := node.References[:0]
			for _, ref := range node.References {
				if ref.Target != target {
					kept = append(kept, ref)
				}
			}
			node.References = kept
		}
	}
	s.subtypes.purge()
}

// ForEachChild iterates the node's outbound references. The reference list
// is snapshotted first, so the callback may mutate the address space.
// Returning false stops the iteration.
func (s *Store) ForEachChild(parent ua.NodeID, fn func(ref Reference) bool) ua.StatusCode {
	s.mu.RLock()
	node, status := s.getLocked(parent)
	if status != ua.StatusGood {
		s.mu.RUnlock()
		return status
	}
	refs := make([]Reference, len(node.References))
	copy(refs, node.References)
	s.mu.RUnlock()

	for _, ref := range refs {
		if !fn(ref) {
			break
		}
	}
	return ua.StatusGood
}
