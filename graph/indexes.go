package graph

import "strings"

// Indexes are the two lookup tables spec.md §3/§6.2 describes as inputs to
// the core. They are built by the collect package from already-parsed
// entities and treated as read-only by every pass except P1 and P11, which
// register the groups, user and trusted-domain stubs they synthesize.
type Indexes struct {
	// DNToSID maps every known distinguished name (uppercase) to its
	// SID/GUID identifier.
	DNToSID map[string]string
	// SIDToType maps every identifier to one of the entity type labels.
	SIDToType map[string]string
	// FQDNToSID maps a computer's DNS hostname to its SID, used by P4 to
	// rewrite delegation targets.
	FQDNToSID map[string]string

	// sidToDN is the reverse of DNToSID, built once and kept in sync by
	// RegisterSynthetic. P7 needs a SID->DN lookup; keeping it as an
	// auxiliary index (per spec.md §9's "required optimisation") avoids the
	// O(|entities|·|DN_to_SID|) linear scan the naive approach would do.
	sidToDN map[string]string
	// childrenByParent buckets every known DN by its immediate parent DN,
	// used by P6BuildContainerEdges and P9BuildOUAffectedComputers to avoid
	// rescanning DNToSID per container.
	childrenByParent map[string][]string
}

// NewIndexes builds an Indexes value with the reverse/bucketed auxiliary
// indices precomputed from the given DN_to_SID table.
func NewIndexes(dnToSID, sidToType, fqdnToSID map[string]string) *Indexes {
	idx := &Indexes{
		DNToSID:          dnToSID,
		SIDToType:        sidToType,
		FQDNToSID:        fqdnToSID,
		sidToDN:          make(map[string]string, len(dnToSID)),
		childrenByParent: make(map[string][]string),
	}
	idx.reindex()
	return idx
}

func (idx *Indexes) reindex() {
	for dn, sid := range idx.DNToSID {
		idx.sidToDN[sid] = dn
		if parent, ok := splitParent(dn); ok {
			idx.childrenByParent[parent] = append(idx.childrenByParent[parent], dn)
		}
	}
}

// RegisterSID records a SID's type without a backing DN, for principals
// like P1's well-known groups and NT AUTHORITY user that spec.md §4.1
// describes as identifiers AD never exposes as directory objects at all.
func (idx *Indexes) RegisterSID(sid, objectType string) {
	if sid == "" {
		return
	}
	idx.SIDToType[sid] = objectType
}

// RegisterSynthetic adds a synthetic entity's DN/SID/type to the indexes
// (used by P11, which creates stub Domain entities backed by a DN) and
// keeps the auxiliary indices consistent.
func (idx *Indexes) RegisterSynthetic(dn, sid, objectType string) {
	if dn == "" {
		return
	}
	dn = strings.ToUpper(dn)
	idx.DNToSID[dn] = sid
	idx.SIDToType[sid] = objectType
	idx.sidToDN[sid] = dn
	if parent, ok := splitParent(dn); ok {
		idx.childrenByParent[parent] = append(idx.childrenByParent[parent], dn)
	}
}

// DNFor returns the DN a SID was parsed from, if known.
func (idx *Indexes) DNFor(sid string) (string, bool) {
	dn, ok := idx.sidToDN[sid]
	return dn, ok
}

// ChildrenOf returns every known DN whose immediate parent DN equals
// parentDN (both assumed uppercase already).
func (idx *Indexes) ChildrenOf(parentDN string) []string {
	return idx.childrenByParent[parentDN]
}

// TypeOf returns SID_to_Type[sid], defaulting to def when absent.
func (idx *Indexes) TypeOf(sid, def string) string {
	if t, ok := idx.SIDToType[sid]; ok && t != "" {
		return t
	}
	return def
}

// splitParent strips a DN's first RDN component, returning the parent DN.
// Malformed DNs (fewer than two components) return ok=false, matching
// spec.md §7's "malformed DN is skipped silently" policy.
func splitParent(dn string) (string, bool) {
	cn := CNComponentFromDN(dn)
	return ContainedByFromDN(cn, dn)
}
