package graph

import "strings"

// NameFromDN extracts the value of a DN's first RDN component.
//
// Grounded on original_source/src/json/checker/common.rs's
// get_name_from_full_distinguishedname: "CN=G0H4N,CN=USERS,DC=ESSOS,DC=LOCAL"
// -> "G0H4N".
func NameFromDN(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	_, value, ok := strings.Cut(first, "=")
	if !ok {
		return first
	}
	return value
}

// CNComponentFromDN returns the full first comma-delimited RDN component,
// e.g. "CN=G0H4N,CN=USERS,DC=ESSOS,DC=LOCAL" -> "CN=G0H4N".
//
// Grounded on get_cn_object_name_from_full_distinguishedname.
func CNComponentFromDN(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	return first
}

// ContainedByFromDN strips the "<cn>," prefix from a DN, returning the
// parent DN. cn is the value returned by CNComponentFromDN for dn.
//
// Grounded on get_contained_by_name_from_distinguishedname.
func ContainedByFromDN(cn, dn string) (string, bool) {
	prefix := cn + ","
	if !strings.HasPrefix(dn, prefix) {
		return "", false
	}
	return strings.TrimPrefix(dn, prefix), true
}

// SecondComponentValue returns the `=`-delimited value of a DN's second
// comma-separated component, used by P6's containment test to compare a
// candidate child's immediate parent name against a container's own name.
// Returns "" if the DN has fewer than two components.
func SecondComponentValue(dn string) string {
	_, rest, ok := strings.Cut(dn, ",")
	if !ok {
		return ""
	}
	second, _, _ := strings.Cut(rest, ",")
	_, value, ok := strings.Cut(second, "=")
	if !ok {
		return ""
	}
	return value
}

// DomainToDC converts a dotted domain name into its LDAP DC-component form,
// e.g. "CORP.EXAMPLE" -> "DC=CORP,DC=EXAMPLE".
func DomainToDC(domain string) string {
	labels := strings.Split(domain, ".")
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		parts = append(parts, "DC="+l)
	}
	return strings.Join(parts, ",")
}

// PrepareLDAPDC returns the LDAP DC components of a dotted domain name as a
// slice, e.g. "CORP.EXAMPLE" -> ["DC=CORP", "DC=EXAMPLE"]. Used by
// ForeignSidResolve (§4.9) to compare against an unresolved member DN.
func PrepareLDAPDC(domain string) []string {
	labels := strings.Split(domain, ".")
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		parts = append(parts, "DC="+l)
	}
	return parts
}
