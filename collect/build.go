// Package collect turns raw *ldap.Entry search results into the graph
// package's entity model, then wires them through a graph.Pipeline to
// produce a cross-referenced, ingest-ready corpus.
package collect

import (
	"fmt"
	"strconv"
	"strings"

	"adharvest/analyze"
	"adharvest/graph"
	"adharvest/log"

	"github.com/go-ldap/ldap/v3"
)

// domainFromDN derives a dotted domain name from a DN's DC= components,
// e.g. "CN=Users,DC=corp,DC=example" -> "CORP.EXAMPLE".
func domainFromDN(dn string) string {
	var labels []string
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if up := strings.ToUpper(part); strings.HasPrefix(up, "DC=") {
			labels = append(labels, strings.ToUpper(part[3:]))
		}
	}
	return strings.Join(labels, ".")
}

// buildAces decodes an entry's nTSecurityDescriptor into graph.Ace records.
// A missing or unparsable descriptor yields no ACEs rather than an error,
// matching spec.md §7's "missing attribute is not an error" policy.
func buildAces(entry *ldap.Entry) []graph.Ace {
	raw := entry.GetRawAttributeValue(analyze.AttrNTSecurityDescriptor)
	if len(raw) == 0 {
		return nil
	}
	decoded, err := analyze.DecodeDACL(raw)
	if err != nil {
		return nil
	}
	aces := make([]graph.Ace, 0, len(decoded))
	for _, d := range decoded {
		if !d.Allow {
			continue
		}
		right := strings.Join(d.Rights, "|")
		if right == "" {
			right = fmt.Sprintf("0x%08X", d.Mask)
		}
		aces = append(aces, graph.Ace{
			PrincipalSID: d.Trustee,
			RightName:    right,
			IsInherited:  d.IsInherited,
		})
	}
	return aces
}

func buildEnvelope(entry *ldap.Entry, objectIdentifier string) graph.Envelope {
	dn := entry.DN
	if err := analyze.ValidateDN(dn); err != nil {
		log.Warnw("entry has malformed distinguishedName", "dn", dn, "reason", err)
	}
	domain := domainFromDN(dn)
	raw := entry.GetRawAttributeValue(analyze.AttrNTSecurityDescriptor)
	return graph.Envelope{
		ObjectIdentifier:  objectIdentifier,
		Name:              strings.ToUpper(graph.NameFromDN(dn)) + "@" + domain,
		DistinguishedName: dn,
		Domain:            domain,
		Aces:              buildAces(entry),
		IsACLProtected:    len(raw) > 0 && analyze.IsACLProtected(raw),
		HighValue:         entry.GetAttributeValue(analyze.AttrAdminCount) == "1",
	}
}

// objectSID returns the entry's parsed objectSid, falling back to its
// distinguished name when the attribute is absent or unparsable, so callers
// always get a non-empty identifier for DN_to_SID registration.
func objectSID(entry *ldap.Entry) string {
	raw := entry.GetRawAttributeValue(analyze.AttrObjectSID)
	if len(raw) == 0 {
		return entry.DN
	}
	sid, err := analyze.ParseObjectSID(raw)
	if err != nil {
		return entry.DN
	}
	return sid
}

func objectGUID(entry *ldap.Entry) string {
	raw := entry.GetRawAttributeValue(analyze.AttrObjectGUID)
	if len(raw) == 0 {
		return entry.DN
	}
	guid, err := analyze.ParseObjectGUID(raw)
	if err != nil {
		return entry.DN
	}
	return guid
}

// membersOf builds Member stubs for a multi-valued DN attribute, leaving
// ObjectIdentifier as the raw DN for graph.Pipeline's P2/P4 passes to
// resolve into a SID.
func membersOf(entry *ldap.Entry, attr string) []graph.Member {
	values := entry.GetAttributeValues(attr)
	out := make([]graph.Member, 0, len(values))
	for _, dn := range values {
		out = append(out, graph.Member{ObjectIdentifier: dn})
	}
	return out
}

// BuildUser maps a user-class entry into a graph.User.
func BuildUser(entry *ldap.Entry) *graph.User {
	sid := objectSID(entry)
	u := &graph.User{
		Envelope: buildEnvelope(entry, sid),
		HasSPN:   len(entry.GetAttributeValues(analyze.AttrServicePrincipalName)) > 0,
	}
	u.DomainSID = domainSIDFromSID(sid)

	for _, spn := range entry.GetAttributeValues(analyze.AttrServicePrincipalName) {
		host, service := splitSPN(spn)
		if host == "" {
			continue
		}
		u.SPNTargets = append(u.SPNTargets, graph.SPNTarget{
			ComputerSID: host,
			Service:     service,
		})
	}

	u.AllowedToDelegate = membersOfHostnames(entry, analyze.AttrMSDSAllowedToDelegateTo)
	return u
}

// domainSIDFromSID strips a SID's final RID component, giving the domain
// SID a principal's own objectSid already encodes.
func domainSIDFromSID(sid string) string {
	i := strings.LastIndex(sid, "-")
	if i <= 0 {
		return ""
	}
	return sid[:i]
}

// splitSPN splits "service/host:port" or "service/host" into a bare
// hostname and service class, discarding the port spec.md's delegation
// edges don't key on.
func splitSPN(spn string) (host, service string) {
	parts := strings.SplitN(spn, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	service = parts[0]
	host = parts[1]
	if idx := strings.IndexAny(host, ":/"); idx >= 0 {
		host = host[:idx]
	}
	return strings.ToUpper(host), service
}

// membersOfHostnames is membersOf for attributes holding bare hostnames
// (msDS-AllowedToDelegateTo SPN strings) rather than DNs.
func membersOfHostnames(entry *ldap.Entry, attr string) []graph.Member {
	values := entry.GetAttributeValues(attr)
	out := make([]graph.Member, 0, len(values))
	for _, v := range values {
		host, _ := splitSPN(v)
		if host == "" {
			host = strings.ToUpper(v)
		}
		out = append(out, graph.Member{ObjectIdentifier: host})
	}
	return out
}

// BuildComputer maps a computer-class entry into a graph.Computer.
func BuildComputer(entry *ldap.Entry) *graph.Computer {
	sid := objectSID(entry)
	uac, _ := strconv.Atoi(entry.GetAttributeValue(analyze.AttrUserAccountControl))
	c := &graph.Computer{
		Envelope: buildEnvelope(entry, sid),
		IsDC:     uac&analyze.UACServerTrustAccount != 0 && uac&analyze.UACTrustedForDelegation != 0,
	}
	c.DomainSID = domainSIDFromSID(sid)
	c.AllowedToDelegate = membersOfHostnames(entry, analyze.AttrMSDSAllowedToDelegateTo)

	if sids, err := analyze.ParseRBCDBinary(entry.GetRawAttributeValue(analyze.AttrMSDSAllowedToActOnBehalfOfOtherIdentity)); err == nil {
		for _, s := range sids {
			c.AllowedToAct = append(c.AllowedToAct, graph.Member{ObjectIdentifier: s})
		}
	}
	return c
}

// BuildGroup maps a group-class entry into a graph.Group.
func BuildGroup(entry *ldap.Entry) *graph.Group {
	sid := objectSID(entry)
	g := &graph.Group{
		Envelope: buildEnvelope(entry, sid),
		Members:  membersOf(entry, analyze.AttrMember),
	}
	g.DomainSID = domainSIDFromSID(sid)
	return g
}

// BuildOU maps an organizationalUnit entry into a graph.OU.
func BuildOU(entry *ldap.Entry) *graph.OU {
	guid := objectGUID(entry)
	ou := &graph.OU{
		Envelope: buildEnvelope(entry, guid),
	}
	links, err := parseGPLink(entry.GetAttributeValue(analyze.AttrGPLink))
	if err == nil {
		ou.Links = links
	}
	return ou
}

// BuildContainer maps a generic container entry into a graph.Container.
func BuildContainer(entry *ldap.Entry) *graph.Container {
	guid := objectGUID(entry)
	return &graph.Container{
		Envelope: buildEnvelope(entry, guid),
	}
}

// BuildDomain maps a domain-root entry into a graph.Domain.
func BuildDomain(entry *ldap.Entry) *graph.Domain {
	sid := objectSID(entry)
	d := &graph.Domain{
		Envelope: buildEnvelope(entry, sid),
	}
	d.Name = domainFromDN(entry.DN)
	d.DomainSID = sid
	links, err := parseGPLink(entry.GetAttributeValue(analyze.AttrGPLink))
	if err == nil {
		d.Links = links
	}
	return d
}

// BuildGPO maps a groupPolicyContainer entry into a graph.GPO.
func BuildGPO(entry *ldap.Entry) *graph.GPO {
	guid := objectGUID(entry)
	return &graph.GPO{
		Envelope:       buildEnvelope(entry, guid),
		GPCFileSysPath: entry.GetAttributeValue(analyze.AttrGPCFileSysPath),
	}
}

// gpLinkOptEnforced and gpLinkOptDisabled are the bit flags AD packs after
// each gPLink entry's trailing ";<n>" option field.
// https://learn.microsoft.com/en-us/openspecs/windows_protocols/ms-gpol
const (
	gpLinkOptDisabled = 0x1
	gpLinkOptEnforced = 0x2
)

// parseGPLink parses the bracketed gPLink attribute format
// "[LDAP://cn={GUID},cn=policies,cn=system,DC=...;<opts>][...]" into Link
// records, skipping any bracket group whose option bit marks it disabled.
func parseGPLink(raw string) ([]graph.Link, error) {
	if raw == "" {
		return nil, nil
	}
	var links []graph.Link
	for _, group := range strings.Split(raw, "[") {
		group = strings.TrimSuffix(group, "]")
		if group == "" {
			continue
		}
		ldapURL, optStr, ok := strings.Cut(group, ";")
		if !ok {
			continue
		}
		opts, err := strconv.Atoi(optStr)
		if err != nil {
			continue
		}
		if opts&gpLinkOptDisabled != 0 {
			continue
		}
		guid := extractGPLinkGUID(ldapURL)
		if guid == "" {
			continue
		}
		links = append(links, graph.Link{
			GUID:       guid,
			IsEnforced: opts&gpLinkOptEnforced != 0,
		})
	}
	return links, nil
}

// extractGPLinkGUID pulls the "{...}" GUID component out of a gPLink
// "LDAP://cn={GUID},cn=policies,..." URL.
func extractGPLinkGUID(ldapURL string) string {
	start := strings.Index(ldapURL, "{")
	if start < 0 {
		return ""
	}
	end := strings.Index(ldapURL[start:], "}")
	if end < 0 {
		return ""
	}
	return ldapURL[start : start+end+1]
}

// trustTypeNames translates the numeric trustType attribute into the string
// spec.md §3's Trust record carries; trustDirection is kept as its integer.
var trustTypeNames = map[string]string{
	"1": "Downlevel",
	"2": "Uplevel",
	"3": "MIT",
	"4": "DCE",
}

// BuildTrust maps a trustedDomain entry into a graph.Trust.
func BuildTrust(entry *ldap.Entry) *graph.Trust {
	direction, _ := strconv.Atoi(entry.GetAttributeValue(analyze.AttrTrustDirection))
	attrs, _ := strconv.Atoi(entry.GetAttributeValue(analyze.AttrTrustAttributes))

	targetSID := entry.GetAttributeValue(analyze.AttrSecurityIdentifier)
	if targetSID == "" {
		if sid, err := analyze.ParseObjectSID(entry.GetRawAttributeValue(analyze.AttrSecurityIdentifier)); err == nil {
			targetSID = sid
		}
	}

	const (
		trustAttrNonTransitive = 0x1
		trustAttrWithinForest  = 0x20
		trustAttrForest        = 0x8
	)
	isTransitive := attrs&trustAttrNonTransitive == 0

	trustType := trustTypeNames[entry.GetAttributeValue(analyze.AttrTrustType)]
	if attrs&trustAttrWithinForest != 0 {
		trustType = "ParentChild"
	} else if attrs&trustAttrForest != 0 {
		trustType = "Forest"
	}

	return &graph.Trust{
		TargetDomainName:    strings.ToUpper(entry.GetAttributeValue(analyze.AttrName)),
		TargetDomainSID:     targetSID,
		TrustDirection:      direction,
		TrustType:           trustType,
		IsTransitive:        isTransitive,
		SIDFilteringEnabled: attrs&trustAttrForest == 0 && attrs&trustAttrWithinForest == 0,
	}
}
