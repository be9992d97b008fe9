package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adharvest/graph"
)

// ingestMember, ingestAce and ingestLink mirror graph.Member/Ace/Link with
// JSON tags, the wire shape bloodHoundACL already established for the
// simpler raw-entry emitter this one replaces.
type ingestMember struct {
	ObjectIdentifier string `json:"ObjectIdentifier"`
	ObjectType       string `json:"ObjectType"`
}

type ingestAce struct {
	PrincipalSID  string `json:"PrincipalSID"`
	PrincipalType string `json:"PrincipalType"`
	RightName     string `json:"RightName"`
	IsInherited   bool   `json:"IsInherited"`
}

type ingestLink struct {
	GUID       string `json:"GUID"`
	IsEnforced bool   `json:"IsEnforced"`
}

func toIngestMembers(members []graph.Member) []ingestMember {
	out := make([]ingestMember, len(members))
	for i, m := range members {
		out[i] = ingestMember{ObjectIdentifier: m.ObjectIdentifier, ObjectType: m.ObjectType}
	}
	return out
}

func toIngestAces(aces []graph.Ace) []ingestAce {
	out := make([]ingestAce, len(aces))
	for i, a := range aces {
		out[i] = ingestAce{
			PrincipalSID:  a.PrincipalSID,
			PrincipalType: a.PrincipalType,
			RightName:     a.RightName,
			IsInherited:   a.IsInherited,
		}
	}
	return out
}

func toIngestLinks(links []graph.Link) []ingestLink {
	out := make([]ingestLink, len(links))
	for i, l := range links {
		out[i] = ingestLink{GUID: l.GUID, IsEnforced: l.IsEnforced}
	}
	return out
}

func toIngestContainedBy(m *graph.Member) *ingestMember {
	if m == nil {
		return nil
	}
	return &ingestMember{ObjectIdentifier: m.ObjectIdentifier, ObjectType: m.ObjectType}
}

// ingestUser, ingestComputer, ... are the per-collection BloodHound ingest
// records. Unlike the teacher's convertUser/convertComputer/convertGroup,
// these marshal directly off the pipeline's own structs instead of
// re-deriving fields from a raw *ldap.Entry.
type ingestUser struct {
	ObjectIdentifier  string        `json:"ObjectIdentifier"`
	Name              string        `json:"Name"`
	DistinguishedName string        `json:"DistinguishedName"`
	Domain            string        `json:"Domain"`
	DomainSID         string        `json:"DomainSID"`
	Aces              []ingestAce   `json:"Aces"`
	ContainedBy       *ingestMember `json:"ContainedBy,omitempty"`
	IsACLProtected    bool          `json:"IsACLProtected"`
	HighValue         bool          `json:"HighValue"`
	HasSPN            bool          `json:"HasSPN"`
	AllowedToDelegate []ingestMember `json:"AllowedToDelegate"`
	SPNTargets        []struct {
		ComputerSID string `json:"ComputerSID"`
		Port        int    `json:"Port"`
		Service     string `json:"Service"`
	} `json:"SPNTargets"`
}

type ingestComputer struct {
	ObjectIdentifier  string         `json:"ObjectIdentifier"`
	Name              string         `json:"Name"`
	DistinguishedName string         `json:"DistinguishedName"`
	Domain            string         `json:"Domain"`
	DomainSID         string         `json:"DomainSID"`
	Aces              []ingestAce    `json:"Aces"`
	ContainedBy       *ingestMember  `json:"ContainedBy,omitempty"`
	IsACLProtected    bool           `json:"IsACLProtected"`
	HighValue         bool           `json:"HighValue"`
	IsDC              bool           `json:"IsDC"`
	AllowedToDelegate []ingestMember `json:"AllowedToDelegate"`
	AllowedToAct      []ingestMember `json:"AllowedToAct"`
}

type ingestGroup struct {
	ObjectIdentifier  string        `json:"ObjectIdentifier"`
	Name              string        `json:"Name"`
	DistinguishedName string        `json:"DistinguishedName"`
	Domain            string        `json:"Domain"`
	DomainSID         string        `json:"DomainSID"`
	Aces              []ingestAce   `json:"Aces"`
	ContainedBy       *ingestMember `json:"ContainedBy,omitempty"`
	IsACLProtected    bool          `json:"IsACLProtected"`
	HighValue         bool          `json:"HighValue"`
	Members           []ingestMember `json:"Members"`
}

type ingestOU struct {
	ObjectIdentifier  string         `json:"ObjectIdentifier"`
	Name              string         `json:"Name"`
	DistinguishedName string         `json:"DistinguishedName"`
	Domain            string         `json:"Domain"`
	Aces              []ingestAce    `json:"Aces"`
	ContainedBy       *ingestMember  `json:"ContainedBy,omitempty"`
	IsACLProtected    bool           `json:"IsACLProtected"`
	ChildObjects      []ingestMember `json:"ChildObjects"`
	Links             []ingestLink   `json:"Links"`
	AffectedComputers []ingestMember `json:"AffectedComputers"`
}

type ingestDomain struct {
	ObjectIdentifier  string               `json:"ObjectIdentifier"`
	Name              string               `json:"Name"`
	DistinguishedName string               `json:"DistinguishedName"`
	Domain            string               `json:"Domain"`
	DomainSID         string               `json:"DomainSID"`
	Aces              []ingestAce          `json:"Aces"`
	HighValue         bool                 `json:"HighValue"`
	ChildObjects      []ingestMember       `json:"ChildObjects"`
	Links             []ingestLink         `json:"Links"`
	AffectedComputers []ingestMember       `json:"AffectedComputers"`
	Trusts            []ingestTrust        `json:"Trusts"`
}

type ingestTrust struct {
	TargetDomainName    string `json:"TargetDomainName"`
	TargetDomainSID     string `json:"TargetDomainSID"`
	TrustDirection      int    `json:"TrustDirection"`
	TrustType           string `json:"TrustType"`
	IsTransitive        bool   `json:"IsTransitive"`
	SIDFilteringEnabled bool   `json:"SIDFilteringEnabled"`
}

type ingestContainer struct {
	ObjectIdentifier  string         `json:"ObjectIdentifier"`
	Name              string         `json:"Name"`
	DistinguishedName string         `json:"DistinguishedName"`
	Domain            string         `json:"Domain"`
	Aces              []ingestAce    `json:"Aces"`
	ContainedBy       *ingestMember  `json:"ContainedBy,omitempty"`
	IsACLProtected    bool           `json:"IsACLProtected"`
	ChildObjects      []ingestMember `json:"ChildObjects"`
}

type ingestGPO struct {
	ObjectIdentifier  string      `json:"ObjectIdentifier"`
	Name              string      `json:"Name"`
	DistinguishedName string      `json:"DistinguishedName"`
	Domain            string      `json:"Domain"`
	Aces              []ingestAce `json:"Aces"`
	GPCFileSysPath    string      `json:"GPCFileSysPath"`
}

// ingestFile is the per-collection file shape: a meta header plus the data
// array, matching the teacher's bloodHoundOutput/bloodHoundMetadata.
type ingestFile struct {
	Meta ingestMeta `json:"meta"`
	Data []any      `json:"data"`
}

type ingestMeta struct {
	Type           string `json:"type"`
	Count          int    `json:"count"`
	Version        int    `json:"version"`
	CollectionTime string `json:"collectiontime"`
}

// ingestVersion is the BloodHound legacy ingest format version this emitter
// targets.
const ingestVersion = 5

// WriteIngestFiles serializes every collection in a pipeline into the
// standard BloodHound legacy ingest JSON files under dir, named
// "<domain>_<type>.json". domain is used only for the filename prefix; an
// empty domain falls back to "adharvest".
func WriteIngestFiles(p *graph.Pipeline, dir string) error {
	domain := "adharvest"
	if len(p.Domains) > 0 && p.Domains[0].Name != "" {
		domain = strings.ToLower(p.Domains[0].Name)
	}

	writers := []struct {
		objType string
		count   int
		build   func() []any
	}{
		{"users", len(p.Users), func() []any { return buildUsers(p.Users) }},
		{"computers", len(p.Computers), func() []any { return buildComputers(p.Computers) }},
		{"groups", len(p.Groups), func() []any { return buildGroups(p.Groups) }},
		{"ous", len(p.OUs), func() []any { return buildOUs(p.OUs) }},
		{"domains", len(p.Domains), func() []any { return buildDomains(p.Domains) }},
		{"containers", len(p.Containers), func() []any { return buildContainers(p.Containers) }},
		{"gpos", len(p.GPOs), func() []any { return buildGPOs(p.GPOs) }},
	}

	collectionTime := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	for _, w := range writers {
		file := ingestFile{
			Meta: ingestMeta{
				Type:           w.objType,
				Count:          w.count,
				Version:        ingestVersion,
				CollectionTime: collectionTime,
			},
			Data: w.build(),
		}
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", w.objType, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", domain, w.objType))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func buildUsers(users []*graph.User) []any {
	out := make([]any, len(users))
	for i, u := range users {
		iu := ingestUser{
			ObjectIdentifier:  u.ObjectIdentifier,
			Name:              u.Name,
			DistinguishedName: u.DistinguishedName,
			Domain:            u.Domain,
			DomainSID:         u.DomainSID,
			Aces:              toIngestAces(u.Aces),
			ContainedBy:       toIngestContainedBy(u.ContainedBy),
			IsACLProtected:    u.IsACLProtected,
			HighValue:         u.HighValue,
			HasSPN:            u.HasSPN,
			AllowedToDelegate: toIngestMembers(u.AllowedToDelegate),
		}
		for _, t := range u.SPNTargets {
			iu.SPNTargets = append(iu.SPNTargets, struct {
				ComputerSID string `json:"ComputerSID"`
				Port        int    `json:"Port"`
				Service     string `json:"Service"`
			}{ComputerSID: t.ComputerSID, Port: t.Port, Service: t.Service})
		}
		out[i] = iu
	}
	return out
}

func buildComputers(computers []*graph.Computer) []any {
	out := make([]any, len(computers))
	for i, c := range computers {
		out[i] = ingestComputer{
			ObjectIdentifier:  c.ObjectIdentifier,
			Name:              c.Name,
			DistinguishedName: c.DistinguishedName,
			Domain:            c.Domain,
			DomainSID:         c.DomainSID,
			Aces:              toIngestAces(c.Aces),
			ContainedBy:       toIngestContainedBy(c.ContainedBy),
			IsACLProtected:    c.IsACLProtected,
			HighValue:         c.HighValue,
			IsDC:              c.IsDC,
			AllowedToDelegate: toIngestMembers(c.AllowedToDelegate),
			AllowedToAct:      toIngestMembers(c.AllowedToAct),
		}
	}
	return out
}

func buildGroups(groups []*graph.Group) []any {
	out := make([]any, len(groups))
	for i, g := range groups {
		out[i] = ingestGroup{
			ObjectIdentifier:  g.ObjectIdentifier,
			Name:              g.Name,
			DistinguishedName: g.DistinguishedName,
			Domain:            g.Domain,
			DomainSID:         g.DomainSID,
			Aces:              toIngestAces(g.Aces),
			ContainedBy:       toIngestContainedBy(g.ContainedBy),
			IsACLProtected:    g.IsACLProtected,
			HighValue:         g.HighValue,
			Members:           toIngestMembers(g.Members),
		}
	}
	return out
}

func buildOUs(ous []*graph.OU) []any {
	out := make([]any, len(ous))
	for i, ou := range ous {
		out[i] = ingestOU{
			ObjectIdentifier:  ou.ObjectIdentifier,
			Name:              ou.Name,
			DistinguishedName: ou.DistinguishedName,
			Domain:            ou.Domain,
			Aces:              toIngestAces(ou.Aces),
			ContainedBy:       toIngestContainedBy(ou.ContainedBy),
			IsACLProtected:    ou.IsACLProtected,
			ChildObjects:      toIngestMembers(ou.ChildObjects),
			Links:             toIngestLinks(ou.Links),
			AffectedComputers: toIngestMembers(ou.GPOChanges.AffectedComputers),
		}
	}
	return out
}

func buildDomains(domains []*graph.Domain) []any {
	out := make([]any, len(domains))
	for i, d := range domains {
		id := ingestDomain{
			ObjectIdentifier:  d.ObjectIdentifier,
			Name:              d.Name,
			DistinguishedName: d.DistinguishedName,
			Domain:            d.Domain,
			DomainSID:         d.DomainSID,
			Aces:              toIngestAces(d.Aces),
			HighValue:         d.HighValue,
			ChildObjects:      toIngestMembers(d.ChildObjects),
			Links:             toIngestLinks(d.Links),
			AffectedComputers: toIngestMembers(d.GPOChanges.AffectedComputers),
		}
		for _, t := range d.Trusts {
			id.Trusts = append(id.Trusts, ingestTrust{
				TargetDomainName:    t.TargetDomainName,
				TargetDomainSID:     t.TargetDomainSID,
				TrustDirection:      t.TrustDirection,
				TrustType:           t.TrustType,
				IsTransitive:        t.IsTransitive,
				SIDFilteringEnabled: t.SIDFilteringEnabled,
			})
		}
		out[i] = id
	}
	return out
}

func buildContainers(containers []*graph.Container) []any {
	out := make([]any, len(containers))
	for i, c := range containers {
		out[i] = ingestContainer{
			ObjectIdentifier:  c.ObjectIdentifier,
			Name:              c.Name,
			DistinguishedName: c.DistinguishedName,
			Domain:            c.Domain,
			Aces:              toIngestAces(c.Aces),
			ContainedBy:       toIngestContainedBy(c.ContainedBy),
			IsACLProtected:    c.IsACLProtected,
			ChildObjects:      toIngestMembers(c.ChildObjects),
		}
	}
	return out
}

func buildGPOs(gpos []*graph.GPO) []any {
	out := make([]any, len(gpos))
	for i, g := range gpos {
		out[i] = ingestGPO{
			ObjectIdentifier:  g.ObjectIdentifier,
			Name:              g.Name,
			DistinguishedName: g.DistinguishedName,
			Domain:            g.Domain,
			Aces:              toIngestAces(g.Aces),
			GPCFileSysPath:    g.GPCFileSysPath,
		}
	}
	return out
}
