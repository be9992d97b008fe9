package graph

import (
	"regexp"
	"strings"
	"sync"
)

// ProgressFunc receives a count of items processed by the current pass.
// A nil ProgressFunc disables reporting entirely without affecting
// correctness, per spec.md §5.
type ProgressFunc func(pass string, processed, total int)

// Pipeline owns every entity collection plus the two read-only index maps
// and exposes one method per pass, matching the "single owning struct"
// design spec.md §9 recommends over threading loose collection arguments.
type Pipeline struct {
	Users      []*User
	Computers  []*Computer
	Groups     []*Group
	OUs        []*OU
	Domains    []*Domain
	Containers []*Container
	GPOs       []*GPO
	Trusts     []*Trust

	Indexes *Indexes

	// Progress is called at most once per ~1% of a pass's items; may be nil.
	Progress ProgressFunc

	// sidRe matches a well-formed SID, used both to discover the domain SID
	// from a DC's identifier (P1) and to extract a foreign SID verbatim
	// (ForeignSidResolve). spec.md §9's open question directs using the
	// permissive (?:-\d+)+ form over the original's fixed-arity variant.
	sidRe *regexp.Regexp
}

// NewPipeline constructs a Pipeline, compiling the regex the passes share.
// Regex compilation is the one error spec.md §7 treats as fatal.
func NewPipeline(indexes *Indexes) (*Pipeline, error) {
	sidRe, err := regexp.Compile(`S-\d+-\d+-\d+(?:-\d+)+`)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Indexes: indexes,
		sidRe:   sidRe,
	}, nil
}

func (p *Pipeline) report(pass string, processed, total int) {
	if p.Progress == nil {
		return
	}
	step := total / 100
	if step < 1 {
		step = 1
	}
	if processed%step == 0 || processed == total {
		p.Progress(pass, processed, total)
	}
}

// Run sequences every pass in the dependency order spec.md §2 describes,
// fanning the three independent groups out over a worker pool.
func (p *Pipeline) Run() error {
	p.P1SynthesizeBuiltins()
	p.P2ResolveGroupMembers()

	p.runParallel(func() { p.P3PropagateAcePrincipalType() },
		func() { p.P4ResolveDelegationTargets() },
		func() { p.P5ResolveAllowedToActTypes() })

	p.runParallel(func() { p.P6BuildContainerEdges() },
		func() { p.P7BuildContainedBy() })

	p.P8ResolveGPLinkGUIDs()

	p.runParallel(func() { p.P9BuildOUAffectedComputers() },
		func() { p.P10BuildDomainAffectedComputers() })

	p.P11InjectTrustedDomains()
	return nil
}

// runParallel fans a fixed, small set of independent pass closures out over
// a worker pool, grounded on bakw00ds-goBloodyEll/runner.go's job-channel +
// sync.WaitGroup pattern. Each closure here is a whole pass, not a
// per-entity unit; each pass walks its own entities sequentially.
func (p *Pipeline) runParallel(fns ...func()) {
	jobs := make(chan func())
	var wg sync.WaitGroup
	workers := len(fns)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for fn := range jobs {
				fn()
			}
		}()
	}
	for _, fn := range fns {
		jobs <- fn
	}
	close(jobs)
	wg.Wait()
}

// uc uppercases s, the canonicalisation spec.md §6.4 requires of every
// DN/SID compared inside the core.
func uc(s string) string { return strings.ToUpper(s) }

// domainSIDOf strips a SID's trailing RID component, giving the domain SID
// every principal issued under it shares, e.g.
// "S-1-5-21-111-222-333-1000" -> "S-1-5-21-111-222-333".
func domainSIDOf(sid string) string {
	i := strings.LastIndex(sid, "-")
	if i <= 0 {
		return sid
	}
	return sid[:i]
}

// P1SynthesizeBuiltins creates the well-known groups and NT-AUTHORITY user
// AD never returns (spec.md §4.1).
func (p *Pipeline) P1SynthesizeBuiltins() {
	if len(p.Domains) == 0 {
		return
	}
	domain := uc(p.Domains[0].Name)

	var dcComputers []Member
	domainSID := ""
	for _, c := range p.Computers {
		if !c.IsDC {
			continue
		}
		dcComputers = append(dcComputers, Member{ObjectIdentifier: c.ObjectIdentifier, ObjectType: "Computer"})
		if domainSID == "" {
			if m := p.sidRe.FindString(c.ObjectIdentifier); m != "" {
				domainSID = domainSIDOf(m)
			}
		}
	}

	everyoneMembers := []Member{
		{ObjectIdentifier: domainSID + "-515", ObjectType: "Group"},
		{ObjectIdentifier: domainSID + "-513", ObjectType: "Group"},
	}

	for _, wk := range WellKnownGroups {
		identifier := domain + "-" + wk.Suffix
		name := wk.Name + "@" + domain
		var members []Member
		switch wk.Suffix {
		case "S-1-5-9":
			members = dcComputers
		case "S-1-1-0", "S-1-5-11":
			members = everyoneMembers
		}
		g := &Group{
			Envelope: Envelope{
				ObjectIdentifier: identifier,
				Name:             name,
				Domain:           domain,
				HighValue:        wk.HighValue,
			},
			Members: members,
		}
		p.Groups = append(p.Groups, g)
		p.Indexes.RegisterSID(identifier, "Group")
	}

	var domainSIDForNTAuthority string
	if len(p.Users) > 0 {
		domainSIDForNTAuthority = p.Users[0].DomainSID
	}
	ntAuthority := &User{
		Envelope: Envelope{
			ObjectIdentifier: domain + "-S-1-5-20",
			Name:             "NT AUTHORITY@" + domain,
			Domain:           domain,
			DomainSID:        domainSIDForNTAuthority,
		},
	}
	p.Users = append(p.Users, ntAuthority)
	p.Indexes.RegisterSID(ntAuthority.ObjectIdentifier, "User")
}

// P2ResolveGroupMembers translates each group member's DN into a SID+type
// (spec.md §4.2), falling back to ForeignSidResolve for trusted-domain
// principals.
func (p *Pipeline) P2ResolveGroupMembers() {
	for _, g := range p.Groups {
		for i, m := range g.Members {
			dn := uc(m.ObjectIdentifier)
			if sid, ok := p.Indexes.DNToSID[dn]; ok {
				g.Members[i].ObjectIdentifier = sid
				g.Members[i].ObjectType = p.Indexes.TypeOf(sid, "Group")
				continue
			}
			g.Members[i].ObjectIdentifier = p.ForeignSidResolve(dn)
			g.Members[i].ObjectType = "Group"
		}
	}
}

// P3PropagateAcePrincipalType labels every ACE's principal with its type
// (spec.md §4.3). Idempotent and safe to run concurrently with P4/P5 since
// it only reads SID_to_Type and writes disjoint Ace slices.
func (p *Pipeline) P3PropagateAcePrincipalType() {
	entities := p.allEntities()
	for idx, e := range entities {
		aces := e.GetAces()
		for i := range aces {
			aces[i].PrincipalType = p.Indexes.TypeOf(uc(aces[i].PrincipalSID), "Group")
		}
		p.report("P3", idx+1, len(entities))
	}
}

// P4ResolveDelegationTargets rewrites SPN-target and allowed-to-delegate
// FQDN references into SIDs (spec.md §4.4).
func (p *Pipeline) P4ResolveDelegationTargets() {
	for _, u := range p.Users {
		for i, t := range u.SPNTargets {
			if sid, ok := p.Indexes.FQDNToSID[uc(t.ComputerSID)]; ok {
				u.SPNTargets[i].ComputerSID = sid
			}
		}
		for i, m := range u.AllowedToDelegate {
			if sid, ok := p.Indexes.FQDNToSID[uc(m.ObjectIdentifier)]; ok {
				u.AllowedToDelegate[i].ObjectIdentifier = sid
			}
		}
	}
	for _, c := range p.Computers {
		for i, m := range c.AllowedToDelegate {
			if sid, ok := p.Indexes.FQDNToSID[uc(m.ObjectIdentifier)]; ok {
				c.AllowedToDelegate[i].ObjectIdentifier = sid
			}
		}
	}
}

// P5ResolveAllowedToActTypes type-labels resource-based constrained
// delegation principals (spec.md §4.5). Idempotent.
func (p *Pipeline) P5ResolveAllowedToActTypes() {
	for _, c := range p.Computers {
		for i, m := range c.AllowedToAct {
			c.AllowedToAct[i].ObjectType = p.Indexes.TypeOf(uc(m.ObjectIdentifier), "Computer")
		}
	}
}

// P6BuildContainerEdges computes ChildObjects for every OU, Container and
// Domain from DN prefix relationships (spec.md §4.6). OU computer children
// are not kept here; P9 computes them from the same parent index.
func (p *Pipeline) P6BuildContainerEdges() {
	for _, c := range p.Containers {
		c.ChildObjects = p.childObjectsFor(uc(c.DistinguishedName), "")
	}
	for _, ou := range p.OUs {
		ou.ChildObjects = p.childObjectsFor(uc(ou.DistinguishedName), "")
	}
	for _, d := range p.Domains {
		firstLabel, _, _ := strings.Cut(d.Name, ".")
		d.ChildObjects = p.childObjectsFor(uc(d.DistinguishedName), uc(firstLabel))
	}
}

// childObjectsFor implements the containment test of spec.md §4.6 using the
// childrenByParent auxiliary index (spec.md §9's required optimisation)
// instead of a quadratic DN_to_SID rescan. domainToken, when non-empty,
// relaxes the test to substring containment against that token (the Domain
// case).
func (p *Pipeline) childObjectsFor(parentDN, domainToken string) []Member {
	var candidates []string
	if domainToken == "" {
		candidates = p.Indexes.ChildrenOf(parentDN)
	} else {
		for dn := range p.Indexes.DNToSID {
			if dn == parentDN {
				continue
			}
			if strings.Contains(SecondComponentValue(dn), domainToken) {
				candidates = append(candidates, dn)
			}
		}
	}

	out := make([]Member, 0, len(candidates))
	for _, dn := range candidates {
		sid := p.Indexes.DNToSID[dn]
		out = append(out, Member{
			ObjectIdentifier: sid,
			ObjectType:       p.Indexes.TypeOf(sid, "Group"),
		})
	}
	return out
}

// P7BuildContainedBy computes each non-Domain entity's single ContainedBy
// parent from its own DN (spec.md §4.7).
func (p *Pipeline) P7BuildContainedBy() {
	for _, e := range p.nonDomainEntities() {
		dn, ok := p.Indexes.DNFor(e.Identifier())
		if !ok {
			continue
		}
		cn := CNComponentFromDN(dn)
		parentDN, ok := ContainedByFromDN(cn, dn)
		if !ok {
			continue
		}
		parentSID, ok := p.Indexes.DNToSID[parentDN]
		if !ok {
			continue
		}
		e.SetContainedBy(&Member{
			ObjectIdentifier: parentSID,
			ObjectType:       p.Indexes.TypeOf(parentSID, "Group"),
		})
	}
}

// P8ResolveGPLinkGUIDs rewrites each Link.guid from a raw gPLink GUID into
// the stored GPO identifier (spec.md §4.8).
func (p *Pipeline) P8ResolveGPLinkGUIDs() {
	for _, e := range p.entitiesWithLinks() {
		links := e.GetLinks()
		for i, link := range links {
			for dn, sid := range p.Indexes.DNToSID {
				if strings.Contains(dn, uc(link.GUID)) {
					links[i].GUID = sid
					break
				}
			}
		}
	}
}

// P9BuildOUAffectedComputers enumerates, per OU, the Computer entities
// directly contained by that OU (spec.md §4.10).
func (p *Pipeline) P9BuildOUAffectedComputers() {
	for _, ou := range p.OUs {
		parentDN := uc(ou.DistinguishedName)
		var affected []Member
		for _, dn := range p.Indexes.ChildrenOf(parentDN) {
			sid := p.Indexes.DNToSID[dn]
			if p.Indexes.TypeOf(sid, "") != "Computer" {
				continue
			}
			affected = append(affected, Member{ObjectIdentifier: sid, ObjectType: "Computer"})
		}
		ou.GPOChanges.AffectedComputers = affected
	}
}

// P10BuildDomainAffectedComputers assigns every known computer to the first
// domain's GPOChanges.AffectedComputers (spec.md §4.11).
func (p *Pipeline) P10BuildDomainAffectedComputers() {
	if len(p.Domains) == 0 {
		return
	}
	d := p.Domains[0]
	var affected []Member
	for sid, typ := range p.Indexes.SIDToType {
		if typ == "Computer" {
			affected = append(affected, Member{ObjectIdentifier: sid, ObjectType: "Computer"})
		}
	}
	d.GPOChanges.AffectedComputers = affected
}

// P11InjectTrustedDomains appends a stub Domain entity per trust and
// records the trust list on the primary domain (spec.md §4.12).
func (p *Pipeline) P11InjectTrustedDomains() {
	if len(p.Trusts) == 0 || len(p.Domains) == 0 {
		return
	}
	if strings.Contains(p.Trusts[0].TargetDomainSID, "SID") {
		return
	}

	trusts := make([]Trust, len(p.Trusts))
	for i, t := range p.Trusts {
		trusts[i] = *t
		stub := &Domain{
			Envelope: Envelope{
				ObjectIdentifier:  t.TargetDomainSID,
				Name:              t.TargetDomainName,
				Domain:            t.TargetDomainName,
				DistinguishedName: DomainToDC(t.TargetDomainName),
				HighValue:         true,
			},
		}
		p.Domains = append(p.Domains, stub)
		p.Indexes.RegisterSynthetic(uc(stub.DistinguishedName), stub.ObjectIdentifier, "Domain")
	}
	p.Domains[0].Trusts = trusts
}

// ForeignSidResolve resolves a DN that did not resolve in DN_to_SID against
// the trust list (spec.md §4.9).
func (p *Pipeline) ForeignSidResolve(dn string) string {
	dn = uc(dn)
	for _, t := range p.Trusts {
		dc := PrepareLDAPDC(t.TargetDomainName)
		if len(dc) == 0 {
			continue
		}
		if strings.Contains(dn, uc(dc[0])) {
			return t.TargetDomainSID + ridFromName(dn)
		}
	}
	if strings.Contains(dn, "CN=S-") {
		if m := p.sidRe.FindString(dn); m != "" {
			return m
		}
	}
	return dn
}

// allEntities returns every entity the pipeline owns, wrapped uniformly for
// the passes (P3) that operate over any kind.
func (p *Pipeline) allEntities() []Entity {
	out := make([]Entity, 0, len(p.Users)+len(p.Computers)+len(p.Groups)+len(p.OUs)+len(p.Domains)+len(p.Containers))
	out = append(out, WrapUsers(p.Users)...)
	out = append(out, WrapComputers(p.Computers)...)
	out = append(out, WrapGroups(p.Groups)...)
	for _, e := range p.OUs {
		out = append(out, e)
	}
	for _, e := range p.Domains {
		out = append(out, e)
	}
	for _, e := range p.Containers {
		out = append(out, e)
	}
	return out
}

// nonDomainEntities returns every entity except Domains, for P7 (spec.md
// §4.7: "For every entity whose type is not Domain").
func (p *Pipeline) nonDomainEntities() []Entity {
	out := make([]Entity, 0, len(p.Users)+len(p.Computers)+len(p.Groups)+len(p.OUs)+len(p.Containers))
	out = append(out, WrapUsers(p.Users)...)
	out = append(out, WrapComputers(p.Computers)...)
	out = append(out, WrapGroups(p.Groups)...)
	for _, e := range p.OUs {
		out = append(out, e)
	}
	for _, e := range p.Containers {
		out = append(out, e)
	}
	return out
}

// entitiesWithLinks returns every entity carrying a non-empty Links
// collection, the population P8 operates over.
func (p *Pipeline) entitiesWithLinks() []Entity {
	var out []Entity
	for _, e := range p.OUs {
		if len(e.Links) > 0 {
			out = append(out, e)
		}
	}
	for _, e := range p.Domains {
		if len(e.Links) > 0 {
			out = append(out, e)
		}
	}
	return out
}
