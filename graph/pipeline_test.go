package graph

import (
	"testing"
)

func newTestIndexes() *Indexes {
	return NewIndexes(map[string]string{}, map[string]string{}, map[string]string{})
}

// S1 — DN name extraction.
func TestDNNameExtraction(t *testing.T) {
	dn := "CN=G0H4N,CN=USERS,DC=ESSOS,DC=LOCAL"

	if got := NameFromDN(dn); got != "G0H4N" {
		t.Errorf("NameFromDN(%q) = %q, want %q", dn, got, "G0H4N")
	}
	if got := CNComponentFromDN(dn); got != "CN=G0H4N" {
		t.Errorf("CNComponentFromDN(%q) = %q, want %q", dn, got, "CN=G0H4N")
	}
	cn := CNComponentFromDN(dn)
	got, ok := ContainedByFromDN(cn, dn)
	if !ok {
		t.Fatalf("ContainedByFromDN(%q, %q) reported not ok", cn, dn)
	}
	want := "CN=USERS,DC=ESSOS,DC=LOCAL"
	if got != want {
		t.Errorf("ContainedByFromDN(%q, %q) = %q, want %q", cn, dn, got, want)
	}
}

// S2 — well-known group synthesis.
func TestP1SynthesizeBuiltins(t *testing.T) {
	idx := newTestIndexes()
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Domains = []*Domain{{Envelope: Envelope{Name: "ESSOS.LOCAL"}}}
	p.Computers = []*Computer{
		{Envelope: Envelope{ObjectIdentifier: "S-1-5-21-111-222-333-1000"}, IsDC: true},
	}

	p.P1SynthesizeBuiltins()

	var edc *Group
	var everyone *Group
	for _, g := range p.Groups {
		switch g.ObjectIdentifier {
		case "ESSOS.LOCAL-S-1-5-9":
			edc = g
		case "ESSOS.LOCAL-S-1-1-0":
			everyone = g
		}
	}

	if edc == nil {
		t.Fatal("ENTERPRISE DOMAIN CONTROLLERS group not synthesized")
	}
	if edc.Name != "ENTERPRISE DOMAIN CONTROLLERS@ESSOS.LOCAL" {
		t.Errorf("unexpected EDC name %q", edc.Name)
	}
	if len(edc.Members) != 1 || edc.Members[0].ObjectIdentifier != "S-1-5-21-111-222-333-1000" {
		t.Errorf("unexpected EDC members %+v", edc.Members)
	}

	if everyone == nil {
		t.Fatal("EVERYONE group not synthesized")
	}
	wantIDs := map[string]bool{
		"S-1-5-21-111-222-333-515": false,
		"S-1-5-21-111-222-333-513": false,
	}
	if len(everyone.Members) != 2 {
		t.Fatalf("EVERYONE has %d members, want 2", len(everyone.Members))
	}
	for _, m := range everyone.Members {
		if _, ok := wantIDs[m.ObjectIdentifier]; !ok {
			t.Errorf("unexpected EVERYONE member %q", m.ObjectIdentifier)
		}
		if m.ObjectType != "Group" {
			t.Errorf("EVERYONE member %q has type %q, want Group", m.ObjectIdentifier, m.ObjectType)
		}
		wantIDs[m.ObjectIdentifier] = true
	}
	for id, seen := range wantIDs {
		if !seen {
			t.Errorf("expected EVERYONE member %q not found", id)
		}
	}
}

// S3 — member DN to SID resolution.
func TestP2ResolveGroupMembers(t *testing.T) {
	dn := "CN=ALICE,CN=USERS,DC=ESSOS,DC=LOCAL"
	idx := NewIndexes(
		map[string]string{dn: "S-1-5-21-111-222-333-1104"},
		map[string]string{"S-1-5-21-111-222-333-1104": "User"},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Groups = []*Group{
		{Members: []Member{{ObjectIdentifier: dn}}},
	}

	p.P2ResolveGroupMembers()

	m := p.Groups[0].Members[0]
	if m.ObjectIdentifier != "S-1-5-21-111-222-333-1104" {
		t.Errorf("resolved identifier = %q, want S-1-5-21-111-222-333-1104", m.ObjectIdentifier)
	}
	if m.ObjectType != "User" {
		t.Errorf("resolved type = %q, want User", m.ObjectType)
	}
}

// S4 — foreign principal resolved via trust.
func TestP2ForeignSidResolveViaTrust(t *testing.T) {
	idx := newTestIndexes()
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Trusts = []*Trust{
		{TargetDomainName: "CORP.EXAMPLE", TargetDomainSID: "S-1-5-21-999-888-777"},
	}
	p.Groups = []*Group{
		{Members: []Member{{ObjectIdentifier: "CN=DOMAIN ADMINS,CN=USERS,DC=CORP,DC=EXAMPLE"}}},
	}

	p.P2ResolveGroupMembers()

	m := p.Groups[0].Members[0]
	want := "S-1-5-21-999-888-777-512"
	if m.ObjectIdentifier != want {
		t.Errorf("resolved identifier = %q, want %q", m.ObjectIdentifier, want)
	}
	if m.ObjectType != "Group" {
		t.Errorf("resolved type = %q, want Group", m.ObjectType)
	}
}

// S5 — OU affected-computers.
func TestP9BuildOUAffectedComputers(t *testing.T) {
	ouDN := "OU=WORKSTATIONS,DC=ESSOS,DC=LOCAL"
	c1DN := "CN=WKSTN1,OU=WORKSTATIONS,DC=ESSOS,DC=LOCAL"
	c2DN := "CN=WKSTN2,OU=WORKSTATIONS,DC=ESSOS,DC=LOCAL"

	idx := NewIndexes(
		map[string]string{
			ouDN: "OU-SID",
			c1DN: "S-1-5-21-1-1-1-1001",
			c2DN: "S-1-5-21-1-1-1-1002",
		},
		map[string]string{
			"OU-SID":              "OU",
			"S-1-5-21-1-1-1-1001": "Computer",
			"S-1-5-21-1-1-1-1002": "Computer",
		},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.OUs = []*OU{{Envelope: Envelope{DistinguishedName: ouDN}}}

	p.P9BuildOUAffectedComputers()

	affected := p.OUs[0].GPOChanges.AffectedComputers
	if len(affected) != 2 {
		t.Fatalf("AffectedComputers has %d entries, want 2: %+v", len(affected), affected)
	}
	got := map[string]bool{}
	for _, m := range affected {
		if m.ObjectType != "Computer" {
			t.Errorf("affected computer %q has type %q, want Computer", m.ObjectIdentifier, m.ObjectType)
		}
		got[m.ObjectIdentifier] = true
	}
	for _, want := range []string{"S-1-5-21-1-1-1-1001", "S-1-5-21-1-1-1-1002"} {
		if !got[want] {
			t.Errorf("expected affected computer %q not found", want)
		}
	}
}

// S6 — gPLink rewrite.
func TestP8ResolveGPLinkGUIDs(t *testing.T) {
	guid := "31B2F340-016D-11D2-945F-00C04FB984F9"
	gpoDN := "CN={" + guid + "},CN=POLICIES,CN=SYSTEM,DC=ESSOS,DC=LOCAL"

	idx := NewIndexes(
		map[string]string{gpoDN: "GPO-GUID-CANONICAL"},
		map[string]string{"GPO-GUID-CANONICAL": "GPO"},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.OUs = []*OU{{Links: []Link{{GUID: guid}}}}

	p.P8ResolveGPLinkGUIDs()

	if got := p.OUs[0].Links[0].GUID; got != "GPO-GUID-CANONICAL" {
		t.Errorf("resolved link GUID = %q, want GPO-GUID-CANONICAL", got)
	}
}

// Invariant 1: every ACE's PrincipalType is non-empty after P3.
func TestP3PropagateAcePrincipalTypeNeverEmpty(t *testing.T) {
	idx := NewIndexes(
		map[string]string{},
		map[string]string{"S-1-5-21-1-1-1-1104": "User"},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Users = []*User{
		{Envelope: Envelope{Aces: []Ace{
			{PrincipalSID: "S-1-5-21-1-1-1-1104"},
			{PrincipalSID: "S-1-5-21-1-1-1-9999"}, // unknown SID
		}}},
	}

	p.P3PropagateAcePrincipalType()

	aces := p.Users[0].Aces
	if aces[0].PrincipalType != "User" {
		t.Errorf("known SID got type %q, want User", aces[0].PrincipalType)
	}
	if aces[1].PrincipalType == "" {
		t.Error("unknown SID's principal type must never be empty (defaults to Group)")
	}
}

// Invariant 4: P3 is idempotent.
func TestP3Idempotent(t *testing.T) {
	idx := NewIndexes(
		map[string]string{},
		map[string]string{"S-1-5-21-1-1-1-1104": "User"},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Users = []*User{
		{Envelope: Envelope{Aces: []Ace{{PrincipalSID: "S-1-5-21-1-1-1-1104"}}}},
	}

	p.P3PropagateAcePrincipalType()
	first := p.Users[0].Aces[0].PrincipalType
	p.P3PropagateAcePrincipalType()
	second := p.Users[0].Aces[0].PrincipalType

	if first != second {
		t.Errorf("P3 not idempotent: first=%q second=%q", first, second)
	}
}

// Invariant 4: P5 is idempotent.
func TestP5Idempotent(t *testing.T) {
	idx := NewIndexes(
		map[string]string{},
		map[string]string{"S-1-5-21-1-1-1-2000": "Computer"},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Computers = []*Computer{
		{AllowedToAct: []Member{{ObjectIdentifier: "S-1-5-21-1-1-1-2000"}}},
	}

	p.P5ResolveAllowedToActTypes()
	first := p.Computers[0].AllowedToAct[0].ObjectType
	p.P5ResolveAllowedToActTypes()
	second := p.Computers[0].AllowedToAct[0].ObjectType

	if first != second {
		t.Errorf("P5 not idempotent: first=%q second=%q", first, second)
	}
	if first != "Computer" {
		t.Errorf("resolved AllowedToAct type = %q, want Computer", first)
	}
}

// Invariant 3: ContainedBy, when set, always points at a known identifier.
func TestP7ContainedByPointsAtKnownIdentifier(t *testing.T) {
	parentDN := "CN=USERS,DC=ESSOS,DC=LOCAL"
	childDN := "CN=ALICE,CN=USERS,DC=ESSOS,DC=LOCAL"

	idx := NewIndexes(
		map[string]string{
			parentDN: "PARENT-SID",
			childDN:  "CHILD-SID",
		},
		map[string]string{
			"PARENT-SID": "Container",
			"CHILD-SID":  "User",
		},
		map[string]string{},
	)
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Users = []*User{
		{Envelope: Envelope{ObjectIdentifier: "CHILD-SID", DistinguishedName: childDN}},
	}

	p.P7BuildContainedBy()

	cb := p.Users[0].ContainedBy
	if cb == nil {
		t.Fatal("ContainedBy was not set")
	}
	if _, ok := idx.SIDToType[cb.ObjectIdentifier]; !ok {
		t.Errorf("ContainedBy identifier %q not found in SID_to_Type", cb.ObjectIdentifier)
	}
	if cb.ObjectIdentifier != "PARENT-SID" {
		t.Errorf("ContainedBy = %q, want PARENT-SID", cb.ObjectIdentifier)
	}
}

// P11's "SID" sentinel: a trust list whose first entry's target SID doesn't
// literally contain "SID" is treated as populated and injected; one that
// does is treated as an unresolved placeholder and skipped verbatim, per
// spec.md's open question.
func TestP11SentinelConvention(t *testing.T) {
	idx := newTestIndexes()
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Domains = []*Domain{{Envelope: Envelope{Name: "ESSOS.LOCAL"}}}
	p.Trusts = []*Trust{{TargetDomainName: "CORP.EXAMPLE", TargetDomainSID: "SID_UNRESOLVED"}}

	p.P11InjectTrustedDomains()

	if len(p.Domains) != 1 {
		t.Errorf("sentinel trust SID should have been skipped, got %d domains", len(p.Domains))
	}
}

func TestP11InjectsTrustedDomainStub(t *testing.T) {
	idx := newTestIndexes()
	p, err := NewPipeline(idx)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.Domains = []*Domain{{Envelope: Envelope{Name: "ESSOS.LOCAL"}}}
	p.Trusts = []*Trust{
		{TargetDomainName: "CORP.EXAMPLE", TargetDomainSID: "S-1-5-21-999-888-777"},
	}

	p.P11InjectTrustedDomains()

	if len(p.Domains) != 2 {
		t.Fatalf("expected one injected stub domain, got %d domains", len(p.Domains))
	}
	stub := p.Domains[1]
	if stub.ObjectIdentifier != "S-1-5-21-999-888-777" {
		t.Errorf("stub domain identifier = %q, want S-1-5-21-999-888-777", stub.ObjectIdentifier)
	}
	if !stub.HighValue {
		t.Error("injected trusted domain stub must be HighValue")
	}
	if len(p.Domains[0].Trusts) != 1 {
		t.Errorf("primary domain should carry 1 trust record, got %d", len(p.Domains[0].Trusts))
	}
}
