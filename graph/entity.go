// Package graph holds the post-enumeration entity model and the
// link-resolution passes that turn raw, independently-parsed AD objects into
// a cross-referenced, BloodHound-ingestible corpus.
//
// These types are a plain domain model, not a wire format: spec.md §6.3
// leaves ingest serialization out of the core's scope, so none of the
// structs here carry json tags. output/ingest.go owns the BloodHound ingest
// JSON shape and builds it from these values at emission time.
package graph

// Member is an edge record pointing at another principal by identifier.
type Member struct {
	ObjectIdentifier string
	ObjectType       string
}

// Ace is a single access-control-entry record attached to an entity.
type Ace struct {
	PrincipalSID  string
	PrincipalType string
	RightName     string
	IsInherited   bool
}

// Link records a gPLink reference from an OU/Domain to a GPO.
type Link struct {
	GUID       string
	IsEnforced bool
}

// GPOChange holds the set of computers a linked GPO would affect.
type GPOChange struct {
	AffectedComputers []Member
}

// SPNTarget is a delegation edge from a user to a target computer SPN.
type SPNTarget struct {
	ComputerSID string
	Port        int
	Service     string
}

// Envelope holds the fields common to every entity kind (spec.md §3).
type Envelope struct {
	ObjectIdentifier  string
	Name              string
	DistinguishedName string
	Domain            string
	DomainSID         string
	Aces              []Ace
	ContainedBy       *Member
	IsACLProtected    bool
	IsDeleted         bool
	HighValue         bool
}

// User is a security principal; SPNTargets and AllowedToDelegate carry
// delegation edges resolved by P4.
type User struct {
	Envelope
	SPNTargets        []SPNTarget
	AllowedToDelegate []Member
	HasSPN            bool
}

// Computer is a machine principal. AllowedToDelegate mirrors User's
// account-based constrained delegation; AllowedToAct is inbound
// resource-based constrained delegation, resolved by P5.
type Computer struct {
	Envelope
	AllowedToDelegate []Member
	AllowedToAct      []Member
	IsDC              bool
}

// Group carries an ordered membership list resolved by P2.
type Group struct {
	Envelope
	Members []Member
}

// OU is an organizational unit; ChildObjects is populated by P6 and
// GPOChanges.AffectedComputers by P9.
type OU struct {
	Envelope
	ChildObjects []Member
	Links        []Link
	GPOChanges   GPOChange
}

// Domain is the root of a DN subtree. ChildObjects comes from P6,
// GPOChanges.AffectedComputers from P10, and Trusts from P11.
type Domain struct {
	Envelope
	ChildObjects []Member
	Links        []Link
	GPOChanges   GPOChange
	Trusts       []Trust
}

// Container is a generic directory container (e.g. CN=Users). ChildObjects
// is populated by P6.
type Container struct {
	Envelope
	ChildObjects []Member
}

// GPO is a group policy object. It is not one of the five pipeline-mutated
// collections in spec.md §3, but P8 needs something to resolve Link.guid
// against, and a complete ingest corpus needs GPO objects of its own.
type GPO struct {
	Envelope
	GPCFileSysPath string
}

// Trust records an inter-domain authentication relationship (spec.md §3).
type Trust struct {
	TargetDomainName    string
	TargetDomainSID     string
	TrustDirection      int
	TrustType           string
	IsTransitive        bool
	SIDFilteringEnabled bool
}

// Entity is the capability interface spec.md §9 describes: any entity kind
// exposing get/set access to the fields P3, P7 and P8 operate on uniformly.
// Kinds without a given field (e.g. Container has no Links) implement the
// accessor as a no-op over a nil/empty slice rather than panicking, since
// the pipeline passes are expected to run over mixed collections of
// heterogeneous kinds via the helper slices built in collect.
type Entity interface {
	Identifier() string
	GetAces() []Ace
	SetAces([]Ace)
	GetContainedBy() *Member
	SetContainedBy(*Member)
	GetLinks() []Link
	SetLinks([]Link)
	GetChildObjects() []Member
	SetChildObjects([]Member)
}

func (e *Envelope) Identifier() string       { return e.ObjectIdentifier }
func (e *Envelope) GetAces() []Ace           { return e.Aces }
func (e *Envelope) SetAces(a []Ace)          { e.Aces = a }
func (e *Envelope) GetContainedBy() *Member  { return e.ContainedBy }
func (e *Envelope) SetContainedBy(m *Member) { e.ContainedBy = m }

// User, Computer and Group carry neither Links nor ChildObjects; their
// adapters below embed the noLinks/noChildren no-op mixins so the Entity
// interface is still satisfiable without per-kind boilerplate.

type noLinks struct{}

func (noLinks) GetLinks() []Link    { return nil }
func (noLinks) SetLinks(l []Link)   {}

type noChildren struct{}

func (noChildren) GetChildObjects() []Member  { return nil }
func (noChildren) SetChildObjects(m []Member) {}

// compile-time interface checks
var (
	_ Entity = (*userEntity)(nil)
	_ Entity = (*computerEntity)(nil)
	_ Entity = (*groupEntity)(nil)
	_ Entity = (*OU)(nil)
	_ Entity = (*Domain)(nil)
	_ Entity = (*Container)(nil)
)

// userEntity, computerEntity and groupEntity adapt User/Computer/Group to
// the Entity interface without adding unused Links/ChildObjects fields to
// the structs themselves.
type userEntity struct {
	*User
	noLinks
	noChildren
}

type computerEntity struct {
	*Computer
	noLinks
	noChildren
}

type groupEntity struct {
	*Group
	noLinks
	noChildren
}

func (e *OU) GetLinks() []Link            { return e.Links }
func (e *OU) SetLinks(l []Link)           { e.Links = l }
func (e *OU) GetChildObjects() []Member   { return e.ChildObjects }
func (e *OU) SetChildObjects(m []Member)  { e.ChildObjects = m }

func (e *Domain) GetLinks() []Link           { return e.Links }
func (e *Domain) SetLinks(l []Link)          { e.Links = l }
func (e *Domain) GetChildObjects() []Member  { return e.ChildObjects }
func (e *Domain) SetChildObjects(m []Member) { e.ChildObjects = m }

func (e *Container) GetLinks() []Link            { return nil }
func (e *Container) SetLinks(l []Link)           {}
func (e *Container) GetChildObjects() []Member   { return e.ChildObjects }
func (e *Container) SetChildObjects(m []Member)  { e.ChildObjects = m }

// WrapUsers, WrapComputers and WrapGroups adapt slices of the concrete
// collections to Entity, for the passes (P3, P7, P8) that operate uniformly
// over every kind regardless of its native fields.
func WrapUsers(users []*User) []Entity {
	out := make([]Entity, len(users))
	for i, u := range users {
		out[i] = &userEntity{User: u}
	}
	return out
}

func WrapComputers(computers []*Computer) []Entity {
	out := make([]Entity, len(computers))
	for i, c := range computers {
		out[i] = &computerEntity{Computer: c}
	}
	return out
}

func WrapGroups(groups []*Group) []Entity {
	out := make([]Entity, len(groups))
	for i, g := range groups {
		out[i] = &groupEntity{Group: g}
	}
	return out
}
