package graph

import "strings"

// wellKnownGroup is one row of the static table in spec.md §4.1.
type wellKnownGroup struct {
	Suffix    string
	Name      string
	HighValue bool
}

// WellKnownGroups is synthesized per domain by P1 — AD never returns these
// as directory objects, but BloodHound expects them to exist.
//
// Grounded on original_source/src/json/checker/common.rs's
// add_default_groups, which cites
// https://github.com/fox-it/BloodHound.py/.../memberships.py#L411 for the
// same table.
var WellKnownGroups = []wellKnownGroup{
	{"S-1-5-9", "ENTERPRISE DOMAIN CONTROLLERS", false},
	{"S-1-5-32-548", "ACCOUNT OPERATORS", true},
	{"S-1-5-32-560", "WINDOWS AUTHORIZATION ACCESS GROUP", false},
	{"S-1-1-0", "EVERYONE", false},
	{"S-1-5-11", "AUTHENTICATED USERS", false},
	{"S-1-5-32-544", "ADMINISTRATORS", true},
	{"S-1-5-32-554", "PRE-WINDOWS 2000 COMPATIBLE ACCESS", false},
	{"S-1-5-4", "INTERACTIVE", false},
	{"S-1-5-32-550", "PRINT OPERATORS", true},
	{"S-1-5-32-561", "TERMINAL SERVER LICENSE SERVERS", false},
	{"S-1-5-32-557", "INCOMING FOREST TRUST BUILDERS", false},
	{"S-1-5-15", "THIS ORGANIZATION", false},
}

// nameToRID is the static name-to-RID table of spec.md §6.1, used by
// ForeignSidResolve. Matched by case-sensitive substring containment;
// English and French localisations are both recognised.
//
// Grounded on get_id_from_objectidentifier in original_source's
// json/checker/common.rs.
var nameToRID = []struct {
	Name string
	RID  string
}{
	{"DOMAIN ADMINS", "-512"},
	{"ADMINISTRATEURS DU DOMAINE", "-512"},
	{"DOMAIN USERS", "-513"},
	{"UTILISATEURS DU DOMAINE", "-513"},
	{"DOMAIN GUESTS", "-514"},
	{"INVITES DE DOMAINE", "-514"},
	{"DOMAIN COMPUTERS", "-515"},
	{"ORDINATEURS DE DOMAINE", "-515"},
	{"DOMAIN CONTROLLERS", "-516"},
	{"CONTRÔLEURS DE DOMAINE", "-516"},
	{"CERT PUBLISHERS", "-517"},
	{"EDITEURS DE CERTIFICATS", "-517"},
	{"SCHEMA ADMINS", "-518"},
	{"ADMINISTRATEURS DU SCHEMA", "-518"},
	{"ENTERPRISE ADMINS", "-519"},
	{"ADMINISTRATEURS DE L'ENTREPRISE", "-519"},
}

// NullRID is returned by ridFromName when no table entry matches; the
// caller concatenates it with the trust SID producing a deliberately
// sentinel value downstream tooling can flag.
const NullRID = "NULL_ID1"

func ridFromName(objectIdentifier string) string {
	for _, e := range nameToRID {
		if strings.Contains(objectIdentifier, e.Name) {
			return e.RID
		}
	}
	return NullRID
}
