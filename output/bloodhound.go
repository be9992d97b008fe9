package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

const (
	// BloodHound format version
	bloodHoundVersion = 4
)

// bloodHoundMetadata represents the metadata section of BloodHound output
type bloodHoundMetadata struct {
	Type           string `json:"type"`
	Version        int    `json:"version"`
	Count          int    `json:"count"`
	CollectionTime string `json:"collectiontime"`
}

// bloodHoundACL represents an Access Control Entry in BloodHound format
type bloodHoundACL struct {
	PrincipalName string `json:"PrincipalName"`
	PrincipalType string `json:"PrincipalType"`
	RightName     string `json:"RightName"`
	IsInherited   bool   `json:"IsInherited"`
}

// bloodHoundOutput represents the complete BloodHound JSON structure
type bloodHoundOutput struct {
	Meta bloodHoundMetadata `json:"meta"`
	Data []map[string]any   `json:"data"`
}

// bloodHoundPrinter outputs BloodHound JSON format
type bloodHoundPrinter struct {
	cfg        PrinterConfig
	objectType string // "users", "computers", "groups"
}

// newBloodHoundPrinter creates a new BloodHound format printer
func newBloodHoundPrinter(cfg PrinterConfig, objectType string) Printer {
	return &bloodHoundPrinter{
		cfg:        cfg,
		objectType: objectType,
	}
}

// Print outputs entries in BloodHound JSON format. Used only for ad-hoc
// single-query output (the "bh"/"bloodhound" --output flag on plain query
// commands); the full-corpus emitter is WriteIngestFiles, which marshals
// graph.Pipeline's own structs instead of raw entries.
func (p *bloodHoundPrinter) Print(entries []*ldap.Entry) error {
	bhData := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		bhData = append(bhData, p.convertGeneric(entry))
	}

	output := bloodHoundOutput{
		Meta: bloodHoundMetadata{
			Type:           p.objectType,
			Version:        bloodHoundVersion,
			Count:          len(bhData),
			CollectionTime: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		},
		Data: bhData,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling BloodHound JSON: %w", err)
	}

	if p.cfg.Path != "" {
		return os.WriteFile(p.cfg.Path, data, 0644)
	}

	fmt.Println(string(data))
	return nil
}

// StreamPrint streams entries in BloodHound JSON format
func (p *bloodHoundPrinter) StreamPrint(entriesChan <-chan *ldap.Entry) error {
	// Collect all entries first (BloodHound JSON needs metadata)
	var entries []*ldap.Entry
	for entry := range entriesChan {
		entries = append(entries, entry)
	}

	return p.Print(entries)
}

// convertGeneric creates a generic BloodHound object out of whatever
// attributes a single ad-hoc query returned.
func (p *bloodHoundPrinter) convertGeneric(entry *ldap.Entry) map[string]any {
	props := make(map[string]any, len(entry.Attributes)+2)
	props["name"] = getAttributeValue(entry, "sAMAccountName")
	props["domain"] = extractDomain(entry.DN)
	for name, val := range formatEntryAttributes(entry) {
		props[name] = val
	}
	return map[string]any{
		"ObjectIdentifier": entry.DN,
		"Properties":       props,
	}
}

// getAttributeValue safely gets a single attribute value
func getAttributeValue(entry *ldap.Entry, name string) string {
	attr := entry.GetAttributeValues(name)
	if len(attr) > 0 {
		return attr[0]
	}
	return ""
}

// extractDomain extracts domain from DN, e.g. "DC=example,DC=com" ->
// "example.com".
func extractDomain(dn string) string {
	var domainParts []string
	for _, part := range splitDN(dn) {
		if len(part) > 3 && part[0:3] == "DC=" {
			domainParts = append(domainParts, part[3:])
		}
	}
	if len(domainParts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(domainParts, ".")
}

// splitDN splits a DN into components
func splitDN(dn string) []string {
	var parts []string
	current := ""
	inEscape := false

	for i, c := range dn {
		switch {
		case inEscape:
			current += string(c)
			inEscape = false
		case c == '\\':
			inEscape = true
		case c == ',':
			parts = append(parts, current)
			current = ""
		default:
			current += string(c)
		}

		if i == len(dn)-1 && current != "" {
			parts = append(parts, current)
		}
	}

	return parts
}
