package output

import (
	"adharvest/analyze"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

// PrinterConfig defines configuration options for output printers.
type PrinterConfig struct {
	Format string // Output format: "text", "json", "bloodhound", or "bh"
	Path   string // Optional file path, used by the bloodhound printer only; text and json always write to stdout
}

// Printer defines the interface for output formatters used by the ad-hoc
// query command. The full-corpus BloodHound ingest emitter
// (WriteIngestFiles) does not go through this interface; it marshals
// graph.Pipeline's own structs directly.
type Printer interface {
	Print(entries []*ldap.Entry) error
	StreamPrint(entriesChan <-chan *ldap.Entry) error
}

// NewPrinter creates a new Printer instance based on the specified format.
// Returns an error if the format is not supported.
//
// Supported formats:
//   - "text": Human-readable card-based output with color
//   - "json": Structured JSON output with metadata
//   - "bloodhound" or "bh": BloodHound JSON format for a single ad-hoc query
func NewPrinter(cfg PrinterConfig) (Printer, error) {
	switch cfg.Format {
	case "text", "card":
		return NewTextPrinter(cfg), nil
	case "json":
		return NewJSONPrinter(cfg), nil
	case "bloodhound", "bh":
		// Default to users object type if not specified
		return newBloodHoundPrinter(cfg, "users"), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}

// formatEntryAttributes converts LDAP entry attributes to a map of attribute names to formatted values.
// It uses the analyze package to format each attribute appropriately.
// Empty or invalid attributes are omitted from the result.
func formatEntryAttributes(e *ldap.Entry) map[string]string {
	attrs := make(map[string]string)
	for _, attr := range e.Attributes {
		if v, err := analyze.FormatAttributeValue(e, attr.Name); err == nil && v != "" {
			attrs[attr.Name] = v
		}
	}
	return attrs
}
