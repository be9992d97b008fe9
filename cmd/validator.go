package cmd

import (
	"adharvest/analyze"
	"fmt"
	"strconv"
	"strings"
)

// ValidatePort validates that a port number is within the valid range (1-65535).
func ValidatePort(port int) error {
	if port < analyze.MinPort || port > analyze.MaxPort {
		return fmt.Errorf("port must be between %d and %d", analyze.MinPort, analyze.MaxPort)
	}
	return nil
}

// ValidatePortString validates a port number provided as a string.
func ValidatePortString(portStr string) error {
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	return ValidatePort(p)
}

// ValidateSecurityMode validates that a security mode is within the valid range (0-4).
func ValidateSecurityMode(mode int) error {
	if !analyze.IsValidSecurityMode(mode) {
		return fmt.Errorf("security mode must be between %d and %d",
			analyze.SecurityModeNone, analyze.SecurityModeInsecureStartTLS)
	}
	return nil
}

// ValidateSecurityModeString validates a security mode provided as a string.
func ValidateSecurityModeString(modeStr string) error {
	s, err := strconv.Atoi(modeStr)
	if err != nil {
		return fmt.Errorf("security mode must be a number")
	}
	return ValidateSecurityMode(s)
}

// ValidateOutputFormat validates that the output format is supported by the
// ad-hoc query printers (output.NewPrinter) this config value feeds.
func ValidateOutputFormat(format string) error {
	switch format {
	case analyze.OutputFormatText, analyze.OutputFormatJSON, "bloodhound", "bh":
		return nil
	default:
		return fmt.Errorf("output format must be text, json, or bloodhound")
	}
}

// ValidateBaseDN validates that a base DN string appears to be a valid distinguished name.
// This is a basic check - it only verifies that "DC=" is present.
func ValidateBaseDN(dn string) error {
	if dn == "" {
		return nil // Empty DN is allowed (will be set later)
	}
	if !strings.Contains(strings.ToUpper(dn), "DC=") {
		return fmt.Errorf("base DN usually contains 'DC=' components")
	}
	return nil
}
