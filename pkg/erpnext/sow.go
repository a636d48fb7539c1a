package erpnext

import "strings"

// SoW types accepted by the contract doctype
const (
	SowTypeTimeAndMaterial = "T&M"
	SowTypeFixedCost       = "Fixed Cost"
	SowTypeRetainer        = "Retainer"
)

// MapSowType maps a freeform statement-of-work type extracted from a
// document onto the fixed set the contract doctype accepts. Unrecognized
// values fall back to T&M.
func MapSowType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "time & material", "time and material", "t&m", "time & materials", "time and materials":
		return SowTypeTimeAndMaterial
	case "fixed price", "fixed cost", "fixed":
		return SowTypeFixedCost
	case "retainer":
		return SowTypeRetainer
	default:
		return SowTypeTimeAndMaterial
	}
}
