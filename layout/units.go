package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths used by the story scene.

// Unit represents the original unit of a length value as written in a story file.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as user-space px
	UnitPX               // CSS pixels
	UnitEM               // relative to the current font size
	UnitPT               // points
	UnitMM               // millimeters
)

// Conversion constants between CSS px, pt and mm (96 px per inch).
const (
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
	PxToPt = 0.75
	PtToPx = 1 / PxToPt
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitEM:
		return "em"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToPx converts the length to px; em lengths need the font size in px.
func (l Length) ToPx(emPx float64) float64 {
	switch l.Unit {
	case UnitEM:
		return l.Value * emPx
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	default:
		return l.Value
	}
}

// String formats the length the way it is written in SVG attributes.
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses "150", "150px", "0.8em", "12pt" or "3mm" preserving the unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"em", UnitEM}, {"pt", UnitPT}, {"mm", UnitMM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
