// Package instancetype normalizes RDS instance type strings.
//
// The pricing catalog and the EBS capacity page spell the same hardware
// inconsistently, so every instance type string goes through Sanitize before
// it is used as a key.
package instancetype

import (
	"strings"
	"unicode"
)

// Prefix is prepended to EC2 instance types to form RDS instance types
const Prefix = "db."

// Known typos observed in vendor data, mapped to the correct spelling
var typoCorrections = map[string]string{
	"x1.16large":  "x1.16xlarge",
	"i3.4xlxarge": "i3.4xlarge",
	"i3.16large":  "i3.16xlarge",
	"p4d.2xlarge": "p4d.24xlarge",
}

// Sanitize removes all whitespace and corrects known typos. It is idempotent.
func Sanitize(instanceType string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, instanceType)

	if fixed, ok := typoCorrections[cleaned]; ok {
		return fixed
	}
	return cleaned
}

// WithPrefix converts an EC2 style type ("r5.large") to the RDS key space
// ("db.r5.large"). Types already carrying the prefix are returned unchanged.
func WithPrefix(instanceType string) string {
	if strings.HasPrefix(instanceType, Prefix) {
		return instanceType
	}
	return Prefix + instanceType
}

var familyNames = map[string]string{
	"t2":  "T2 General Purpose",
	"r3":  "R3 Memory Optimized",
	"r4":  "R4 Memory Optimized",
	"c3":  "C3 High-CPU",
	"c4":  "C4 High-CPU",
	"m3":  "M3 General Purpose",
	"i3":  "I3 High I/O",
	"cg1": "Cluster GPU",
	"cc2": "Cluster Compute",
	"cr1": "High Memory Cluster",
	"hs1": "High Storage",
	"c1":  "C1 High-CPU",
	"hi1": "HI1. High I/O",
	"m2":  "M2 High Memory",
	"m1":  "M1 General Purpose",
	"m4":  "M4 General Purpose",
}

// Sizes like "12xlarge" match none of these and keep their own spelling
var sizeMultipliers = []struct {
	prefix string
	word   string
}{
	{"8x", "Eight"},
	{"4x", "Quadruple"},
	{"2x", "Double"},
	{"10x", "Deca"},
	{"x", ""},
}

// PrettyName derives a display name such as "R4 Memory Optimized Eight Extra Large"
// from an RDS instance type such as "db.r4.8xlarge".
func PrettyName(instanceType string) string {
	pieces := strings.Split(instanceType, ".")
	if len(pieces) > 0 && pieces[0]+"." == Prefix {
		pieces = pieces[1:]
	}
	if len(pieces) < 2 {
		return strings.ToUpper(instanceType)
	}

	family, size := pieces[0], pieces[1]
	prefix, ok := familyNames[family]
	if !ok {
		prefix = strings.ToUpper(family)
	}

	bits := []string{prefix}
	for _, m := range sizeMultipliers {
		if strings.HasPrefix(size, m.prefix) {
			bits = append(bits, m.word, "Extra")
			size = "Large"
			break
		}
	}
	bits = append(bits, capitalize(size))

	words := bits[:0]
	for _, b := range bits {
		if b != "" {
			words = append(words, b)
		}
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
