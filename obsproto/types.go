// Package obsproto holds the wire types ObservationStore persists:
// Observation, its named Parts, and SystemProfile. The payload itself is
// explicitly opaque and schema-evolution is out of scope (spec.md §1), so
// these are plain Go structs with a hand-packed binary encoding (encode.go),
// not a generated protobuf schema — see SPEC_FULL.md §4.G.
package obsproto

// PartVariant identifies which of the small closed set of encoding variants
// an ObservationPart carries. The store never interprets the payload
// beyond this tag.
type PartVariant uint8

const (
	PartVariantUnspecified PartVariant = 0
	PartVariantForculus    PartVariant = 1
	PartVariantRappor      PartVariant = 2
	PartVariantBasicRappor PartVariant = 3
)

func (v PartVariant) String() string {
	switch v {
	case PartVariantForculus:
		return "forculus"
	case PartVariantRappor:
		return "rappor"
	case PartVariantBasicRappor:
		return "basic_rappor"
	default:
		return "unspecified"
	}
}

// ObservationPart is one named, opaquely-encoded sub-field of an Observation.
type ObservationPart struct {
	Variant PartVariant
	Data    []byte
}

// Observation is the atomic payload AddObservationBatch writes and
// QueryObservations returns, keyed by part name.
type Observation struct {
	Parts map[string]ObservationPart
}

// ProjectParts returns a copy of o containing only the parts whose names
// appear in names. An empty names returns o unchanged (spec.md §4.F.2.c:
// "If parts is empty, keep all parts").
func (o Observation) ProjectParts(names []string) Observation {
	if len(names) == 0 {
		return o
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	out := Observation{Parts: make(map[string]ObservationPart, len(names))}
	for name, part := range o.Parts {
		if _, ok := wanted[name]; ok {
			out.Parts[name] = part
		}
	}
	return out
}

// SystemProfileField is one of the projectable fields of a SystemProfile.
type SystemProfileField uint8

const (
	FieldBoardName SystemProfileField = iota
	FieldProductName
	FieldOS
	FieldArch
)

// SystemProfile describes the reporting device. Supplemented beyond
// spec.md's "board name, os, arch, etc." with product_name, present in the
// original Cobalt SystemProfile message.
type SystemProfile struct {
	BoardName   string
	ProductName string
	OS          string
	Arch        string
}

// field returns the value of f on p and whether p carries that field at all
// (a field is "present" iff its string is non-empty, the same convention
// the original Cobalt proto's string fields use).
func (p SystemProfile) field(f SystemProfileField) (string, bool) {
	var v string
	switch f {
	case FieldBoardName:
		v = p.BoardName
	case FieldProductName:
		v = p.ProductName
	case FieldOS:
		v = p.OS
	case FieldArch:
		v = p.Arch
	}
	return v, v != ""
}
