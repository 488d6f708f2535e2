// Package profile implements the SystemProfile field projection of
// spec.md §4.E: given a full SystemProfile and a requested field set,
// produce the reduced view a query result attaches.
package profile

import "github.com/cobalt-telemetry/observationstore/obsproto"

// Project returns a SystemProfile containing only the fields that are both
// named in requested and present (non-empty) on full. Whether the caller
// should attach the result at all — spec.md §4.E's "if requested_fields is
// empty, no profile is returned ... if a row has no stored profile, no
// profile is returned regardless of requested_fields" — is a decision that
// depends on whether the row had a profile at all, which this package
// cannot see; that decision belongs to the caller (observationstore.Store),
// which has both the stored-profile presence bit and requested.
func Project(full obsproto.SystemProfile, requested []obsproto.SystemProfileField) obsproto.SystemProfile {
	var out obsproto.SystemProfile
	for _, f := range requested {
		switch f {
		case obsproto.FieldBoardName:
			out.BoardName = full.BoardName
		case obsproto.FieldProductName:
			out.ProductName = full.ProductName
		case obsproto.FieldOS:
			out.OS = full.OS
		case obsproto.FieldArch:
			out.Arch = full.Arch
		}
	}
	return out
}
