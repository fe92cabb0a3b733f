package eventio

import (
	"fmt"

	stgpsr "github.com/yuin/stagparser"
)

// Version-dispatched decoders declare the set of versions they accept as a
// struct tag rather than a parallel Go slice, the same declarative,
// reflection-driven metadata go-gsf's schemaAttrs reads TileDB attribute
// definitions from - here the tag says which dtype version variants a
// decoder implements instead of which TileDB attributes a field maps to.
// Each accepted version is its own bare flag (no "=value"), the same form
// go-gsf's own tags use for "var" (see intensity.go's `ftype=attr,var`
// and tiledb.go's `tiledb_defs["var"]` presence check) rather than a
// single attribute holding a delimited list.

type mcRunHeaderVersionTag struct {
	V struct{} `supported:"v0,v1,v2,v3,v4"`
}

type disabledPixelsVersionTag struct {
	V struct{} `supported:"v0"`
}

type cameraSettingsVersionTag struct {
	V struct{} `supported:"v0,v1,v2,v3,v4,v5"`
}

type trackingVersionTag struct {
	V struct{} `supported:"v0,v1"`
}

// checkVersion parses tagHolder's "supported" tag and raises
// ErrUnsupportedVersion when version is absent from the declared set,
// exactly where the upstream MCRunHeader decoder raises an error on an
// unmapped version.
func checkVersion(recordType uint32, version uint16, tagHolder any) error {
	defs, err := stgpsr.ParseStruct(tagHolder, "supported")
	if err != nil {
		return fmt.Errorf("eventio: malformed version tag for type %d: %w", recordType, err)
	}

	want := fmt.Sprintf("v%d", version)
	for _, fieldDefs := range defs {
		for _, def := range fieldDefs {
			if def.Name() == want {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: type=%d version=%d", ErrUnsupportedVersion, recordType, version)
}
