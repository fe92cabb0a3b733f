package eventio

import (
	"encoding/json"
	"os"
)

// JsonDumps constructs a JSON string of the supplied data, the same
// helper the upstream JSON module exposed for ad hoc serialisation
// outside the metadata-writing path.
func JsonDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// JsonIndentDumps constructs a JSON string of the supplied data using an
// indentation of four spaces.
func JsonIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// WriteJSONFile serialises data as indented JSON and writes it to path.
// The upstream equivalent went through a TileDB VFS stream so the same
// call worked against local disk or an object store; this module has no
// storage backend to abstract over, so it writes directly via os.
func WriteJSONFile(path string, data any) (int, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, jsn, 0o644); err != nil {
		return 0, err
	}
	return len(jsn), nil
}
