package inventory

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// JSONFile reads inventory records from a JSON document instead of scanning
// the filesystem. The input must be a JSON array of records:
//
//	[
//	  {"name": "A", "version": "1.0", "requires": [{"name": "B", "constraint": ">=1.0"}]},
//	  {"name": "B", "version": "2.0"}
//	]
//
// Keys are derived from names when omitted. This source exists so graph
// output from one run (or another tool) can be re-inspected without access
// to the original environment.
type JSONFile struct {
	Path string
}

// Packages reads and decodes the configured file.
func (s *JSONFile) Packages(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInventory, err, "open %s", s.Path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadJSON decodes inventory records from r. Every record must carry a
// non-empty name; missing keys are normalized from the name.
func ReadJSON(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInventory, err, "decode inventory")
	}
	for i := range records {
		if records[i].Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInventory,
				"record %d: missing package name", i)
		}
		if records[i].Key == "" {
			records[i].Key = NormalizeKey(records[i].Name)
		}
	}
	return records, nil
}
