package ast

import (
	"encoding/json"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// encodeFileContext/decodeFileContext give the cache a byte-slice value to
// store: FileContext's fields are all plain data, so JSON round-trips it
// without a bespoke wire format.
func encodeFileContext(fc types.FileContext) ([]byte, error) {
	return json.Marshal(fc)
}

func decodeFileContext(raw []byte) (types.FileContext, error) {
	var fc types.FileContext
	err := json.Unmarshal(raw, &fc)
	return fc, err
}
