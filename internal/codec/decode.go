package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"tabcli/internal/meta"
)

// Decode parses snapshot bytes under the given encoding. Only the JSON
// encodings can be loaded back; tabular formats return an error.
// Malformed bytes fail with an error wrapping meta.ErrSnapshotCorrupt.
func Decode(data []byte, enc Encoding) (*meta.Snapshot, error) {
	switch enc {
	case JSON:
		return decodeJSON(data)
	case JSONGz:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: bad gzip stream: %v", meta.ErrSnapshotCorrupt, err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad gzip stream: %v", meta.ErrSnapshotCorrupt, err)
		}
		return decodeJSON(raw)
	}
	return nil, fmt.Errorf("%s snapshots cannot be loaded back: export-only format", enc)
}

func decodeJSON(data []byte) (*meta.Snapshot, error) {
	var s meta.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", meta.ErrSnapshotCorrupt, err)
	}
	return &s, nil
}
