// Package codec encodes page schemas as deterministic CBOR for revision
// snapshots and fingerprints them.
package codec

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"pagebuilder/internal/domain"
)

// encMode uses Core Deterministic Encoding (sorted map keys, smallest
// integer and float forms), so equal schemas encode to identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	// Props and settings hold map[string]any values; the CBOR default of
	// map[any]any would not survive a JSON round trip.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode normalizes s and encodes it.
func Encode(s domain.PageSchema) ([]byte, error) {
	data, err := encMode.Marshal(domain.Normalize(s))
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return data, nil
}

// Decode is the inverse of Encode. Integers inside props and settings come
// back as float64, matching what a JSON decode produces.
func Decode(data []byte) (domain.PageSchema, error) {
	var s domain.PageSchema
	if len(data) == 0 {
		return domain.Normalize(s), nil
	}
	if err := decMode.Unmarshal(data, &s); err != nil {
		return domain.PageSchema{}, fmt.Errorf("decode schema: %w", err)
	}
	for i := range s.Sections {
		normalizeSection(&s.Sections[i])
	}
	return domain.Normalize(s), nil
}

// Sum returns the hex blake3 digest of an encoded snapshot.
func Sum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint encodes s and returns its digest. Equal schemas have equal
// fingerprints.
func Fingerprint(s domain.PageSchema) (string, error) {
	data, err := Encode(s)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}

func normalizeSection(sec *domain.Section) {
	normalizeMap(sec.Settings)
	for i := range sec.Rows {
		row := &sec.Rows[i]
		normalizeMap(row.Settings)
		for j := range row.Columns {
			col := &row.Columns[j]
			normalizeMap(col.Settings)
			for k := range col.Components {
				normalizeMap(col.Components[k].Settings)
				normalizeMap(col.Components[k].Props)
			}
		}
	}
}

func normalizeMap(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case uint64:
		return float64(t)
	case int64:
		return float64(t)
	case map[string]any:
		normalizeMap(t)
		return t
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	}
	return v
}
