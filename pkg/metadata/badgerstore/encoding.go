package badgerstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// ============================================================================
// Key Namespace
// ============================================================================
//
// Every record type owns one letter. Records, name index, order index and
// reference index use that letter followed by a suffix:
//
// Data Type          Key Format                       Value
// ===================================================================
// Directory          d:<id>                           seq (8 bytes BE) + JSON
// Directory name     dn:<parent>\x00<name>            id
// Directory order    do:<parent>\x00<seq BE>          id
// Directory ref      dr:<ref>\x00<id>                 (empty)
// File               f:<id>                           seq (8 bytes BE) + JSON
// File name          fn:<directory>\x00<name>         id
// File order         fo:<directory>\x00<seq BE>       id
// File ref           fr:<ref>\x00<id>                 (empty)
//
// The empty parent ("" = root) is a valid scope. Names and refs never contain
// NUL, so \x00 cleanly terminates the scope part of the composite keys.

const sep = "\x00"

// namespace builds the keys of one record type.
type namespace string

const (
	nsDirectory namespace = "d"
	nsFile      namespace = "f"
)

func (ns namespace) record(id string) []byte {
	return []byte(string(ns) + ":" + id)
}

func (ns namespace) name(parent, name string) []byte {
	return []byte(string(ns) + "n:" + parent + sep + name)
}

func (ns namespace) orderPrefix(parent string) []byte {
	return []byte(string(ns) + "o:" + parent + sep)
}

func (ns namespace) order(parent string, seq int64) []byte {
	key := ns.orderPrefix(parent)
	return binary.BigEndian.AppendUint64(key, uint64(seq))
}

func (ns namespace) refPrefix(ref string) []byte {
	return []byte(string(ns) + "r:" + ref + sep)
}

func (ns namespace) ref(ref, id string) []byte {
	return append(ns.refPrefix(ref), id...)
}

// encodeRecord stores the sequence ahead of the JSON body, since Seq is not
// part of the JSON representation.
func encodeRecord(seq int64, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	out := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(body)), uint64(seq))
	return append(out, body...), nil
}

func decodeRecord(data []byte, v any) (int64, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("failed to decode record: short value (%d bytes)", len(data))
	}
	seq := int64(binary.BigEndian.Uint64(data[:8]))
	if err := json.Unmarshal(data[8:], v); err != nil {
		return 0, fmt.Errorf("failed to decode record: %w", err)
	}
	return seq, nil
}
