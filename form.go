package bodyenc

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Form holds decoded application/x-www-form-urlencoded data. Unlike
// url.Values it remembers the order in which keys were first seen and keeps
// every value of a repeated key in wire order.
type Form struct {
	keys []string
	vals map[string][][]byte
}

// ParseForm decodes an application/x-www-form-urlencoded body. The body is
// split on "&" (empty segments from leading, trailing or doubled separators
// are ignored); each segment is split on its first "=" into key and value,
// a segment with no "=" being a key with an empty value; keys and values are
// percent-decoded with space-as-plus. ParseForm is lenient and never fails:
// malformed percent escapes decode to their literal bytes.
func ParseForm(body []byte) *Form {
	f := &Form{vals: make(map[string][][]byte)}
	for len(body) > 0 {
		segment := body
		if i := bytes.IndexByte(body, '&'); i >= 0 {
			segment, body = body[:i], body[i+1:]
		} else {
			body = nil
		}
		if len(segment) == 0 {
			continue
		}

		key := segment
		var value []byte
		if i := bytes.IndexByte(segment, '='); i >= 0 {
			key, value = segment[:i], segment[i+1:]
		}
		f.Add(string(PercentDecode(key)), PercentDecode(value))
	}
	return f
}

// Add appends value to the list for key, registering the key on first use.
func (f *Form) Add(key string, value []byte) {
	if f.vals == nil {
		f.vals = make(map[string][][]byte)
	}
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = append(f.vals[key], value)
}

// Get returns the first value for key, or nil when the key is absent.
func (f *Form) Get(key string) []byte {
	vs := f.vals[key]
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Values returns all values for key in the order they were added.
func (f *Form) Values(key string) [][]byte {
	return f.vals[key]
}

// Keys returns the keys in first-seen order.
func (f *Form) Keys() []string {
	return f.keys
}

// Len returns the number of distinct keys.
func (f *Form) Len() int {
	return len(f.keys)
}

// Pair is a single key/value pair of a form body.
type Pair struct {
	Key   string
	Value string
}

// Pairs is the canonical ordered-pairs representation of a form body. The
// three accepted input shapes (explicit pair list, single-valued map,
// multi-valued map) all normalise to Pairs before encoding.
type Pairs []Pair

// PairList returns pairs as given, preserving order and duplicate keys.
func PairList(pairs ...Pair) Pairs {
	return Pairs(pairs)
}

// SingleValued normalises a single-valued map to Pairs, one pair per key.
// Keys are emitted in sorted order so the encoding is deterministic. Values
// may be any scalar accepted by EncodeForm.
func SingleValued(m map[string]any) Pairs {
	pairs := make(Pairs, 0, len(m))
	for _, key := range sortedKeys(m) {
		pairs = append(pairs, Pair{Key: key, Value: scalarString(m[key])})
	}
	return pairs
}

// MultiValued normalises a multi-valued map to Pairs: for each key, in
// sorted order, one pair per value in that key's list order, so all of a
// key's pairs are contiguous.
func MultiValued(m map[string][]any) Pairs {
	var pairs Pairs
	for _, key := range sortedKeys(m) {
		for _, v := range m[key] {
			pairs = append(pairs, Pair{Key: key, Value: scalarString(v)})
		}
	}
	return pairs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EncodeForm renders pairs as an application/x-www-form-urlencoded body:
// percent-encoded key=value pairs, space encoded as "+", joined by "&".
// Output order follows the pair order, so the encoding is stable.
func EncodeForm(pairs Pairs) []byte {
	if len(pairs) == 0 {
		return []byte{}
	}

	var b bytes.Buffer
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.Write(PercentEncode([]byte(p.Key), true))
		b.WriteByte('=')
		b.Write(PercentEncode([]byte(p.Value), true))
	}
	return b.Bytes()
}

// scalarString renders a scalar form value as its string form. Non-string
// scalars (integers, floats, booleans) are stringified the way they appear
// on the wire; any other type is a caller error.
func scalarString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		panic(fmt.Sprintf("bodyenc: unsupported form value type %T", v))
	}
}
