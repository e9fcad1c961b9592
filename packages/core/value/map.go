package value

import (
	"bytes"
)

// Member is one key/value pair of a Map
type Member struct {
	Key   string
	Value Value
}

// Map is a JSON object that remembers key insertion order.
// A nil *Map behaves as an empty object for reads.
type Map struct {
	members []Member
	index   map[string]int
}

func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Set adds key or replaces its value. A replaced key keeps its first position.
func (m *Map) Set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.members[i].Value = v
		return
	}
	m.index[key] = len(m.members)
	m.members = append(m.members, Member{Key: key, Value: v})
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.members[i].Value, true
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.members)
}

func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	if m == nil {
		return keys
	}
	for _, member := range m.members {
		keys = append(keys, member.Key)
	}
	return keys
}

// Members returns a copy of the pairs in insertion order
func (m *Map) Members() []Member {
	if m == nil {
		return nil
	}
	out := make([]Member, len(m.members))
	copy(out, m.members)
	return out
}

// StringMap flattens values to their literal string form.
func (m *Map) StringMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, member := range m.members {
		out[member.Key] = member.Value.String()
	}
	return out
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Map) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeObject(string(data))
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func (m *Map) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	if m != nil {
		for i, member := range m.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, member.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := member.Value.writeJSON(buf); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}
