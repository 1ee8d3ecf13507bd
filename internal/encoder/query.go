package encoder

import (
	"net/url"
	"strings"
)

// Pair is a single query key/value.
type Pair struct {
	Key   string
	Value string
}

// Query is an ordered multiset of query pairs. Unlike url.Values it keeps
// insertion order across keys, which the wire encoding preserves.
type Query []Pair

// Add appends a pair.
func (q *Query) Add(key, value string) {
	*q = append(*q, Pair{Key: key, Value: value})
}

// Purge removes every pair for key. For deep-object keys, pairs named
// key[...] are removed as well.
func (q *Query) Purge(key string, deepObject bool) {
	prefix := key + "["
	out := (*q)[:0]
	for _, p := range *q {
		if p.Key == key || (deepObject && strings.HasPrefix(p.Key, prefix)) {
			continue
		}
		out = append(out, p)
	}
	*q = out
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// All returns every value for key in order.
func (q Query) All(key string) []string {
	var out []string
	for _, p := range q {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Clone returns an independent copy.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	out := make(Query, len(q))
	copy(out, q)
	return out
}

// Encode renders the pairs as application/x-www-form-urlencoded text in order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
