package cache

import "strings"

const keyDelimiter = ":"

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key is a structured composite cache key. Parts are escaped before they
// are joined, so ("a:b", "c") and ("a", "b:c") never collide.
type Key struct {
	Namespace string
	Parts     []string
}

func NewKey(namespace string, parts ...string) Key {
	return Key{Namespace: namespace, Parts: parts}
}

// String renders namespace:part1:part2...
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(keyEscaper.Replace(k.Namespace))
	for _, p := range k.Parts {
		b.WriteString(keyDelimiter)
		b.WriteString(keyEscaper.Replace(p))
	}
	return b.String()
}

// ParseKey reverses String. It reports false for keys without a namespace.
func ParseKey(s string) (Key, bool) {
	if s == "" {
		return Key{}, false
	}
	raw := strings.Split(s, keyDelimiter)
	k := Key{Namespace: unescape(raw[0])}
	for _, p := range raw[1:] {
		k.Parts = append(k.Parts, unescape(p))
	}
	return k, true
}

func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return strings.NewReplacer("%3A", ":", "%25", "%").Replace(s)
}
