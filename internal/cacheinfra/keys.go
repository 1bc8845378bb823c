package cacheinfra

import "strings"

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Key builds the flat key for an id inside a namespace.
func Key(namespace, id string) string {
	return namespace + KeySeparator + id
}

// SplitKey returns the namespace and id encoded in key.
func SplitKey(key string) (namespace, id string, ok bool) {
	return strings.Cut(key, KeySeparator)
}
