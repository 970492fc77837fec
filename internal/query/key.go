// Package query implements the key-addressed cache and refetch layer
// between the views and the API client. Reads subscribe to a key and are
// served cached data while a background refetch is in flight; writes
// invalidate declared key prefixes, forcing dependent reads to refetch.
package query

import (
	"strconv"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// Key identifies one cached query result: an ordered tuple of resource
// kind plus qualifiers (ids, sub-resources, folded filters). Structurally
// equal keys share one cache entry and one in-flight request.
type Key []string

// NewKey builds a key from a resource kind and qualifiers.
func NewKey(resource string, qualifiers ...string) Key {
	return append(Key{resource}, qualifiers...)
}

// String serializes the key for map indexing and persistence. Parts are
// joined with a unit separator so ids containing "/" cannot collide.
func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

// foldFilter reduces an arbitrary filter struct to a stable qualifier.
// Structurally equal filters fold to the same string.
func foldFilter(filter any) string {
	h, err := hashstructure.Hash(filter, hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing only fails on unhashable kinds, which filter structs
		// never contain. Fall back to a shared bucket rather than panic.
		return "filter"
	}
	return strconv.FormatUint(h, 16)
}
