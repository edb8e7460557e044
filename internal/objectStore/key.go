package objectStore

import (
	"strings"
	"unicode"
)

// OwnerKey removes every whitespace rune from owner. All keys of one owner
// share this prefix, so it must be computed the same way everywhere.
func OwnerKey(owner string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, owner)
}

// BuildKey returns the object key of file name owned by owner. Names are not
// validated here.
func BuildKey(owner, name string) string {
	return OwnerKey(owner) + "/" + name
}
