package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, which is what lets the durable store pick the most
// recently issued record by key order alone.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
