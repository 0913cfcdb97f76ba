// Package id mints the order and trade handles used by the simulator and
// the journal.
package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. Handles sort by creation time, so journals and
// logs list them in submission order.
func New() string {
	return ulid.Make().String()
}
