package domain

import (
	"github.com/awnumar/memguard"
)

// Zero wipes plaintext key material once it is no longer needed.
func Zero(b []byte) {
	if len(b) > 0 {
		memguard.WipeBytes(b)
	}
}
