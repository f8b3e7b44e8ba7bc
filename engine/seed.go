package engine

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// NewSeed returns a random level seed, falling back to the clock if the system source fails
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
