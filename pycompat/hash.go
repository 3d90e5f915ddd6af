// Package pycompat reproduces CPython's string hashing and set iteration
// order.
//
// Tags and links are emitted in the order a CPython set would enumerate
// them, so downstream consumers comparing against bean-query output see the
// same strings. Both the hash and the set layout depend on the per-process
// hash secret, which is passed in explicitly as Keys.
package pycompat

import (
	"encoding/binary"
	"math/bits"
)

// Keys is the 128-bit SipHash secret of a CPython process.
type Keys struct {
	K0 uint64
	K1 uint64
}

// DefaultSeed is the PYTHONHASHSEED the default keys are derived from.
const DefaultSeed = 979

// DefaultKeys are the keys for DefaultSeed.
var DefaultKeys = KeysFromSeed(DefaultSeed)

// KeysFromSeed derives keys the way CPython does for PYTHONHASHSEED=seed.
// Seed 0 disables randomisation and yields all-zero keys.
func KeysFromSeed(seed uint32) Keys {
	if seed == 0 {
		return Keys{}
	}

	var secret [16]byte
	x := seed
	for i := range secret {
		x = x*214013 + 2531011
		secret[i] = byte(x >> 16)
	}

	return Keys{
		K0: binary.LittleEndian.Uint64(secret[:8]),
		K1: binary.LittleEndian.Uint64(secret[8:]),
	}
}

// Hash returns hash(s) as CPython computes it under keys.
func Hash(keys Keys, s string) int64 {
	if s == "" {
		return 0
	}

	h := int64(siphash13(keys.K0, keys.K1, encode(s)))
	if h == -1 {
		return -2
	}
	return h
}

// encode lays s out the way CPython stores str objects internally: one byte
// per code point when all fit in latin-1, two when all fit in the BMP, four
// otherwise. For ASCII this is identical to the UTF-8 bytes.
func encode(s string) []byte {
	maxRune := rune(0)
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return []byte(s)
	}

	runes := []rune(s)
	for _, r := range runes {
		if r > maxRune {
			maxRune = r
		}
	}

	switch {
	case maxRune < 0x100:
		out := make([]byte, len(runes))
		for i, r := range runes {
			out[i] = byte(r)
		}
		return out
	case maxRune < 0x10000:
		out := make([]byte, 2*len(runes))
		for i, r := range runes {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(r))
		}
		return out
	default:
		out := make([]byte, 4*len(runes))
		for i, r := range runes {
			binary.LittleEndian.PutUint32(out[4*i:], uint32(r))
		}
		return out
	}
}

// siphash13 mirrors Python/pyhash.c.
func siphash13(k0, k1 uint64, data []byte) uint64 {
	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	b := uint64(len(data)) << 56

	for len(data) >= 8 {
		m := binary.LittleEndian.Uint64(data)
		data = data[8:]
		v3 ^= m
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
		v0 ^= m
	}

	var t uint64
	for i := len(data) - 1; i >= 0; i-- {
		t = t<<8 | uint64(data[i])
	}
	b |= t

	v3 ^= b
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0 ^= b

	v2 ^= 0xff
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	return (v0 ^ v1) ^ (v2 ^ v3)
}

func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v2 += v3
	v1 = bits.RotateLeft64(v1, 13) ^ v0
	v3 = bits.RotateLeft64(v3, 16) ^ v2
	v0 = bits.RotateLeft64(v0, 32)

	v2 += v1
	v0 += v3
	v1 = bits.RotateLeft64(v1, 17) ^ v2
	v3 = bits.RotateLeft64(v3, 21) ^ v0
	v2 = bits.RotateLeft64(v2, 32)

	return v0, v1, v2, v3
}
