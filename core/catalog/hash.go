package catalog

import metro "github.com/dgryski/go-metro"

const hashSeed = 0x9e3779b97f4a7c15

// hashKey hashes a name or tag. The empty string maps to 0, which the slot
// table treats as "anonymous" or "untagged"; no other key does.
func hashKey(s string) uint64 {
	if s == "" {
		return 0
	}
	h := metro.Hash64([]byte(s), hashSeed)
	if h == 0 {
		h = 1
	}
	return h
}
