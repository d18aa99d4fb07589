package toolchain

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш содержимого.
type Digest [32]byte

// Combine строит пакетный хеш: H( own || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным.
func Combine(own Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(own[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
