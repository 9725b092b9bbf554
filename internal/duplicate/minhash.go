package duplicate

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

const (
	windowSize   = 5  // W: sliding token-window length shingles are drawn from
	signatureLen = 128 // K: MinHash signature length
	lshBands     = 32  // b
	lshRows      = 4   // r, b*r == K
)

// hashCoeffs are the deterministic (a, b) pairs for K independent linear
// permutations over uint64 hash space, seeded once so signatures are
// reproducible across runs and machines without depending on a
// cryptographic PRNG.
var hashCoeffs = generateCoeffs()

func generateCoeffs() [signatureLen][2]uint64 {
	r := rand.New(rand.NewSource(0x5ac1e5fa))
	var coeffs [signatureLen][2]uint64
	for i := range coeffs {
		coeffs[i][0] = r.Uint64()<<1 | 1 // keep odd, avoids degenerate a=0
		coeffs[i][1] = r.Uint64()
	}
	return coeffs
}

// shingles hashes every W-token sliding window of tokens into a 64-bit
// fingerprint set (duplicates collapse naturally via the map).
func shingles(tokens []string) map[uint64]struct{} {
	set := make(map[uint64]struct{})
	if len(tokens) < windowSize {
		if len(tokens) == 0 {
			return set
		}
		set[hashWindow(tokens)] = struct{}{}
		return set
	}
	for i := 0; i+windowSize <= len(tokens); i++ {
		set[hashWindow(tokens[i:i+windowSize])] = struct{}{}
	}
	return set
}

func hashWindow(window []string) uint64 {
	h := xxhash.New()
	for _, tok := range window {
		h.WriteString(tok)
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// signature computes a K-length MinHash signature over a shingle set.
func signature(shingleSet map[uint64]struct{}) [signatureLen]uint64 {
	var sig [signatureLen]uint64
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for h := range shingleSet {
		for i, c := range hashCoeffs {
			permuted := c[0]*h + c[1]
			if permuted < sig[i] {
				sig[i] = permuted
			}
		}
	}
	return sig
}

// bandKeys splits a signature into b bands of r rows each and hashes every
// band independently, so two files sharing any one band's key are LSH
// candidates for the same clone group.
func bandKeys(sig [signatureLen]uint64) [lshBands]uint64 {
	var keys [lshBands]uint64
	for b := 0; b < lshBands; b++ {
		h := xxhash.New()
		for r := 0; r < lshRows; r++ {
			idx := b*lshRows + r
			var buf [8]byte
			putUint64(buf[:], sig[idx])
			h.Write(buf[:])
		}
		keys[b] = h.Sum64()
	}
	return keys
}

func putUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// estimatedJaccard returns the fraction of signature positions that agree,
// an unbiased estimator of the true Jaccard similarity of the underlying
// shingle sets.
func estimatedJaccard(a, b [signatureLen]uint64) float64 {
	agree := 0
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
	}
	return float64(agree) / float64(signatureLen)
}
