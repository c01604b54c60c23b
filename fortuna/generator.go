package fortuna

import (
	"crypto/aes"
	"crypto/cipher"
)

// GenerateMaxNBytes is the hard per-call cap for Ctx.Generate. Callers
// that exceed it trigger a fatal invariant violation,
// not an error return.
const GenerateMaxNBytes = 1 << 20

// generator is the AES-256-CTR core used to turn a 32-byte key and a
// 16-byte counter into keystream. ctr is treated as a 16-byte
// big-endian value: the leading 4 bytes are a nonce region this
// package never mutates, reserved per the Fortuna-CTR convention;
// bytes [4:12] are the 8-byte counter proper that incCounter advances
// once per call; the trailing 4 bytes are never changed by incCounter.
type generator struct {
	key [32]byte
	ctr [16]byte
}

var zeros [GenerateMaxNBytes]byte

// incCounter increments the 8-byte counter region ctr[4:12] as a
// single big-endian 64-bit counter. Bytes [0:4] are the nonce region
// and are never touched here; bytes [12:16] are reserved and likewise
// untouched.
func incCounter(ctr *[16]byte) {
	for i := 11; i >= 4; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			return
		}
	}
}

// generate produces n bytes of output under (g.key, g.ctr), first
// rekeying g.key from the same keystream so that the key used to
// produce out is never reused on a later call.
func (g *generator) generate(n int, out []byte) error {
	block, err := aes.NewCipher(g.key[:])
	if err != nil {
		return err
	}
	stream := cipher.NewCTR(block, g.ctr[:])

	var newKey [32]byte
	stream.XORKeyStream(newKey[:], zeros[:32])

	stream.XORKeyStream(out[:n], zeros[:n])

	g.key = newKey
	incCounter(&g.ctr)
	return nil
}
