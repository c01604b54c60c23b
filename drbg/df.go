package drbg

import (
	"crypto/aes"
	"encoding/binary"
)

// derive (below) implements the NIST SP 800-90A §10.4.2
// Block_Cipher_df construction over AES-256: it compresses an
// arbitrary-length input string (seed material plus optional
// additional input) down to exactly returnBytes of output, using a
// fixed internal key so the construction itself contributes no
// secrecy — only the entropy already present in input does.
//
// keyLen and outLen are fixed to AES-256 (32-byte key, 16-byte
// block) since that is the only cipher this package's CTR-DRBG uses.
const (
	dfKeyLen = 32
	dfOutLen = aes.BlockSize
)

// dfFixedKey is the BCC chaining key used internally by the
// derivation function. It is a public constant, not a secret — the
// NIST construction derives its security from the entropy of the
// input string, not from this key (SP 800-90A §10.4.2 step 1).
var dfFixedKey = [dfKeyLen]byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
}

// bcc is the BCC chaining function of SP 800-90A §10.4.3: CBC-MAC of
// data (already a multiple of the block size) under key, returning
// the final chaining block.
func bcc(key []byte, data []byte) ([dfOutLen]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return [dfOutLen]byte{}, err
	}
	var chain [dfOutLen]byte
	for off := 0; off < len(data); off += dfOutLen {
		var blockIn [dfOutLen]byte
		for i := 0; i < dfOutLen; i++ {
			blockIn[i] = chain[i] ^ data[off+i]
		}
		block.Encrypt(chain[:], blockIn[:])
	}
	return chain, nil
}

// derive implements Block_Cipher_df(inputString, returnBytes):
// compresses inputString into exactly returnBytes of pseudorandom
// output. returnBytes must be a multiple of nothing in particular;
// any length is supported via the final output-generation loop.
func derive(inputString []byte, returnBytes int) ([]byte, error) {
	l := len(inputString)

	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(l))
	binary.BigEndian.PutUint32(header[4:8], uint32(returnBytes))

	s := make([]byte, 0, 8+l+1+dfOutLen)
	s = append(s, header[:]...)
	s = append(s, inputString...)
	s = append(s, 0x80)
	for len(s)%dfOutLen != 0 {
		s = append(s, 0x00)
	}

	need := dfKeyLen + dfOutLen
	temp := make([]byte, 0, need+dfOutLen)
	for i := uint32(0); len(temp) < need; i++ {
		block := make([]byte, dfOutLen+len(s))
		binary.BigEndian.PutUint32(block[0:4], i)
		copy(block[dfOutLen:], s)

		chain, err := bcc(dfFixedKey[:], block)
		if err != nil {
			return nil, err
		}
		temp = append(temp, chain[:]...)
	}
	temp = temp[:need]

	k := temp[:dfKeyLen]
	x := make([]byte, dfOutLen)
	copy(x, temp[dfKeyLen:])

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, returnBytes+dfOutLen)
	for len(out) < returnBytes {
		next := make([]byte, dfOutLen)
		block.Encrypt(next, x)
		out = append(out, next...)
		x = next
	}
	return out[:returnBytes], nil
}
