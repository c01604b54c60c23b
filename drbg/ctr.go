package drbg

import (
	"crypto/aes"
	"sync"

	"github.com/coreentropy/ccrng/errs"
)

// CTR is an AES-256-CTR-DRBG with a block-cipher derivation function,
// modeled on NIST SP 800-90A §10.2.1 and grounded on the state-swap
// and counter-increment structure of
// sixafter-nanoid/x/crypto/ctrdrbg/aes_ctr_drbg.go, adapted to expose
// an explicit Reseed-with-additional-input and a reseed counter.
type CTR struct {
	mu sync.Mutex

	key [32]byte
	v   [aes.BlockSize]byte

	reseedInterval  uint64
	reseedCounter   uint64
	seedNBytes      int
	maxRequestBytes int

	done bool
}

// NewCTR constructs an uninstantiated CTR-DRBG. seedNBytes is the
// length Reseed/Init expect (32, matching the Fortuna/kernel wiring's
// seed size); reseedInterval bounds the number of Generate calls
// before ReseedRequired reports true.
func NewCTR(seedNBytes int, reseedInterval uint64) *CTR {
	return &CTR{
		seedNBytes:      seedNBytes,
		maxRequestBytes: MaxRequestNBytes,
		reseedInterval:  reseedInterval,
	}
}

func (c *CTR) Info() Info {
	return Info{
		SeedNBytes:       c.seedNBytes,
		MaxRequestNBytes: c.maxRequestBytes,
		ReseedInterval:   c.reseedInterval,
	}
}

// update is the CTR_DRBG_Update primitive (SP 800-90A §10.2.1.2):
// derive seedlen bytes of keystream by running the generator forward
// and XOR the result with providedData (which may be shorter than
// seedlen; it is treated as zero-padded), then split the result into
// the new key and V.
func (c *CTR) update(providedData []byte) error {
	const seedLen = 32 + aes.BlockSize
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return err
	}

	var temp [seedLen]byte
	for off := 0; off < seedLen; off += aes.BlockSize {
		incV(&c.v)
		block.Encrypt(temp[off:off+aes.BlockSize], c.v[:])
	}

	for i := 0; i < seedLen && i < len(providedData); i++ {
		temp[i] ^= providedData[i]
	}

	copy(c.key[:], temp[:32])
	copy(c.v[:], temp[32:])
	return nil
}

// incV increments the 16-byte counter block V as a big-endian integer.
func incV(v *[aes.BlockSize]byte) {
	for i := len(v) - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}

func (c *CTR) Init(seed, personalization []byte) error {
	if len(seed) != c.seedNBytes {
		return errs.New(errs.Config, "drbg.CTR.Init", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seedMaterial, err := derive(append(append([]byte{}, seed...), personalization...), 32+aes.BlockSize)
	if err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Init", err)
	}

	c.key = [32]byte{}
	c.v = [aes.BlockSize]byte{}
	if err := c.update(seedMaterial); err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Init", err)
	}
	c.reseedCounter = 1
	c.done = false
	return nil
}

func (c *CTR) Reseed(seed, additional []byte) error {
	if len(seed) != c.seedNBytes {
		return errs.New(errs.Config, "drbg.CTR.Reseed", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seedMaterial, err := derive(append(append([]byte{}, seed...), additional...), 32+aes.BlockSize)
	if err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Reseed", err)
	}
	if err := c.update(seedMaterial); err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Reseed", err)
	}
	c.reseedCounter = 1
	return nil
}

func (c *CTR) Generate(n int, out []byte, additional []byte) error {
	if n > c.maxRequestBytes {
		return errs.New(errs.Parameter, "drbg.CTR.Generate", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reseedCounter > c.reseedInterval {
		return ErrReseedRequired
	}

	var additionalSeed []byte
	if len(additional) > 0 {
		derived, err := derive(additional, 32+aes.BlockSize)
		if err != nil {
			return errs.New(errs.Internal, "drbg.CTR.Generate", err)
		}
		additionalSeed = derived
		if err := c.update(additionalSeed); err != nil {
			return errs.New(errs.Internal, "drbg.CTR.Generate", err)
		}
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Generate", err)
	}

	full := n / aes.BlockSize
	rem := n % aes.BlockSize
	off := 0
	for i := 0; i < full; i++ {
		incV(&c.v)
		block.Encrypt(out[off:off+aes.BlockSize], c.v[:])
		off += aes.BlockSize
	}
	if rem > 0 {
		incV(&c.v)
		var last [aes.BlockSize]byte
		block.Encrypt(last[:], c.v[:])
		copy(out[off:off+rem], last[:rem])
	}

	if err := c.update(additionalSeed); err != nil {
		return errs.New(errs.Internal, "drbg.CTR.Generate", err)
	}
	c.reseedCounter++
	return nil
}

func (c *CTR) ReseedRequired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reseedCounter > c.reseedInterval
}

func (c *CTR) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.key = [32]byte{}
	c.v = [aes.BlockSize]byte{}
	c.done = true
}
