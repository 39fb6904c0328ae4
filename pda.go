package ledger

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/ledger/errors"
)

const (
	// MaxSeeds is the maximum number of seeds for an address derivation,
	// including the bump.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress computes the address derived from given seeds and
// program. The address is
//
//	sha256(seeds... || programID || "ProgramDerivedAddress")
//
// and is valid only if it is not a point on the ed25519 curve, which makes
// it impossible for anyone to hold a private key for it.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if err := checkSeeds(seeds, MaxSeeds); err != nil {
		return Pubkey{}, err
	}
	addr := hashProgramAddress(seeds, programID)
	if IsOnCurve(addr[:]) {
		return Pubkey{}, errors.Wrap(errors.ErrInput, "derived address is on the curve")
	}
	return addr, nil
}

// FindProgramAddress searches for a valid program address by appending a
// bump seed to given seeds, starting at 255 and counting down. It returns
// the first address that is off the curve together with its bump.
//
// ErrDerivationExhausted is returned if no bump yields a valid address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	// one slot is needed for the bump
	if err := checkSeeds(seeds, MaxSeeds-1); err != nil {
		return Pubkey{}, 0, err
	}

	bump := []byte{0}
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, bump)

	for b := 255; b > 0; b-- {
		bump[0] = uint8(b)
		addr := hashProgramAddress(withBump, programID)
		if !IsOnCurve(addr[:]) {
			return addr, uint8(b), nil
		}
	}
	return Pubkey{}, 0, errors.Wrapf(errors.ErrDerivationExhausted, "program %s", programID)
}

// IsOnCurve returns true if given bytes are a valid compressed ed25519
// point.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func checkSeeds(seeds [][]byte, max int) error {
	if len(seeds) > max {
		return errors.Wrapf(errors.ErrInput, "%d seeds, max %d", len(seeds), max)
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d is %d bytes long, max %d", i, len(s), MaxSeedLength)
		}
	}
	return nil
}

func hashProgramAddress(seeds [][]byte, programID Pubkey) Pubkey {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	return PubkeyFromBytes(h.Sum(nil))
}
