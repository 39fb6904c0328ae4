package ledger

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger/errors"
)

// AccountStorageOverhead is the number of bytes charged for every account
// on top of its data.
const AccountStorageOverhead = 128

// Rent defines how many lamports an account must hold to remain on the
// ledger.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	// ExemptionThreshold is the number of years of rent an account must
	// hold to be exempt from paying it.
	ExemptionThreshold uint64 `json:"exemption_threshold"`
}

// DefaultRent is used when no rent was configured.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the lamports an account with given data length
// must hold to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

// IsExempt returns true if given balance is enough for an account of
// given data length.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

// Validate returns an error if the configuration is unusable.
func (r *Rent) Validate() error {
	if r.ExemptionThreshold == 0 {
		return errors.Field("ExemptionThreshold", errors.ErrEmpty, "required")
	}
	return nil
}

// Marshal serializes the rent as held by the rent sysvar account.
func (r *Rent) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint64(r.LamportsPerByteYear, bin.LE); err != nil {
		return nil, errors.Wrap(err, "lamports per byte year")
	}
	if err := enc.WriteUint64(r.ExemptionThreshold, bin.LE); err != nil {
		return nil, errors.Wrap(err, "exemption threshold")
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the rent from the rent sysvar account data.
func (r *Rent) Unmarshal(raw []byte) error {
	dec := bin.NewBinDecoder(raw)
	perByte, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "lamports per byte year")
	}
	threshold, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "exemption threshold")
	}
	r.LamportsPerByteYear = perByte
	r.ExemptionThreshold = threshold
	return nil
}
