package ledger

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentMinimumBalance(t *testing.T) {
	cases := map[string]struct {
		rent    Rent
		dataLen int
		want    uint64
	}{
		"empty account": {
			rent:    DefaultRent,
			dataLen: 0,
			want:    890880,
		},
		"token account": {
			rent:    DefaultRent,
			dataLen: 165,
			want:    2039280,
		},
		"free storage": {
			rent:    Rent{LamportsPerByteYear: 0, ExemptionThreshold: 2},
			dataLen: 165,
			want:    0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rent.MinimumBalance(tc.dataLen))
			assert.True(t, tc.rent.IsExempt(tc.want, tc.dataLen))
			if tc.want > 0 {
				assert.False(t, tc.rent.IsExempt(tc.want-1, tc.dataLen))
			}
		})
	}
}

func TestRentSerialization(t *testing.T) {
	r := Rent{LamportsPerByteYear: 10, ExemptionThreshold: 3}
	raw, err := r.Marshal()
	require.NoError(t, err)

	var got Rent
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, r, got)

	assert.True(t, errors.ErrInput.Is(got.Unmarshal(raw[:9])))
	assert.True(t, errors.ErrEmpty.Is((&Rent{}).Validate()))
}
