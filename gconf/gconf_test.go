package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	var r ledger.Rent
	assert.IsErr(t, errors.ErrNotFound, Load(db, "rent", &r))

	want := ledger.Rent{LamportsPerByteYear: 7, ExemptionThreshold: 2}
	assert.Nil(t, Save(db, "rent", &want))
	assert.Nil(t, Load(db, "rent", &r))
	assert.Equal(t, want, r)

	raw, err := db.Get([]byte("_c:rent"))
	assert.Nil(t, err)
	if raw == nil {
		t.Fatal("configuration not stored under its key")
	}

	assert.IsErr(t, errors.ErrEmpty, Save(db, "rent", &ledger.Rent{}))
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    ledger.Rent
	}{
		"valid": {
			genesis: `{"conf": {"rent": {"lamports_per_byte_year": 3, "exemption_threshold": 2}}}`,
			want:    ledger.Rent{LamportsPerByteYear: 3, ExemptionThreshold: 2},
		},
		"missing package": {
			genesis: `{"conf": {"other": {}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			genesis: `{"conf": {"rent": {"lamports_per_byte_year": 3}}}`,
			wantErr: errors.ErrEmpty,
		},
		"malformed": {
			genesis: `{"conf": {"rent": {"lamports_per_byte_year": "many"}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts ledger.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			var r ledger.Rent
			err := InitConfig(db, opts, "rent", &r)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			var got ledger.Rent
			assert.Nil(t, Load(db, "rent", &got))
			assert.Equal(t, tc.want, got)
		})
	}
}
