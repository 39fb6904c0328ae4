package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/system"
)

// Store keeps escrow records in accounts owned by the escrow program.
type Store struct {
	programID ledger.Pubkey
}

// NewStore returns the record store of given escrow program.
func NewStore(programID ledger.Pubkey) Store {
	return Store{programID: programID}
}

// Create allocates the record account at its derived address, funded by
// payer with the rent exempt minimum, and writes the record into it.
func (s Store) Create(ctx ledger.Context, ic ledger.InvokeContext, payer, info *ledger.AccountInfo, rec *EscrowRecord) error {
	if info.Owner == s.programID || len(info.Data) > 0 {
		return errors.Wrapf(errors.ErrRecordAlreadyExists, "record %s", info.Key)
	}
	if !info.IsSystemOwned() {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "record %s owned by %s", info.Key, info.Owner)
	}
	raw, err := rec.Marshal()
	if err != nil {
		return err
	}

	seeds := signerSeeds(rec.Authority, rec.SellMint, rec.Bump)
	required := ic.Rent().MinimumBalance(RecordSize)
	if info.IsUninitialized() {
		ix := system.NewCreateAccountInstruction(payer.Key, info.Key, required, RecordSize, s.programID)
		if err := ic.Invoke(ctx, ix, seeds); err != nil {
			return errors.Wrap(err, "create record")
		}
	} else {
		// lamports sent to the address beforehand must not block it
		if info.Lamports < required {
			ix := system.NewTransferInstruction(payer.Key, info.Key, required-info.Lamports)
			if err := ic.Invoke(ctx, ix); err != nil {
				return errors.Wrap(err, "fund record")
			}
		}
		if err := ic.Invoke(ctx, system.NewAllocateInstruction(info.Key, RecordSize), seeds); err != nil {
			return errors.Wrap(err, "allocate record")
		}
		if err := ic.Invoke(ctx, system.NewAssignInstruction(info.Key, s.programID), seeds); err != nil {
			return errors.Wrap(err, "assign record")
		}
	}

	copy(info.Data, raw)
	return nil
}

// Load decodes the open escrow record stored at info.
func (s Store) Load(info *ledger.AccountInfo) (*EscrowRecord, error) {
	if info.Owner != s.programID {
		if info.IsSystemOwned() {
			return nil, errors.Wrapf(errors.ErrRecordNotFound, "record %s", info.Key)
		}
		return nil, errors.Wrapf(errors.ErrInvalidAccountOwner, "record %s owned by %s", info.Key, info.Owner)
	}
	var rec EscrowRecord
	if err := rec.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(errors.ErrRecordNotFound, "record %s: %s", info.Key, err)
	}
	if !rec.IsInitialized {
		return nil, errors.Wrapf(errors.ErrRecordNotFound, "record %s", info.Key)
	}
	return &rec, nil
}

// Close removes the record and moves its deposit to dest. The emptied
// account is handed back to the system program and removed once the
// transaction completes.
func (s Store) Close(info, dest *ledger.AccountInfo) (uint64, error) {
	if _, err := s.Load(info); err != nil {
		return 0, err
	}
	refund := info.Lamports
	if dest.Lamports+refund < dest.Lamports {
		return 0, errors.Wrapf(errors.ErrOverflow, "credit %s", dest.Key)
	}
	dest.Lamports += refund
	info.Lamports = 0
	info.Data = nil
	info.Owner = ledger.SystemProgramID
	return refund, nil
}

// LoadRecord returns the open escrow of authority for sellMint directly
// from the ledger state. ErrRecordNotFound is returned if there is none.
func LoadRecord(db ledger.ReadOnlyKVStore, programID, authority, sellMint ledger.Pubkey) (ledger.Pubkey, *EscrowRecord, error) {
	addr, _, err := RecordAddress(programID, authority, sellMint)
	if err != nil {
		return addr, nil, err
	}
	acc, err := orm.NewAccountBucket().Get(db, addr)
	if err != nil {
		return addr, nil, err
	}
	rec, err := NewStore(programID).Load(&ledger.AccountInfo{Key: addr, Account: acc})
	return addr, rec, err
}
