package app

import (
	"bytes"
	"math/bits"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// invokeContext implements ledger.InvokeContext for a single instruction.
type invokeContext struct {
	rt        *Runtime
	st        *txState
	programID ledger.Pubkey
	data      []byte
	depth     int
	infos     []*ledger.AccountInfo

	// unique account keys of the instruction, in order of appearance
	keys     []ledger.Pubkey
	writable map[ledger.Pubkey]bool
	signer   map[ledger.Pubkey]bool
	// pre is the state the program is accountable for
	pre map[ledger.Pubkey]*ledger.Account
}

var _ ledger.InvokeContext = (*invokeContext)(nil)

func (ic *invokeContext) ProgramID() ledger.Pubkey        { return ic.programID }
func (ic *invokeContext) Data() []byte                    { return ic.data }
func (ic *invokeContext) Accounts() []*ledger.AccountInfo { return ic.infos }
func (ic *invokeContext) Rent() ledger.Rent               { return ic.st.rent }

func (ic *invokeContext) Log(format string, args ...interface{}) {
	ic.st.log("Program log: "+format, args...)
}

// Invoke executes an instruction of another program with the privileges
// of the caller. A signer seed set grants the signer privilege to the
// address it derives under the calling program.
func (ic *invokeContext) Invoke(ctx ledger.Context, ix ledger.Instruction, signerSeeds ...[][]byte) error {
	if ic.depth+1 > MaxInvokeDepth {
		return errors.Wrapf(errors.ErrState, "max invoke depth %d reached", MaxInvokeDepth)
	}

	derived := make(map[ledger.Pubkey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := ledger.CreateProgramAddress(seeds, ic.programID)
		if err != nil {
			return errors.Wrapf(errors.ErrMissingSignature, "invalid signer seeds: %s", err)
		}
		derived[addr] = true
	}

	privs := make([]privilege, len(ix.Accounts))
	for i, m := range ix.Accounts {
		writable, ok := ic.writable[m.Pubkey]
		if !ok {
			return errors.Wrapf(errors.ErrNotEnoughAccounts, "account %s not available to %s", m.Pubkey, ic.programID)
		}
		if m.IsWritable && !writable {
			return errors.Wrapf(errors.ErrReadonlyAccount, "account %s writable privilege escalated", m.Pubkey)
		}
		if m.IsSigner && !ic.signer[m.Pubkey] && !derived[m.Pubkey] {
			return errors.Wrapf(errors.ErrMissingSignature, "account %s signer privilege escalated", m.Pubkey)
		}
		privs[i] = privilege{signer: m.IsSigner, writable: m.IsWritable}
	}

	// the caller is accountable for changes made so far, the callee for
	// its own
	if err := ic.verify(); err != nil {
		return err
	}
	if err := ic.rt.process(ctx, ic.st, ix, privs, ic.depth+1); err != nil {
		return err
	}
	ic.snapshot()
	return nil
}

// snapshot records the current state of all instruction accounts.
func (ic *invokeContext) snapshot() {
	ic.pre = make(map[ledger.Pubkey]*ledger.Account, len(ic.keys))
	for _, key := range ic.keys {
		ic.pre[key] = ic.st.accounts[key].Clone()
	}
}

// verify ensures that all changes made since the last snapshot were
// allowed for the executing program.
func (ic *invokeContext) verify() error {
	var preSum, postSum uint64
	for _, key := range ic.keys {
		pre, post := ic.pre[key], ic.st.accounts[key]
		if err := ic.checkAccount(key, pre, post); err != nil {
			return err
		}

		var carry uint64
		preSum, carry = bits.Add64(preSum, pre.Lamports, 0)
		if carry != 0 {
			return errors.Wrap(errors.ErrOverflow, "lamports before instruction")
		}
		postSum, carry = bits.Add64(postSum, post.Lamports, 0)
		if carry != 0 {
			return errors.Wrap(errors.ErrOverflow, "lamports after instruction")
		}
	}
	if preSum != postSum {
		return errors.Wrapf(errors.ErrUnbalancedInstruction, "lamports before %d, after %d", preSum, postSum)
	}
	return nil
}

func (ic *invokeContext) checkAccount(key ledger.Pubkey, pre, post *ledger.Account) error {
	if pre.Equal(post) {
		return nil
	}
	if !ic.writable[key] {
		return errors.Wrapf(errors.ErrReadonlyAccount, "account %s modified", key)
	}
	if pre.Executable || post.Executable {
		return errors.Wrapf(errors.ErrReadonlyAccount, "executable account %s modified", key)
	}

	owned := pre.Owner == ic.programID
	if pre.Owner != post.Owner && (!owned || !isZeroed(post.Data)) {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "account %s reassigned by %s", key, ic.programID)
	}
	if !owned && !bytes.Equal(pre.Data, post.Data) {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "account %s data modified by %s", key, ic.programID)
	}
	if !owned && post.Lamports < pre.Lamports {
		return errors.Wrapf(errors.ErrInvalidAccountOwner, "account %s debited by %s", key, ic.programID)
	}
	if post.Lamports > 0 && len(post.Data) > 0 && !ic.st.rent.IsExempt(post.Lamports, len(post.Data)) {
		return errors.Wrapf(errors.ErrNotRentExempt, "account %s holds %d lamports, requires %d",
			key, post.Lamports, ic.st.rent.MinimumBalance(len(post.Data)))
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
