package escrow

import (
	"github.com/iov-one/ledger"
)

// InitEscrowKeys are the addresses a client provides to open an escrow.
// Record and vault addresses are derived.
type InitEscrowKeys struct {
	Authority            ledger.Pubkey
	SellMint             ledger.Pubkey
	BuyMint              ledger.Pubkey
	AuthoritySellAccount ledger.Pubkey
	AuthorityBuyAccount  ledger.Pubkey
}

// ExchangeKeys are the addresses a client provides to take an escrow.
type ExchangeKeys struct {
	Authority           ledger.Pubkey
	Taker               ledger.Pubkey
	SellMint            ledger.Pubkey
	BuyMint             ledger.Pubkey
	TakerSellAccount    ledger.Pubkey
	TakerBuyAccount     ledger.Pubkey
	AuthorityBuyAccount ledger.Pubkey
}

// CancelKeys are the addresses a client provides to cancel an escrow.
type CancelKeys struct {
	Authority            ledger.Pubkey
	SellMint             ledger.Pubkey
	AuthoritySellAccount ledger.Pubkey
}

func addresses(programID, authority, sellMint ledger.Pubkey) (record, vault ledger.Pubkey, err error) {
	record, _, err = RecordAddress(programID, authority, sellMint)
	if err != nil {
		return record, vault, err
	}
	vault, err = VaultAddress(record, sellMint)
	return record, vault, err
}

func newInstruction(programID ledger.Pubkey, kind Kind, sell, buy uint64, accounts []ledger.AccountMeta) (ledger.Instruction, error) {
	data, err := (&Instruction{Kind: kind, SellAmount: sell, BuyAmount: buy}).Encode()
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{ProgramID: programID, Accounts: accounts, Data: data}, nil
}

// NewInitEscrowInstruction returns an instruction locking sellAmount of
// the sell mint in exchange for buyAmount of the buy mint.
func NewInitEscrowInstruction(programID ledger.Pubkey, k InitEscrowKeys, sellAmount, buyAmount uint64) (ledger.Instruction, error) {
	record, vault, err := addresses(programID, k.Authority, k.SellMint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(programID, InitEscrow, sellAmount, buyAmount, []ledger.AccountMeta{
		ledger.Meta(k.SellMint),
		ledger.Meta(k.BuyMint),
		ledger.Meta(k.Authority).WRITE().SIGNER(),
		ledger.Meta(k.AuthoritySellAccount).WRITE(),
		ledger.Meta(k.AuthorityBuyAccount),
		ledger.Meta(record).WRITE(),
		ledger.Meta(vault).WRITE(),
		ledger.Meta(ledger.RentSysvarID),
		ledger.Meta(ledger.SystemProgramID),
		ledger.Meta(ledger.TokenProgramID),
		ledger.Meta(ledger.AssociatedTokenProgramID),
	})
}

// NewExchangeInstruction returns an instruction taking the escrow of the
// authority for the sell mint. The amounts must equal the escrow terms.
func NewExchangeInstruction(programID ledger.Pubkey, k ExchangeKeys, sellAmount, buyAmount uint64) (ledger.Instruction, error) {
	record, vault, err := addresses(programID, k.Authority, k.SellMint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(programID, Exchange, sellAmount, buyAmount, []ledger.AccountMeta{
		ledger.Meta(k.Authority).WRITE(),
		ledger.Meta(k.Taker).WRITE().SIGNER(),
		ledger.Meta(k.BuyMint),
		ledger.Meta(k.SellMint),
		ledger.Meta(k.TakerSellAccount).WRITE(),
		ledger.Meta(k.TakerBuyAccount).WRITE(),
		ledger.Meta(k.AuthorityBuyAccount).WRITE(),
		ledger.Meta(record).WRITE(),
		ledger.Meta(vault).WRITE(),
		ledger.Meta(ledger.TokenProgramID),
	})
}

// NewCancelInstruction returns an instruction cancelling the escrow of
// the authority for the sell mint.
func NewCancelInstruction(programID ledger.Pubkey, k CancelKeys, sellAmount, buyAmount uint64) (ledger.Instruction, error) {
	record, vault, err := addresses(programID, k.Authority, k.SellMint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(programID, Cancel, sellAmount, buyAmount, []ledger.AccountMeta{
		ledger.Meta(k.Authority).WRITE().SIGNER(),
		ledger.Meta(k.SellMint),
		ledger.Meta(k.AuthoritySellAccount).WRITE(),
		ledger.Meta(record).WRITE(),
		ledger.Meta(vault).WRITE(),
		ledger.Meta(ledger.TokenProgramID),
	})
}
