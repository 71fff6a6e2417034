package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/stork-ledger/common"
	"github.com/nspcc-dev/stork-ledger/contracts/ledger/ledgerconst"
)

// ContractRecord is a quota sheet of a single data-consuming contract.
type ContractRecord struct {
	// Transactions the contract may still consume. Negative value is a debt
	// left by settlement of an exhausted contract.
	TxQuotaRemaining int
	// Set on registration, never cleared.
	IsActive bool
}

// RegisterContract buys transaction quota for the contract with amount of
// GAS. It can be invoked only by the contract account itself. The deposit must
// exceed the minimal stake, and the contract must not be registered yet.
//
// It produces ContractCreated notification.
func RegisterContract(contractHash interop.Hash160, amount int) {
	if !isValidIdentity(contractHash) {
		panic(ledgerconst.ErrInvalidIdentity)
	}

	common.CheckWitness(contractHash)

	ctx := storage.GetContext()
	if amount <= common.GetInt(ctx, minStakeKey) {
		panic(ledgerconst.ErrInsufficientStake)
	}

	if getContract(ctx, contractHash).IsActive {
		panic(ledgerconst.ErrAlreadyRegistered)
	}

	takeDeposit(contractHash, amount)

	quota := amount / common.GetInt(ctx, costPerTxKey)
	putContract(ctx, contractHash, ContractRecord{
		TxQuotaRemaining: quota,
		IsActive:         true,
	})

	runtime.Notify("ContractCreated", contractHash, quota)
}

// FundContract buys additional quota for a registered contract with amount
// of GAS taken from the sender. Anyone can fund any contract, the sender must
// witness the transaction. Any outstanding debt is repaid first.
//
// It produces ContractFunded notification.
func FundContract(from, contractHash interop.Hash160, amount int) {
	if amount <= 0 {
		panic(ledgerconst.ErrZeroDeposit)
	}

	if !isValidIdentity(from) || !isValidIdentity(contractHash) {
		panic(ledgerconst.ErrInvalidIdentity)
	}

	common.CheckWitness(from)

	ctx := storage.GetContext()
	rec := getContract(ctx, contractHash)
	if !rec.IsActive {
		panic(ledgerconst.ErrNotRegistered)
	}

	takeDeposit(from, amount)

	added := amount / common.GetInt(ctx, costPerTxKey)
	rec.TxQuotaRemaining += added
	putContract(ctx, contractHash, rec)

	runtime.Notify("ContractFunded", contractHash, added, rec.TxQuotaRemaining)
}

// GetContract returns the quota record of the contract. Unknown contracts are
// returned as an empty inactive record.
func GetContract(contractHash interop.Hash160) ContractRecord {
	return getContract(storage.GetReadOnlyContext(), contractHash)
}

func getContract(ctx storage.Context, contractHash interop.Hash160) ContractRecord {
	data := storage.Get(ctx, append([]byte{contractPrefix}, contractHash...))
	if data != nil {
		return std.Deserialize(data.([]byte)).(ContractRecord)
	}

	return ContractRecord{}
}

func putContract(ctx storage.Context, contractHash interop.Hash160, rec ContractRecord) {
	common.SetSerialized(ctx, append([]byte{contractPrefix}, contractHash...), rec)
}
