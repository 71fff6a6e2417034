package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/stork-ledger/common"
	"github.com/nspcc-dev/stork-ledger/contracts/ledger/ledgerconst"
)

const (
	adminKey     = "admin"
	settlerKey   = "settler"
	minStakeKey  = "minStake"
	costPerTxKey = "costPerTx"

	nodePrefix     = 'n'
	contractPrefix = 'c'

	zeroIdentity = "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"

	// pullKey exists only while the contract pulls a deposit, so that
	// OnNEP17Payment doesn't treat it as unsolicited.
	pullKey = "pull"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		admin     interop.Hash160
		settler   interop.Hash160
		minStake  int
		costPerTx int
	})

	if !isValidIdentity(args.admin) {
		panic("invalid admin: " + ledgerconst.ErrInvalidIdentity)
	}
	if !isValidIdentity(args.settler) {
		panic("invalid settlement authority: " + ledgerconst.ErrInvalidIdentity)
	}
	if args.minStake < 0 {
		panic(ledgerconst.ErrInvalidMinStake)
	}
	if args.costPerTx <= 0 {
		panic(ledgerconst.ErrInvalidCostPerTx)
	}

	ctx := storage.GetContext()
	storage.Put(ctx, adminKey, args.admin)
	storage.Put(ctx, settlerKey, args.settler)
	storage.Put(ctx, minStakeKey, args.minStake)
	storage.Put(ctx, costPerTxKey, args.costPerTx)

	runtime.Log("ledger contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the ledger administrator.
func Update(nefFile, manifest []byte, data any) {
	common.CheckAdminWitness(getAdmin(storage.GetReadOnlyContext()))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("ledger contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Deposits taken by the registration and funding methods are skipped, any
// other GAS transfer is accepted as is and produces Deposit notification.
// Nothing is credited to the sender in this case.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage(ledgerconst.ErrGASOnly)
	}

	ctx := storage.GetContext()
	if storage.Get(ctx, pullKey) != nil {
		storage.Delete(ctx, pullKey)
		return
	}

	runtime.Notify("Deposit", from, amount)
}

// MinStake returns the amount a deposit must exceed to register a node or
// a contract.
func MinStake() int {
	return common.GetInt(storage.GetReadOnlyContext(), minStakeKey)
}

// CostPerTx returns the price of a single transaction used to convert
// contract deposits into quota.
func CostPerTx() int {
	return common.GetInt(storage.GetReadOnlyContext(), costPerTxKey)
}

// StakeDuration returns the lock period of a new node stake in milliseconds.
func StakeDuration() int {
	return ledgerconst.StakeDuration
}

// SettlementAuthority returns the only account allowed to settle batches.
func SettlementAuthority() interop.Hash160 {
	return getSettler(storage.GetReadOnlyContext())
}

// Admin returns the account allowed to change ledger parameters.
func Admin() interop.Hash160 {
	return getAdmin(storage.GetReadOnlyContext())
}

// ChangeCostPerTx sets new transaction price. It can be invoked only by the
// ledger administrator. Quota granted before the change is kept as is.
//
// It produces NewCostPerTx notification.
func ChangeCostPerTx(value int) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(getAdmin(ctx))

	if value <= 0 {
		panic(ledgerconst.ErrInvalidCostPerTx)
	}

	storage.Put(ctx, costPerTxKey, value)
	runtime.Notify("NewCostPerTx", value)
}

// ChangeMinStake sets new minimal stake. It can be invoked only by the
// ledger administrator. Existing records are not affected.
//
// It produces NewMinStake notification.
func ChangeMinStake(value int) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(getAdmin(ctx))

	if value < 0 {
		panic(ledgerconst.ErrInvalidMinStake)
	}

	storage.Put(ctx, minStakeKey, value)
	runtime.Notify("NewMinStake", value)
}

func getAdmin(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, adminKey).(interop.Hash160)
}

func getSettler(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, settlerKey).(interop.Hash160)
}

// isValidIdentity checks that h is a 20-byte non-zero script hash.
func isValidIdentity(h interop.Hash160) bool {
	return len(h) == interop.Hash160Len && string(h) != zeroIdentity
}

// takeDeposit moves amount of GAS from the depositor to the contract account.
// The depositor's witness must be valid in the GAS contract context.
func takeDeposit(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	storage.Put(ctx, pullKey, 1)

	self := runtime.GetExecutingScriptHash()
	if !gas.Transfer(from, self, amount, nil) {
		panic(ledgerconst.ErrDepositFailed)
	}

	// No-op if OnNEP17Payment has already cleared it.
	storage.Delete(ctx, pullKey)
}
