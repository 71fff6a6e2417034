package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/stork-ledger/common"
	"github.com/nspcc-dev/stork-ledger/contracts/ledger/ledgerconst"
)

// NodeRecord is a stake sheet of a single data-validating node.
type NodeRecord struct {
	// Total deposited stake.
	StakeAmount int
	// Time in milliseconds after which the stake may be withdrawn.
	StakeEndTime int
	// Transactions attributed to the node by settlement.
	TxCount int
	// Set on registration, never cleared.
	IsActive bool
}

// RegisterNode stakes amount of GAS for the node. It can be invoked only by
// the node itself. The deposit must exceed the minimal stake, and the node
// must not be registered yet.
//
// It produces NodeStaked notification.
func RegisterNode(node interop.Hash160, amount int) {
	if !isValidIdentity(node) {
		panic(ledgerconst.ErrInvalidIdentity)
	}

	common.CheckWitness(node)

	ctx := storage.GetContext()
	if amount <= common.GetInt(ctx, minStakeKey) {
		panic(ledgerconst.ErrInsufficientStake)
	}

	if getNode(ctx, node).IsActive {
		panic(ledgerconst.ErrAlreadyRegistered)
	}

	takeDeposit(node, amount)

	rec := NodeRecord{
		StakeAmount:  amount,
		StakeEndTime: runtime.GetTime() + ledgerconst.StakeDuration,
		TxCount:      0,
		IsActive:     true,
	}
	putNode(ctx, node, rec)

	runtime.Notify("NodeStaked", node, rec.StakeEndTime)
}

// ExtendNodeStake adds amount of GAS to the node stake and prolongs it by
// extraDays days counting from the current stake end or from now if the
// stake has already ended. It can be invoked only by the node itself.
//
// It produces NodeStakeExtended notification.
func ExtendNodeStake(node interop.Hash160, amount, extraDays int) {
	if amount <= 0 {
		panic(ledgerconst.ErrZeroDeposit)
	}

	if !isValidIdentity(node) {
		panic(ledgerconst.ErrInvalidIdentity)
	}

	if extraDays < 0 {
		panic(ledgerconst.ErrInvalidDuration)
	}

	common.CheckWitness(node)

	ctx := storage.GetContext()
	rec := getNode(ctx, node)
	if !rec.IsActive {
		panic(ledgerconst.ErrNotRegistered)
	}

	takeDeposit(node, amount)

	start := runtime.GetTime()
	if rec.StakeEndTime > start {
		start = rec.StakeEndTime
	}

	rec.StakeAmount += amount
	rec.StakeEndTime = start + extraDays*ledgerconst.Day
	putNode(ctx, node, rec)

	runtime.Notify("NodeStakeExtended", node, rec.StakeEndTime)
}

// GetNode returns the stake record of the node. Unknown nodes are returned as
// an empty inactive record.
func GetNode(node interop.Hash160) NodeRecord {
	return getNode(storage.GetReadOnlyContext(), node)
}

func getNode(ctx storage.Context, node interop.Hash160) NodeRecord {
	data := storage.Get(ctx, append([]byte{nodePrefix}, node...))
	if data != nil {
		return std.Deserialize(data.([]byte)).(NodeRecord)
	}

	return NodeRecord{}
}

func putNode(ctx storage.Context, node interop.Hash160, rec NodeRecord) {
	common.SetSerialized(ctx, append([]byte{nodePrefix}, node...), rec)
}
