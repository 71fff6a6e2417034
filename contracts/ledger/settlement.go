package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/stork-ledger/common"
	"github.com/nspcc-dev/stork-ledger/contracts/ledger/ledgerconst"
)

// SettleNodeBatch adds counts[i] transactions to the node nodes[i]. It can be
// invoked only by the settlement authority. The whole batch is rejected if
// any entry is invalid or refers to an unregistered node.
func SettleNodeBatch(nodes []interop.Hash160, counts []int) {
	ctx := storage.GetContext()
	common.CheckSettlementWitness(getSettler(ctx))

	checkBatch(nodes, counts)
	for i := range nodes {
		if !getNode(ctx, nodes[i]).IsActive {
			panic(ledgerconst.ErrNotRegistered)
		}
	}

	for i := range nodes {
		rec := getNode(ctx, nodes[i])
		rec.TxCount += counts[i]
		putNode(ctx, nodes[i], rec)
	}
}

// SettleContractBatch charges counts[i] transactions from the quota of the
// contract contracts[i]. It can be invoked only by the settlement authority.
// The whole batch is rejected if any entry is invalid or refers to an
// unregistered contract.
//
// A contract whose remaining quota does not exceed the charged count is
// reported with ContractOutOfFund notification, but it is still charged and
// its quota may become negative. The batch always ends with BatchUpdate
// notification, which is clean only if no contract was reported.
func SettleContractBatch(batchID int, contracts []interop.Hash160, counts []int) {
	ctx := storage.GetContext()
	common.CheckSettlementWitness(getSettler(ctx))

	checkBatch(contracts, counts)
	for i := range contracts {
		if !getContract(ctx, contracts[i]).IsActive {
			panic(ledgerconst.ErrNotRegistered)
		}
	}

	clean := true
	for i := range contracts {
		rec := getContract(ctx, contracts[i])
		if rec.TxQuotaRemaining <= counts[i] {
			clean = false
			runtime.Notify("ContractOutOfFund", batchID, contracts[i])
		}

		rec.TxQuotaRemaining -= counts[i]
		putContract(ctx, contracts[i], rec)
	}

	runtime.Notify("BatchUpdate", batchID, clean)
}

func checkBatch(ids []interop.Hash160, counts []int) {
	if len(ids) != len(counts) {
		panic(ledgerconst.ErrLengthMismatch)
	}

	for i := range ids {
		if !isValidIdentity(ids[i]) {
			panic(ledgerconst.ErrInvalidIdentity)
		}
		if counts[i] < 0 {
			panic(ledgerconst.ErrNegativeCount)
		}
	}
}
