package tests

import (
	"encoding/json"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/stork-ledger/common"
	"github.com/nspcc-dev/stork-ledger/contracts/ledger/ledgerconst"
	"github.com/nspcc-dev/stork-ledger/rpc/ledger"
	"github.com/stretchr/testify/require"
)

const ledgerPath = "../contracts/ledger"

type ledgerEnv struct {
	e       *neotest.Executor
	hash    util.Uint160
	admin   neotest.Signer
	settler neotest.Signer

	// invoker signed by the settlement authority
	settle *neotest.ContractInvoker
	// invoker signed by the administrator
	manage *neotest.ContractInvoker
}

func deployLedgerContract(t *testing.T, e *neotest.Executor, admin, settler util.Uint160, minStake, costPerTx int64) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, ledgerPath, path.Join(ledgerPath, "config.yml"))
	e.DeployContract(t, c, []any{admin, settler, minStake, costPerTx})
	return c.Hash
}

func newLedgerEnv(t *testing.T, minStake, costPerTx int64) *ledgerEnv {
	e := newExecutor(t)

	admin := e.NewAccount(t)
	settler := e.NewAccount(t)
	h := deployLedgerContract(t, e, admin.ScriptHash(), settler.ScriptHash(), minStake, costPerTx)

	return &ledgerEnv{
		e:       e,
		hash:    h,
		admin:   admin,
		settler: settler,
		settle:  e.NewInvoker(h, settler),
		manage:  e.NewInvoker(h, admin),
	}
}

// newParticipant creates a funded account and an invoker signed by it.
func (env *ledgerEnv) newParticipant(t *testing.T) (neotest.Signer, *neotest.ContractInvoker) {
	acc := env.e.NewAccount(t)
	return acc, env.e.NewInvoker(env.hash, acc)
}

func (env *ledgerEnv) node(t *testing.T, h util.Uint160) *ledger.NodeRecord {
	s, err := env.settle.TestInvoke(t, "getNode", h)
	require.NoError(t, err)

	var rec ledger.NodeRecord
	require.NoError(t, rec.FromStackItem(s.Pop().Item()))
	return &rec
}

func (env *ledgerEnv) contract(t *testing.T, h util.Uint160) *ledger.ContractRecord {
	s, err := env.settle.TestInvoke(t, "getContract", h)
	require.NoError(t, err)

	var rec ledger.ContractRecord
	require.NoError(t, rec.FromStackItem(s.Pop().Item()))
	return &rec
}

func (env *ledgerEnv) quota(t *testing.T, h util.Uint160) int64 {
	return env.contract(t, h).TxQuotaRemaining.Int64()
}

func (env *ledgerEnv) gasBalance(t *testing.T, h util.Uint160) int64 {
	gasInv := env.e.CommitteeInvoker(env.e.NativeHash(t, nativenames.Gas))
	s, err := gasInv.TestInvoke(t, "balanceOf", h)
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

// events returns notifications of the ledger contract thrown by the
// transaction.
func (env *ledgerEnv) events(t *testing.T, h util.Uint256) []state.NotificationEvent {
	aer := env.e.CheckHalt(t, h)

	var res []state.NotificationEvent
	for _, ev := range aer.Events {
		if ev.ScriptHash.Equals(env.hash) {
			res = append(res, ev)
		}
	}
	return res
}

func TestLedger_Deploy(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)

	env.settle.Invoke(t, 100, "minStake")
	env.settle.Invoke(t, 10, "costPerTx")
	env.settle.Invoke(t, ledgerconst.StakeDuration, "stakeDuration")
	env.settle.Invoke(t, stackitem.NewBuffer(env.settler.ScriptHash().BytesBE()), "settlementAuthority")
	env.settle.Invoke(t, stackitem.NewBuffer(env.admin.ScriptHash().BytesBE()), "admin")
	env.settle.Invoke(t, common.Version, "version")

	t.Run("invalid parameters", func(t *testing.T) {
		acc := env.e.NewAccount(t).ScriptHash()

		for _, tc := range []struct {
			name      string
			admin     util.Uint160
			settler   util.Uint160
			minStake  int64
			costPerTx int64
			err       string
		}{
			{"zero admin", util.Uint160{}, acc, 1, 1, ledgerconst.ErrInvalidIdentity},
			{"zero settler", acc, util.Uint160{}, 1, 1, ledgerconst.ErrInvalidIdentity},
			{"negative min stake", acc, acc, -1, 1, ledgerconst.ErrInvalidMinStake},
			{"zero cost", acc, acc, 1, 0, ledgerconst.ErrInvalidCostPerTx},
		} {
			t.Run(tc.name, func(t *testing.T) {
				e := newExecutor(t)
				c := neotest.CompileFile(t, e.CommitteeHash, ledgerPath, path.Join(ledgerPath, "config.yml"))
				e.DeployContractCheckFAULT(t, c, []any{tc.admin, tc.settler, tc.minStake, tc.costPerTx}, tc.err)
			})
		}
	})
}

func TestLedger_RegisterNode(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, inv := env.newParticipant(t)
	node := acc.ScriptHash()

	t.Run("invalid identity", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "registerNode", util.Uint160{}, 1000)
		inv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "registerNode", []byte{1, 2, 3}, 1000)
	})

	t.Run("foreign identity", func(t *testing.T) {
		other := env.e.NewAccount(t)
		inv.InvokeFail(t, common.ErrWitnessFailed, "registerNode", other.ScriptHash(), 1000)
	})

	t.Run("stake equals minimum", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrInsufficientStake, "registerNode", node, 100)
		require.False(t, env.node(t, node).IsActive)
	})

	t.Run("deposit exceeds balance", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrDepositFailed, "registerNode", node, int64(1_000_000_00000000))
	})

	ledgerBalance := env.gasBalance(t, env.hash)

	h := inv.Invoke(t, stackitem.Null{}, "registerNode", node, 101)
	end := int64(inv.TopBlock(t).Timestamp) + ledgerconst.StakeDuration

	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var ev ledger.NodeStakedEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	require.Equal(t, ledger.NodeStakedEventName, evs[0].Name)
	require.Equal(t, node, ev.Node)
	require.EqualValues(t, end, ev.StakeEndTime.Int64())

	rec := env.node(t, node)
	require.EqualValues(t, 101, rec.StakeAmount.Int64())
	require.EqualValues(t, end, rec.StakeEndTime.Int64())
	require.Zero(t, rec.TxCount.Sign())
	require.True(t, rec.IsActive)

	require.Equal(t, ledgerBalance+101, env.gasBalance(t, env.hash))

	t.Run("already registered", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrAlreadyRegistered, "registerNode", node, 500)
		require.EqualValues(t, 101, env.node(t, node).StakeAmount.Int64())
	})

	t.Run("unknown node", func(t *testing.T) {
		rec := env.node(t, util.Uint160{1, 2, 3})
		require.Zero(t, rec.StakeAmount.Sign())
		require.Zero(t, rec.StakeEndTime.Sign())
		require.False(t, rec.IsActive)
	})
}

func TestLedger_ExtendNodeStake(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, inv := env.newParticipant(t)
	node := acc.ScriptHash()

	inv.InvokeFail(t, ledgerconst.ErrNotRegistered, "extendNodeStake", node, 10, 1)

	inv.Invoke(t, stackitem.Null{}, "registerNode", node, 1000)
	end := env.node(t, node).StakeEndTime.Int64()

	t.Run("zero deposit", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrZeroDeposit, "extendNodeStake", node, 0, 1)
		inv.InvokeFail(t, ledgerconst.ErrZeroDeposit, "extendNodeStake", node, -5, 1)

		rec := env.node(t, node)
		require.EqualValues(t, 1000, rec.StakeAmount.Int64())
		require.EqualValues(t, end, rec.StakeEndTime.Int64())
	})

	t.Run("invalid arguments", func(t *testing.T) {
		inv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "extendNodeStake", util.Uint160{}, 10, 1)
		inv.InvokeFail(t, ledgerconst.ErrInvalidDuration, "extendNodeStake", node, 10, -1)
	})

	t.Run("foreign node", func(t *testing.T) {
		_, otherInv := env.newParticipant(t)
		otherInv.InvokeFail(t, common.ErrWitnessFailed, "extendNodeStake", node, 10, 1)
	})

	h := inv.Invoke(t, stackitem.Null{}, "extendNodeStake", node, 50, 3)
	end += 3 * ledgerconst.Day

	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var ev ledger.NodeStakeExtendedEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	require.Equal(t, node, ev.Node)
	require.EqualValues(t, end, ev.StakeEndTime.Int64())

	rec := env.node(t, node)
	require.EqualValues(t, 1050, rec.StakeAmount.Int64())
	require.EqualValues(t, end, rec.StakeEndTime.Int64())

	t.Run("no extra days", func(t *testing.T) {
		inv.Invoke(t, stackitem.Null{}, "extendNodeStake", node, 1, 0)
		rec := env.node(t, node)
		require.EqualValues(t, 1051, rec.StakeAmount.Int64())
		require.EqualValues(t, end, rec.StakeEndTime.Int64())
	})

	t.Run("expired stake", func(t *testing.T) {
		tx := inv.PrepareInvoke(t, "extendNodeStake", node, 1, 2)

		b := env.e.NewUnsignedBlock(t, tx)
		b.Timestamp = uint64(end) + 5*ledgerconst.Day
		require.NoError(t, env.e.Chain.AddBlock(env.e.SignBlock(b)))
		env.e.CheckHalt(t, tx.Hash())

		rec := env.node(t, node)
		require.EqualValues(t, 1052, rec.StakeAmount.Int64())
		require.EqualValues(t, int64(b.Timestamp)+2*ledgerconst.Day, rec.StakeEndTime.Int64())
	})
}

func TestLedger_RegisterContract(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, inv := env.newParticipant(t)
	c := acc.ScriptHash()

	inv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "registerContract", util.Uint160{}, 1000)
	inv.InvokeFail(t, common.ErrWitnessFailed, "registerContract", env.admin.ScriptHash(), 1000)
	inv.InvokeFail(t, ledgerconst.ErrInsufficientStake, "registerContract", c, 100)

	h := inv.Invoke(t, stackitem.Null{}, "registerContract", c, 1005)

	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var ev ledger.ContractCreatedEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	require.Equal(t, c, ev.Contract)
	require.EqualValues(t, 100, ev.Quota.Int64())

	rec := env.contract(t, c)
	require.EqualValues(t, 100, rec.TxQuotaRemaining.Int64())
	require.True(t, rec.IsActive)

	inv.InvokeFail(t, ledgerconst.ErrAlreadyRegistered, "registerContract", c, 1000)
	require.EqualValues(t, 100, env.quota(t, c))

	require.False(t, env.contract(t, util.Uint160{7}).IsActive)
}

func TestLedger_FundContract(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, inv := env.newParticipant(t)
	c := acc.ScriptHash()

	sponsor, sponsorInv := env.newParticipant(t)
	from := sponsor.ScriptHash()

	sponsorInv.InvokeFail(t, ledgerconst.ErrNotRegistered, "fundContract", from, c, 50)

	inv.Invoke(t, stackitem.Null{}, "registerContract", c, 1000)

	t.Run("invalid arguments", func(t *testing.T) {
		sponsorInv.InvokeFail(t, ledgerconst.ErrZeroDeposit, "fundContract", from, c, 0)
		sponsorInv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "fundContract", util.Uint160{}, c, 50)
		sponsorInv.InvokeFail(t, ledgerconst.ErrInvalidIdentity, "fundContract", from, util.Uint160{}, 50)
		sponsorInv.InvokeFail(t, common.ErrWitnessFailed, "fundContract", c, c, 50)
		require.EqualValues(t, 100, env.quota(t, c))
	})

	// Anyone can fund any contract.
	h := sponsorInv.Invoke(t, stackitem.Null{}, "fundContract", from, c, 57)

	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var ev ledger.ContractFundedEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	require.Equal(t, c, ev.Contract)
	require.EqualValues(t, 5, ev.QuotaAdded.Int64())
	require.EqualValues(t, 105, ev.QuotaTotal.Int64())

	t.Run("additivity", func(t *testing.T) {
		// floor(A/cost) + floor(B/cost), not floor((A+B)/cost)
		inv.Invoke(t, stackitem.Null{}, "fundContract", c, c, 15)
		inv.Invoke(t, stackitem.Null{}, "fundContract", c, c, 15)
		require.EqualValues(t, 105+1+1, env.quota(t, c))
	})
}

func TestLedger_SettleNodeBatch(t *testing.T) {
	env := newLedgerEnv(t, 0, 1)

	acc1, inv1 := env.newParticipant(t)
	acc2, inv2 := env.newParticipant(t)
	n1, n2 := acc1.ScriptHash(), acc2.ScriptHash()

	inv1.Invoke(t, stackitem.Null{}, "registerNode", n1, 10)
	inv2.Invoke(t, stackitem.Null{}, "registerNode", n2, 10)

	const method = "settleNodeBatch"

	t.Run("unauthorized", func(t *testing.T) {
		inv1.InvokeFail(t, common.ErrSettlementWitnessFailed, method, []any{n1}, []any{5})
		env.manage.InvokeFail(t, common.ErrSettlementWitnessFailed, method, []any{n1}, []any{5})
	})

	t.Run("invalid batch", func(t *testing.T) {
		env.settle.InvokeFail(t, ledgerconst.ErrLengthMismatch, method, []any{n1, n2}, []any{5})
		env.settle.InvokeFail(t, ledgerconst.ErrInvalidIdentity, method, []any{n1, util.Uint160{}}, []any{5, 1})
		env.settle.InvokeFail(t, ledgerconst.ErrNegativeCount, method, []any{n1, n2}, []any{5, -1})
		env.settle.InvokeFail(t, ledgerconst.ErrNotRegistered, method, []any{n1, util.Uint160{1}}, []any{5, 1})
	})

	require.Zero(t, env.node(t, n1).TxCount.Sign())
	require.Zero(t, env.node(t, n2).TxCount.Sign())

	h := env.settle.Invoke(t, stackitem.Null{}, method, []any{n1, n2, n1}, []any{5, 3, 2})
	require.Empty(t, env.events(t, h))

	require.EqualValues(t, 7, env.node(t, n1).TxCount.Int64())
	require.EqualValues(t, 3, env.node(t, n2).TxCount.Int64())

	env.settle.Invoke(t, stackitem.Null{}, method, []any{}, []any{})
	require.EqualValues(t, 7, env.node(t, n1).TxCount.Int64())
}

func TestLedger_SettleContractBatch(t *testing.T) {
	env := newLedgerEnv(t, 0, 10)

	acc1, inv1 := env.newParticipant(t)
	acc2, inv2 := env.newParticipant(t)
	c1, c2 := acc1.ScriptHash(), acc2.ScriptHash()

	inv1.Invoke(t, stackitem.Null{}, "registerContract", c1, 100)
	inv2.Invoke(t, stackitem.Null{}, "registerContract", c2, 50)
	require.EqualValues(t, 10, env.quota(t, c1))
	require.EqualValues(t, 5, env.quota(t, c2))

	const method = "settleContractBatch"

	t.Run("unauthorized", func(t *testing.T) {
		inv1.InvokeFail(t, common.ErrSettlementWitnessFailed, method, 1, []any{c1}, []any{1})
		env.manage.InvokeFail(t, common.ErrSettlementWitnessFailed, method, 1, []any{c1}, []any{1})
	})

	t.Run("invalid batch", func(t *testing.T) {
		env.settle.InvokeFail(t, ledgerconst.ErrLengthMismatch, method, 1, []any{c1}, []any{1, 2})
		env.settle.InvokeFail(t, ledgerconst.ErrNegativeCount, method, 1, []any{c1}, []any{-1})
		env.settle.InvokeFail(t, ledgerconst.ErrNotRegistered, method, 1, []any{c1, util.Uint160{1}}, []any{1, 1})
		require.EqualValues(t, 10, env.quota(t, c1))
	})

	t.Run("clean", func(t *testing.T) {
		h := env.settle.Invoke(t, stackitem.Null{}, method, 1, []any{c1}, []any{1})
		evs := env.events(t, h)
		require.Len(t, evs, 1)

		var ev ledger.BatchUpdateEvent
		require.NoError(t, ev.FromStackItem(evs[0].Item))
		require.Equal(t, ledger.BatchUpdateEventName, evs[0].Name)
		require.EqualValues(t, 1, ev.BatchID.Int64())
		require.True(t, ev.Clean)

		require.EqualValues(t, 9, env.quota(t, c1))

		// Restore quota for the next case.
		inv1.Invoke(t, stackitem.Null{}, "fundContract", c1, c1, 10)
	})

	t.Run("partial exhaustion", func(t *testing.T) {
		h := env.settle.Invoke(t, stackitem.Null{}, method, 2, []any{c1, c2}, []any{3, 7})
		evs := env.events(t, h)
		require.Len(t, evs, 2)

		require.Equal(t, ledger.ContractOutOfFundEventName, evs[0].Name)
		var oof ledger.ContractOutOfFundEvent
		require.NoError(t, oof.FromStackItem(evs[0].Item))
		require.EqualValues(t, 2, oof.BatchID.Int64())
		require.Equal(t, c2, oof.Contract)

		var bu ledger.BatchUpdateEvent
		require.NoError(t, bu.FromStackItem(evs[1].Item))
		require.EqualValues(t, 2, bu.BatchID.Int64())
		require.False(t, bu.Clean)

		require.EqualValues(t, 7, env.quota(t, c1))
		require.EqualValues(t, -2, env.quota(t, c2))
	})

	t.Run("exact quota", func(t *testing.T) {
		h := env.settle.Invoke(t, stackitem.Null{}, method, 3, []any{c1}, []any{7})
		evs := env.events(t, h)
		require.Len(t, evs, 2)
		require.Equal(t, ledger.ContractOutOfFundEventName, evs[0].Name)
		require.Zero(t, env.quota(t, c1))
	})

	t.Run("debt is repaid by funding", func(t *testing.T) {
		inv2.Invoke(t, stackitem.Null{}, "fundContract", c2, c2, 50)
		require.EqualValues(t, 3, env.quota(t, c2))
	})
}

func TestLedger_Scenario(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, inv := env.newParticipant(t)
	c := acc.ScriptHash()

	inv.Invoke(t, stackitem.Null{}, "registerContract", c, 1000)
	require.EqualValues(t, 100, env.quota(t, c))

	inv.Invoke(t, stackitem.Null{}, "fundContract", c, c, 50)
	require.EqualValues(t, 105, env.quota(t, c))

	h := env.settle.Invoke(t, stackitem.Null{}, "settleContractBatch", 42, []any{c}, []any{200})
	evs := env.events(t, h)
	require.Len(t, evs, 2)
	require.Equal(t, ledger.ContractOutOfFundEventName, evs[0].Name)
	require.Equal(t, ledger.BatchUpdateEventName, evs[1].Name)

	require.EqualValues(t, -95, env.quota(t, c))
}

func TestLedger_Parameters(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	_, inv := env.newParticipant(t)

	t.Run("unauthorized", func(t *testing.T) {
		inv.InvokeFail(t, common.ErrAdminWitnessFailed, "changeCostPerTx", 20)
		inv.InvokeFail(t, common.ErrAdminWitnessFailed, "changeMinStake", 20)
		env.settle.InvokeFail(t, common.ErrAdminWitnessFailed, "changeCostPerTx", 20)
		env.settle.InvokeFail(t, common.ErrAdminWitnessFailed, "changeMinStake", 20)

		env.settle.Invoke(t, 10, "costPerTx")
		env.settle.Invoke(t, 100, "minStake")
	})

	t.Run("invalid values", func(t *testing.T) {
		env.manage.InvokeFail(t, ledgerconst.ErrInvalidCostPerTx, "changeCostPerTx", 0)
		env.manage.InvokeFail(t, ledgerconst.ErrInvalidMinStake, "changeMinStake", -1)
	})

	h := env.manage.Invoke(t, stackitem.Null{}, "changeCostPerTx", 20)
	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var cost ledger.NewCostPerTxEvent
	require.NoError(t, cost.FromStackItem(evs[0].Item))
	require.EqualValues(t, 20, cost.Value.Int64())

	h = env.manage.Invoke(t, stackitem.Null{}, "changeMinStake", 500)
	evs = env.events(t, h)
	require.Len(t, evs, 1)
	var stake ledger.NewMinStakeEvent
	require.NoError(t, stake.FromStackItem(evs[0].Item))
	require.EqualValues(t, 500, stake.Value.Int64())

	env.settle.Invoke(t, 20, "costPerTx")
	env.settle.Invoke(t, 500, "minStake")

	acc, inv := env.newParticipant(t)
	inv.InvokeFail(t, ledgerconst.ErrInsufficientStake, "registerContract", acc.ScriptHash(), 500)
	inv.Invoke(t, stackitem.Null{}, "registerContract", acc.ScriptHash(), 1000)
	require.EqualValues(t, 50, env.quota(t, acc.ScriptHash()))
}

func TestLedger_SingleAuthority(t *testing.T) {
	e := newExecutor(t)
	authority := e.NewAccount(t)
	h := deployLedgerContract(t, e, authority.ScriptHash(), authority.ScriptHash(), 0, 1)

	inv := e.NewInvoker(h, authority)
	inv.Invoke(t, stackitem.Null{}, "changeMinStake", 5)
	inv.Invoke(t, stackitem.Null{}, "settleNodeBatch", []any{}, []any{})
}

func TestLedger_Deposit(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)
	acc, _ := env.newParticipant(t)

	gasInv := env.e.NewInvoker(env.e.NativeHash(t, nativenames.Gas), acc)
	h := gasInv.Invoke(t, true, "transfer", acc.ScriptHash(), env.hash, 500, nil)

	evs := env.events(t, h)
	require.Len(t, evs, 1)
	var ev ledger.DepositEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	require.Equal(t, acc.ScriptHash(), ev.From)
	require.EqualValues(t, 500, ev.Amount.Int64())

	// Deposit credits nothing.
	require.False(t, env.node(t, acc.ScriptHash()).IsActive)
	require.False(t, env.contract(t, acc.ScriptHash()).IsActive)

	t.Run("arbitrary data", func(t *testing.T) {
		for _, data := range []any{[]byte("sl"), "pull", []any{1, 2}, 42} {
			h := gasInv.Invoke(t, true, "transfer", acc.ScriptHash(), env.hash, 7, data)

			evs := env.events(t, h)
			require.Len(t, evs, 1, data)
			require.Equal(t, ledger.DepositEventName, evs[0].Name)
		}
	})

	t.Run("after registration", func(t *testing.T) {
		inv := env.e.NewInvoker(env.hash, acc)
		h := inv.Invoke(t, stackitem.Null{}, "registerNode", acc.ScriptHash(), 101)
		evs := env.events(t, h)
		require.Len(t, evs, 1)
		require.Equal(t, ledger.NodeStakedEventName, evs[0].Name)

		h = gasInv.Invoke(t, true, "transfer", acc.ScriptHash(), env.hash, 3, nil)
		evs = env.events(t, h)
		require.Len(t, evs, 1)
		require.Equal(t, ledger.DepositEventName, evs[0].Name)
	})

	t.Run("not GAS", func(t *testing.T) {
		neoInv := env.e.CommitteeInvoker(env.e.NativeHash(t, nativenames.Neo))
		neoInv.InvokeFail(t, "ABORT", "transfer", env.e.CommitteeHash, env.hash, 1, nil)
	})
}

func TestLedger_Update(t *testing.T) {
	env := newLedgerEnv(t, 100, 10)

	c := neotest.CompileFile(t, env.e.CommitteeHash, ledgerPath, path.Join(ledgerPath, "config.yml"))
	nefBytes, err := c.NEF.Bytes()
	require.NoError(t, err)
	manifestBytes, err := json.Marshal(c.Manifest)
	require.NoError(t, err)

	env.settle.InvokeFail(t, common.ErrAdminWitnessFailed, "update", nefBytes, manifestBytes, nil)
	env.manage.InvokeFail(t, common.ErrAlreadyUpdated, "update", nefBytes, manifestBytes, nil)
}
