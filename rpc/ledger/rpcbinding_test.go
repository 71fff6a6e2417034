package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testActor struct {
	res *result.Invoke
	err error

	method string
	params []any
}

func (a *testActor) Call(_ util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	a.method, a.params = operation, params
	return a.res, a.err
}

func (a *testActor) MakeCall(_ util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	a.method, a.params = method, params
	return new(transaction.Transaction), a.err
}

func (a *testActor) MakeUnsignedCall(_ util.Uint160, method string, _ []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	a.method, a.params = method, params
	return new(transaction.Transaction), a.err
}

func (a *testActor) SendCall(_ util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	a.method, a.params = method, params
	return util.Uint256{1}, 42, a.err
}

func haltWith(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{State: "HALT", Stack: items}
}

func TestReader(t *testing.T) {
	ta := new(testActor)
	r := NewReader(ta, util.Uint160{1, 2, 3})

	t.Run("parameters", func(t *testing.T) {
		ta.res = haltWith(stackitem.Make(100))
		v, err := r.MinStake()
		require.NoError(t, err)
		require.EqualValues(t, 100, v.Int64())
		require.Equal(t, "minStake", ta.method)

		ta.res = haltWith(stackitem.Make(10))
		v, err = r.CostPerTx()
		require.NoError(t, err)
		require.EqualValues(t, 10, v.Int64())
		require.Equal(t, "costPerTx", ta.method)

		settler := util.Uint160{7}
		ta.res = haltWith(stackitem.Make(settler.BytesBE()))
		h, err := r.SettlementAuthority()
		require.NoError(t, err)
		require.Equal(t, settler, h)
	})

	t.Run("node", func(t *testing.T) {
		node := util.Uint160{4, 5, 6}
		ta.res = haltWith(stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(1000),
			stackitem.Make(2419200000),
			stackitem.Make(3),
			stackitem.NewBool(true),
		}))
		rec, err := r.GetNode(node)
		require.NoError(t, err)
		require.Equal(t, "getNode", ta.method)
		require.Equal(t, []any{node}, ta.params)
		require.EqualValues(t, 1000, rec.StakeAmount.Int64())
		require.EqualValues(t, 2419200000, rec.StakeEndTime.Int64())
		require.EqualValues(t, 3, rec.TxCount.Int64())
		require.True(t, rec.IsActive)

		ta.res = haltWith(stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)}))
		_, err = r.GetNode(node)
		require.Error(t, err)
	})

	t.Run("contract", func(t *testing.T) {
		ta.res = haltWith(stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(-95),
			stackitem.NewBool(true),
		}))
		rec, err := r.GetContract(util.Uint160{9})
		require.NoError(t, err)
		require.EqualValues(t, -95, rec.TxQuotaRemaining.Int64())
		require.True(t, rec.IsActive)
	})

	t.Run("fault", func(t *testing.T) {
		ta.res = &result.Invoke{State: "FAULT", FaultException: "oops"}
		_, err := r.Version()
		require.Error(t, err)

		ta.res, ta.err = nil, errors.New("connection lost")
		_, err = r.Version()
		require.Error(t, err)
		ta.err = nil
	})
}

func TestContractSettleParams(t *testing.T) {
	ta := new(testActor)
	c := New(ta, util.Uint160{1})

	ids := []util.Uint160{{1}, {2}}
	counts := []*big.Int{big.NewInt(3), big.NewInt(7)}

	_, vub, err := c.SettleContractBatch(big.NewInt(5), ids, counts)
	require.NoError(t, err)
	require.EqualValues(t, 42, vub)
	require.Equal(t, "settleContractBatch", ta.method)
	require.Equal(t, []any{
		big.NewInt(5),
		[]any{ids[0], ids[1]},
		[]any{counts[0], counts[1]},
	}, ta.params)

	_, err = c.SettleNodeBatchUnsigned(ids, counts)
	require.NoError(t, err)
	require.Equal(t, "settleNodeBatch", ta.method)
	require.Len(t, ta.params, 2)
}

func TestEventsFromApplicationLog(t *testing.T) {
	c1, c2 := util.Uint160{1}, util.Uint160{2}
	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: ContractOutOfFundEventName, Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(11), stackitem.Make(c2.BytesBE()),
				})},
				{Name: "Transfer", Item: stackitem.NewArray(nil)},
				{Name: BatchUpdateEventName, Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(11), stackitem.NewBool(false),
				})},
				{Name: ContractFundedEventName, Item: stackitem.NewArray([]stackitem.Item{
					stackitem.Make(c1.BytesBE()), stackitem.Make(5), stackitem.Make(105),
				})},
			},
		}},
	}

	oof, err := ContractOutOfFundEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, oof, 1)
	require.EqualValues(t, 11, oof[0].BatchID.Int64())
	require.Equal(t, c2, oof[0].Contract)

	bu, err := BatchUpdateEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, bu, 1)
	require.False(t, bu[0].Clean)

	funded, err := ContractFundedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, funded, 1)
	require.Equal(t, c1, funded[0].Contract)
	require.EqualValues(t, 105, funded[0].QuotaTotal.Int64())

	deposits, err := DepositEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, deposits)

	_, err = NodeStakedEventsFromApplicationLog(nil)
	require.Error(t, err)

	broken := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{Name: NodeStakedEventName, Item: stackitem.NewArray([]stackitem.Item{stackitem.Make(1)})},
			},
		}},
	}
	_, err = NodeStakedEventsFromApplicationLog(broken)
	require.Error(t, err)
}

func TestDepositSigner(t *testing.T) {
	acc := util.Uint160{1, 2, 3}
	s := DepositSigner(acc)

	require.Equal(t, acc, s.Account)
	require.True(t, s.Scopes&transaction.CalledByEntry != 0)
	require.True(t, s.Scopes&transaction.CustomContracts != 0)
	require.Equal(t, []util.Uint160{state.CreateNativeContractHash(nativenames.Gas)}, s.AllowedContracts)
}
