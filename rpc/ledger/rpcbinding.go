// Package ledger contains RPC wrappers for Stork Ledger contract.
package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// NodeRecord is a contract-specific ledger.NodeRecord type used by its methods.
type NodeRecord struct {
	StakeAmount  *big.Int
	StakeEndTime *big.Int
	TxCount      *big.Int
	IsActive     bool
}

// ContractRecord is a contract-specific ledger.ContractRecord type used by its methods.
type ContractRecord struct {
	TxQuotaRemaining *big.Int
	IsActive         bool
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// DepositSigner returns the signer of the depositing account for RegisterNode,
// ExtendNodeStake, RegisterContract and FundContract transactions. Default
// CalledByEntry scope is not enough since the deposit is transferred by the
// ledger contract itself.
func DepositSigner(account util.Uint160) transaction.Signer {
	return transaction.Signer{
		Account:          account,
		Scopes:           transaction.CalledByEntry | transaction.CustomContracts,
		AllowedContracts: []util.Uint160{state.CreateNativeContractHash(nativenames.Gas)},
	}
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Hash returns the hash of the contract.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// MinStake invokes `minStake` method of contract.
func (c *ContractReader) MinStake() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "minStake"))
}

// CostPerTx invokes `costPerTx` method of contract.
func (c *ContractReader) CostPerTx() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "costPerTx"))
}

// StakeDuration invokes `stakeDuration` method of contract.
func (c *ContractReader) StakeDuration() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "stakeDuration"))
}

// SettlementAuthority invokes `settlementAuthority` method of contract.
func (c *ContractReader) SettlementAuthority() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "settlementAuthority"))
}

// Admin invokes `admin` method of contract.
func (c *ContractReader) Admin() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "admin"))
}

// GetNode invokes `getNode` method of contract.
func (c *ContractReader) GetNode(node util.Uint160) (*NodeRecord, error) {
	return itemToNodeRecord(unwrap.Item(c.invoker.Call(c.hash, "getNode", node)))
}

// GetContract invokes `getContract` method of contract.
func (c *ContractReader) GetContract(contractHash util.Uint160) (*ContractRecord, error) {
	return itemToContractRecord(unwrap.Item(c.invoker.Call(c.hash, "getContract", contractHash)))
}

// RegisterNode creates a transaction invoking `registerNode` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
// The contract takes amount of GAS from the node, so its witness must be
// valid in the GAS contract context, see [DepositSigner].
func (c *Contract) RegisterNode(node util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "registerNode", node, amount)
}

// RegisterNodeTransaction creates a transaction invoking `registerNode` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RegisterNodeTransaction(node util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "registerNode", node, amount)
}

// RegisterNodeUnsigned creates a transaction invoking `registerNode` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RegisterNodeUnsigned(node util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "registerNode", nil, node, amount)
}

// ExtendNodeStake creates a transaction invoking `extendNodeStake` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
// The contract takes amount of GAS from the node, so its witness must be
// valid in the GAS contract context, see [DepositSigner].
func (c *Contract) ExtendNodeStake(node util.Uint160, amount *big.Int, extraDays *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "extendNodeStake", node, amount, extraDays)
}

// ExtendNodeStakeTransaction creates a transaction invoking `extendNodeStake` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ExtendNodeStakeTransaction(node util.Uint160, amount *big.Int, extraDays *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "extendNodeStake", node, amount, extraDays)
}

// ExtendNodeStakeUnsigned creates a transaction invoking `extendNodeStake` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ExtendNodeStakeUnsigned(node util.Uint160, amount *big.Int, extraDays *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "extendNodeStake", nil, node, amount, extraDays)
}

// RegisterContract creates a transaction invoking `registerContract` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
// The contract takes amount of GAS from the contract, so its witness must be
// valid in the GAS contract context, see [DepositSigner].
func (c *Contract) RegisterContract(contractHash util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "registerContract", contractHash, amount)
}

// RegisterContractTransaction creates a transaction invoking `registerContract` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RegisterContractTransaction(contractHash util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "registerContract", contractHash, amount)
}

// RegisterContractUnsigned creates a transaction invoking `registerContract` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RegisterContractUnsigned(contractHash util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "registerContract", nil, contractHash, amount)
}

// FundContract creates a transaction invoking `fundContract` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
// The contract takes amount of GAS from the sender, so its witness must be
// valid in the GAS contract context, see [DepositSigner].
func (c *Contract) FundContract(from util.Uint160, contractHash util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "fundContract", from, contractHash, amount)
}

// FundContractTransaction creates a transaction invoking `fundContract` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) FundContractTransaction(from util.Uint160, contractHash util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "fundContract", from, contractHash, amount)
}

// FundContractUnsigned creates a transaction invoking `fundContract` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) FundContractUnsigned(from util.Uint160, contractHash util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "fundContract", nil, from, contractHash, amount)
}

// SettleNodeBatch creates a transaction invoking `settleNodeBatch` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SettleNodeBatch(nodes []util.Uint160, counts []*big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "settleNodeBatch", hashesToAny(nodes), intsToAny(counts))
}

// SettleNodeBatchTransaction creates a transaction invoking `settleNodeBatch` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SettleNodeBatchTransaction(nodes []util.Uint160, counts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "settleNodeBatch", hashesToAny(nodes), intsToAny(counts))
}

// SettleNodeBatchUnsigned creates a transaction invoking `settleNodeBatch` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SettleNodeBatchUnsigned(nodes []util.Uint160, counts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "settleNodeBatch", nil, hashesToAny(nodes), intsToAny(counts))
}

// SettleContractBatch creates a transaction invoking `settleContractBatch` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SettleContractBatch(batchID *big.Int, contracts []util.Uint160, counts []*big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "settleContractBatch", batchID, hashesToAny(contracts), intsToAny(counts))
}

// SettleContractBatchTransaction creates a transaction invoking `settleContractBatch` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SettleContractBatchTransaction(batchID *big.Int, contracts []util.Uint160, counts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "settleContractBatch", batchID, hashesToAny(contracts), intsToAny(counts))
}

// SettleContractBatchUnsigned creates a transaction invoking `settleContractBatch` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SettleContractBatchUnsigned(batchID *big.Int, contracts []util.Uint160, counts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "settleContractBatch", nil, batchID, hashesToAny(contracts), intsToAny(counts))
}

// ChangeCostPerTx creates a transaction invoking `changeCostPerTx` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ChangeCostPerTx(value *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "changeCostPerTx", value)
}

// ChangeCostPerTxTransaction creates a transaction invoking `changeCostPerTx` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ChangeCostPerTxTransaction(value *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "changeCostPerTx", value)
}

// ChangeCostPerTxUnsigned creates a transaction invoking `changeCostPerTx` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ChangeCostPerTxUnsigned(value *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "changeCostPerTx", nil, value)
}

// ChangeMinStake creates a transaction invoking `changeMinStake` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ChangeMinStake(value *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "changeMinStake", value)
}

// ChangeMinStakeTransaction creates a transaction invoking `changeMinStake` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ChangeMinStakeTransaction(value *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "changeMinStake", value)
}

// ChangeMinStakeUnsigned creates a transaction invoking `changeMinStake` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ChangeMinStakeUnsigned(value *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "changeMinStake", nil, value)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

func hashesToAny(hs []util.Uint160) []any {
	res := make([]any, len(hs))
	for i := range hs {
		res[i] = hs[i]
	}
	return res
}

func intsToAny(vs []*big.Int) []any {
	res := make([]any, len(vs))
	for i := range vs {
		res[i] = vs[i]
	}
	return res
}

// itemToNodeRecord converts stack item into *NodeRecord.
func itemToNodeRecord(item stackitem.Item, err error) (*NodeRecord, error) {
	if err != nil {
		return nil, err
	}
	var res = new(NodeRecord)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of NodeRecord from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *NodeRecord) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.StakeAmount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field StakeAmount: %w", err)
	}

	index++
	res.StakeEndTime, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field StakeEndTime: %w", err)
	}

	index++
	res.TxCount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TxCount: %w", err)
	}

	index++
	res.IsActive, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field IsActive: %w", err)
	}

	return nil
}

// itemToContractRecord converts stack item into *ContractRecord.
func itemToContractRecord(item stackitem.Item, err error) (*ContractRecord, error) {
	if err != nil {
		return nil, err
	}
	var res = new(ContractRecord)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of ContractRecord from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *ContractRecord) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.TxQuotaRemaining, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TxQuotaRemaining: %w", err)
	}

	index++
	res.IsActive, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field IsActive: %w", err)
	}

	return nil
}
