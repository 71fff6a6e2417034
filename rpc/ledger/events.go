package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Names of the contract notifications.
const (
	NodeStakedEventName        = "NodeStaked"
	NodeStakeExtendedEventName = "NodeStakeExtended"
	ContractCreatedEventName   = "ContractCreated"
	ContractFundedEventName    = "ContractFunded"
	ContractOutOfFundEventName = "ContractOutOfFund"
	BatchUpdateEventName       = "BatchUpdate"
	NewCostPerTxEventName      = "NewCostPerTx"
	NewMinStakeEventName       = "NewMinStake"
	DepositEventName           = "Deposit"
)

// NodeStakedEvent represents "NodeStaked" event emitted by the contract.
type NodeStakedEvent struct {
	Node         util.Uint160
	StakeEndTime *big.Int
}

// NodeStakeExtendedEvent represents "NodeStakeExtended" event emitted by the contract.
type NodeStakeExtendedEvent struct {
	Node         util.Uint160
	StakeEndTime *big.Int
}

// ContractCreatedEvent represents "ContractCreated" event emitted by the contract.
type ContractCreatedEvent struct {
	Contract util.Uint160
	Quota    *big.Int
}

// ContractFundedEvent represents "ContractFunded" event emitted by the contract.
type ContractFundedEvent struct {
	Contract   util.Uint160
	QuotaAdded *big.Int
	QuotaTotal *big.Int
}

// ContractOutOfFundEvent represents "ContractOutOfFund" event emitted by the contract.
type ContractOutOfFundEvent struct {
	BatchID  *big.Int
	Contract util.Uint160
}

// BatchUpdateEvent represents "BatchUpdate" event emitted by the contract.
type BatchUpdateEvent struct {
	BatchID *big.Int
	Clean   bool
}

// NewCostPerTxEvent represents "NewCostPerTx" event emitted by the contract.
type NewCostPerTxEvent struct {
	Value *big.Int
}

// NewMinStakeEvent represents "NewMinStake" event emitted by the contract.
type NewMinStakeEvent struct {
	Value *big.Int
}

// DepositEvent represents "Deposit" event emitted by the contract.
type DepositEvent struct {
	From   util.Uint160
	Amount *big.Int
}

// NodeStakedEventsFromApplicationLog retrieves a set of all emitted events
// with "NodeStaked" name from the provided [result.ApplicationLog].
func NodeStakedEventsFromApplicationLog(log *result.ApplicationLog) ([]*NodeStakedEvent, error) {
	var res []*NodeStakedEvent
	err := walkEvents(log, NodeStakedEventName, func(item *stackitem.Array) error {
		e := new(NodeStakedEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to NodeStakedEvent or
// returns an error if it's not possible to do to so.
func (e *NodeStakedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Node, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Node: %w", err)
	}

	e.StakeEndTime, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field StakeEndTime: %w", err)
	}

	return nil
}

// NodeStakeExtendedEventsFromApplicationLog retrieves a set of all emitted events
// with "NodeStakeExtended" name from the provided [result.ApplicationLog].
func NodeStakeExtendedEventsFromApplicationLog(log *result.ApplicationLog) ([]*NodeStakeExtendedEvent, error) {
	var res []*NodeStakeExtendedEvent
	err := walkEvents(log, NodeStakeExtendedEventName, func(item *stackitem.Array) error {
		e := new(NodeStakeExtendedEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to NodeStakeExtendedEvent or
// returns an error if it's not possible to do to so.
func (e *NodeStakeExtendedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Node, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Node: %w", err)
	}

	e.StakeEndTime, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field StakeEndTime: %w", err)
	}

	return nil
}

// ContractCreatedEventsFromApplicationLog retrieves a set of all emitted events
// with "ContractCreated" name from the provided [result.ApplicationLog].
func ContractCreatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*ContractCreatedEvent, error) {
	var res []*ContractCreatedEvent
	err := walkEvents(log, ContractCreatedEventName, func(item *stackitem.Array) error {
		e := new(ContractCreatedEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to ContractCreatedEvent or
// returns an error if it's not possible to do to so.
func (e *ContractCreatedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Contract, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Contract: %w", err)
	}

	e.Quota, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Quota: %w", err)
	}

	return nil
}

// ContractFundedEventsFromApplicationLog retrieves a set of all emitted events
// with "ContractFunded" name from the provided [result.ApplicationLog].
func ContractFundedEventsFromApplicationLog(log *result.ApplicationLog) ([]*ContractFundedEvent, error) {
	var res []*ContractFundedEvent
	err := walkEvents(log, ContractFundedEventName, func(item *stackitem.Array) error {
		e := new(ContractFundedEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to ContractFundedEvent or
// returns an error if it's not possible to do to so.
func (e *ContractFundedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Contract, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Contract: %w", err)
	}

	e.QuotaAdded, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field QuotaAdded: %w", err)
	}

	e.QuotaTotal, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field QuotaTotal: %w", err)
	}

	return nil
}

// ContractOutOfFundEventsFromApplicationLog retrieves a set of all emitted events
// with "ContractOutOfFund" name from the provided [result.ApplicationLog].
func ContractOutOfFundEventsFromApplicationLog(log *result.ApplicationLog) ([]*ContractOutOfFundEvent, error) {
	var res []*ContractOutOfFundEvent
	err := walkEvents(log, ContractOutOfFundEventName, func(item *stackitem.Array) error {
		e := new(ContractOutOfFundEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to ContractOutOfFundEvent or
// returns an error if it's not possible to do to so.
func (e *ContractOutOfFundEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.BatchID, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field BatchID: %w", err)
	}

	e.Contract, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Contract: %w", err)
	}

	return nil
}

// BatchUpdateEventsFromApplicationLog retrieves a set of all emitted events
// with "BatchUpdate" name from the provided [result.ApplicationLog].
func BatchUpdateEventsFromApplicationLog(log *result.ApplicationLog) ([]*BatchUpdateEvent, error) {
	var res []*BatchUpdateEvent
	err := walkEvents(log, BatchUpdateEventName, func(item *stackitem.Array) error {
		e := new(BatchUpdateEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to BatchUpdateEvent or
// returns an error if it's not possible to do to so.
func (e *BatchUpdateEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.BatchID, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field BatchID: %w", err)
	}

	e.Clean, err = arr[1].TryBool()
	if err != nil {
		return fmt.Errorf("field Clean: %w", err)
	}

	return nil
}

// NewCostPerTxEventsFromApplicationLog retrieves a set of all emitted events
// with "NewCostPerTx" name from the provided [result.ApplicationLog].
func NewCostPerTxEventsFromApplicationLog(log *result.ApplicationLog) ([]*NewCostPerTxEvent, error) {
	var res []*NewCostPerTxEvent
	err := walkEvents(log, NewCostPerTxEventName, func(item *stackitem.Array) error {
		e := new(NewCostPerTxEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to NewCostPerTxEvent or
// returns an error if it's not possible to do to so.
func (e *NewCostPerTxEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Value, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Value: %w", err)
	}

	return nil
}

// NewMinStakeEventsFromApplicationLog retrieves a set of all emitted events
// with "NewMinStake" name from the provided [result.ApplicationLog].
func NewMinStakeEventsFromApplicationLog(log *result.ApplicationLog) ([]*NewMinStakeEvent, error) {
	var res []*NewMinStakeEvent
	err := walkEvents(log, NewMinStakeEventName, func(item *stackitem.Array) error {
		e := new(NewMinStakeEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to NewMinStakeEvent or
// returns an error if it's not possible to do to so.
func (e *NewMinStakeEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Value, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Value: %w", err)
	}

	return nil
}

// DepositEventsFromApplicationLog retrieves a set of all emitted events
// with "Deposit" name from the provided [result.ApplicationLog].
func DepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*DepositEvent, error) {
	var res []*DepositEvent
	err := walkEvents(log, DepositEventName, func(item *stackitem.Array) error {
		e := new(DepositEvent)
		if err := e.FromStackItem(item); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.From, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// walkEvents calls f for every event with the given name. Event name is the
// only filter, so logs of transactions touching several contracts emitting
// equally named events must be filtered by the caller.
func walkEvents(log *result.ApplicationLog, name string, f func(*stackitem.Array) error) error {
	if log == nil {
		return errors.New("nil application log")
	}

	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != name {
				continue
			}
			if err := f(e.Item); err != nil {
				return fmt.Errorf("failed to deserialize %s event from stackitem (execution #%d, event #%d): %w", name, i, j, err)
			}
		}
	}

	return nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}
