/*
Package settlement provides batch submitter for the settlement authority of
Stork Ledger contract.

Transactions processed off-chain are reported to Submitter per node and per
contract from any number of goroutines. Submitter merges reports by identity
and periodically settles them with SettleNodeBatch and SettleContractBatch
contract methods.
*/
package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/stork-ledger/rpc/ledger"
	"go.uber.org/zap"
)

// Ledger groups Ledger contract methods used by Submitter. It is
// implemented by [ledger.Contract] over an actor signing transactions with
// the settlement authority key.
type Ledger interface {
	Hash() util.Uint160
	GetNode(node util.Uint160) (*ledger.NodeRecord, error)
	GetContract(contractHash util.Uint160) (*ledger.ContractRecord, error)
	SettleNodeBatch(nodes []util.Uint160, counts []*big.Int) (util.Uint256, uint32, error)
	SettleContractBatch(batchID *big.Int, contracts []util.Uint160, counts []*big.Int) (util.Uint256, uint32, error)
}

// Waiter waits for the sent transaction to be persisted. It is implemented
// by neo-go actor.
type Waiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Config groups Submitter parameters.
type Config struct {
	// Interval between flushes made by Run. Defaults to DefaultInterval.
	Interval time.Duration

	// MaxBatchSize limits number of entries in a single settlement
	// transaction. Defaults to DefaultMaxBatchSize.
	MaxBatchSize int

	// FirstBatchID is the ID of the first contract batch. It must be above
	// the last ID used with the same contract to keep notifications unique.
	FirstBatchID uint64

	// Waiter is optional. If set, Flush waits for every sent batch, returns
	// entries of rejected batches to the pending set and reports exhausted
	// contracts.
	Waiter Waiter

	// OnExhausted is called for every contract reported by
	// ContractOutOfFund notification. Requires Waiter.
	OnExhausted func(batchID uint64, contract util.Uint160)

	// Logger defaults to no-op logger.
	Logger *zap.Logger
}

const (
	// DefaultInterval is the default flush interval.
	DefaultInterval = time.Minute
	// DefaultMaxBatchSize is the default batch size limit.
	DefaultMaxBatchSize = 256
)

// ErrNegativeCount is returned when reported count is negative.
var ErrNegativeCount = errors.New("negative transaction count")

// Submitter accumulates transaction counts and settles them in batches.
type Submitter struct {
	ledger Ledger
	cfg    Config
	log    *zap.Logger

	mtx       sync.Mutex
	nodes     map[util.Uint160]uint64
	contracts map[util.Uint160]uint64
	nextBatch uint64

	// flushMtx serializes flushes so that batch IDs go to the chain in order.
	flushMtx sync.Mutex
}

// New creates Submitter settling to l.
func New(l Ledger, cfg Config) *Submitter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Submitter{
		ledger:    l,
		cfg:       cfg,
		log:       cfg.Logger,
		nodes:     make(map[util.Uint160]uint64),
		contracts: make(map[util.Uint160]uint64),
		nextBatch: cfg.FirstBatchID,
	}
}

// AddNodeTx attributes n transactions to the node.
func (s *Submitter) AddNodeTx(node util.Uint160, n int64) error {
	if n < 0 {
		return ErrNegativeCount
	}

	s.mtx.Lock()
	s.nodes[node] += uint64(n)
	s.mtx.Unlock()
	return nil
}

// AddContractTx charges n transactions to the contract.
func (s *Submitter) AddContractTx(contract util.Uint160, n int64) error {
	if n < 0 {
		return ErrNegativeCount
	}

	s.mtx.Lock()
	s.contracts[contract] += uint64(n)
	s.mtx.Unlock()
	return nil
}

// Pending returns number of identities waiting for settlement.
func (s *Submitter) Pending() (nodes, contracts int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.nodes), len(s.contracts)
}

// Run flushes pending counts every configured interval until ctx is done.
// The last flush is made with a fresh context after ctx is done.
func (s *Submitter) Run(ctx context.Context) {
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.Background()); err != nil {
				s.log.Error("final settlement failed", zap.Error(err))
			}
			return
		case <-t.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Warn("settlement failed, counts are kept for the next round", zap.Error(err))
			}
		}
	}
}

// Flush settles all pending counts. Entries of batches that were not sent or
// were rejected by the chain are returned to the pending set and will be
// settled by the next call. Entries of unregistered identities found in a
// rejected batch are dropped.
//
// If Waiter is not set, rejections are not detected.
func (s *Submitter) Flush(ctx context.Context) error {
	s.flushMtx.Lock()
	defer s.flushMtx.Unlock()

	nodes, contracts := s.takePending()
	nodeBatches := split(nodes, s.cfg.MaxBatchSize)
	contractBatches := split(contracts, s.cfg.MaxBatchSize)

	var firstErr error

	for i, b := range nodeBatches {
		if err := ctx.Err(); err != nil {
			s.restoreNodes(nodeBatches[i:])
			s.restoreContracts(contractBatches)
			return err
		}

		h, vub, err := s.ledger.SettleNodeBatch(b.ids, b.counts)
		if err != nil {
			s.restoreNodes(nodeBatches[i:])
			s.restoreContracts(contractBatches)
			return fmt.Errorf("settle node batch: %w", err)
		}

		s.log.Debug("node batch sent", zap.Stringer("tx", h), zap.Int("size", len(b.ids)))

		if s.cfg.Waiter == nil {
			continue
		}

		aer, err := s.cfg.Waiter.Wait(h, vub, nil)
		if err != nil {
			// The transaction may still be accepted, so its counts are not
			// restored to avoid double counting.
			s.restoreNodes(nodeBatches[i+1:])
			s.restoreContracts(contractBatches)
			return fmt.Errorf("wait for node batch %s: %w", h.StringLE(), err)
		}

		if aer.VMState != vmstate.Halt {
			s.log.Warn("node batch rejected", zap.Stringer("tx", h), zap.String("exception", aer.FaultException))
			s.restoreRejected(b, true)
			if firstErr == nil {
				firstErr = fmt.Errorf("node batch %s failed: %s", h.StringLE(), aer.FaultException)
			}
		}
	}

	for i, b := range contractBatches {
		if err := ctx.Err(); err != nil {
			s.restoreContracts(contractBatches[i:])
			return err
		}

		id := s.nextBatch
		h, vub, err := s.ledger.SettleContractBatch(new(big.Int).SetUint64(id), b.ids, b.counts)
		if err != nil {
			s.restoreContracts(contractBatches[i:])
			return fmt.Errorf("settle contract batch %d: %w", id, err)
		}
		s.nextBatch++

		s.log.Debug("contract batch sent", zap.Uint64("batch", id), zap.Stringer("tx", h), zap.Int("size", len(b.ids)))

		if s.cfg.Waiter == nil {
			continue
		}

		aer, err := s.cfg.Waiter.Wait(h, vub, nil)
		if err != nil {
			// The transaction may still be accepted, so its counts are not
			// restored to avoid double charging.
			s.restoreContracts(contractBatches[i+1:])
			return fmt.Errorf("wait for contract batch %d: %w", id, err)
		}

		if aer.VMState != vmstate.Halt {
			s.log.Warn("contract batch rejected", zap.Uint64("batch", id), zap.Stringer("tx", h),
				zap.String("exception", aer.FaultException))
			s.restoreRejected(b, false)
			if firstErr == nil {
				firstErr = fmt.Errorf("contract batch %d failed: %s", id, aer.FaultException)
			}
			continue
		}

		err = s.checkContractBatch(id, aer)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("contract batch %d: %w", id, err)
		}
	}

	return firstErr
}

// restoreRejected returns entries of the rejected batch to the pending set.
// Since the ledger rejects the whole batch because of a single unregistered
// identity, such identities are looked up and dropped so that the rest can
// be settled. Entries that can't be checked are kept.
func (s *Submitter) restoreRejected(b batch, nodes bool) {
	kept := batch{ids: make([]util.Uint160, 0, len(b.ids)), counts: make([]*big.Int, 0, len(b.ids))}

	for i, id := range b.ids {
		var (
			active bool
			err    error
		)
		if nodes {
			var rec *ledger.NodeRecord
			if rec, err = s.ledger.GetNode(id); err == nil {
				active = rec.IsActive
			}
		} else {
			var rec *ledger.ContractRecord
			if rec, err = s.ledger.GetContract(id); err == nil {
				active = rec.IsActive
			}
		}

		if err == nil && !active {
			s.log.Error("dropping counts of unregistered identity",
				zap.Bool("node", nodes), zap.Stringer("identity", id), zap.Stringer("count", b.counts[i]))
			continue
		}
		if err != nil {
			s.log.Warn("can't check identity registration", zap.Stringer("identity", id), zap.Error(err))
		}

		kept.ids = append(kept.ids, id)
		kept.counts = append(kept.counts, b.counts[i])
	}

	if nodes {
		s.restoreNodes([]batch{kept})
	} else {
		s.restoreContracts([]batch{kept})
	}
}

func (s *Submitter) checkContractBatch(id uint64, aer *state.AppExecResult) error {
	clean := true
	for _, ev := range aer.Events {
		if !ev.ScriptHash.Equals(s.ledger.Hash()) || ev.Name != ledger.ContractOutOfFundEventName {
			continue
		}

		var e ledger.ContractOutOfFundEvent
		if err := e.FromStackItem(ev.Item); err != nil {
			return fmt.Errorf("invalid %s notification: %w", ev.Name, err)
		}

		clean = false
		s.log.Info("contract is out of fund",
			zap.Uint64("batch", id), zap.Stringer("contract", e.Contract))
		if s.cfg.OnExhausted != nil {
			s.cfg.OnExhausted(id, e.Contract)
		}
	}

	if !clean {
		s.log.Warn("contract batch is not clean", zap.Uint64("batch", id))
	}

	return nil
}

type batch struct {
	ids    []util.Uint160
	counts []*big.Int
}

func (s *Submitter) takePending() (map[util.Uint160]uint64, map[util.Uint160]uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	nodes, contracts := s.nodes, s.contracts
	s.nodes = make(map[util.Uint160]uint64)
	s.contracts = make(map[util.Uint160]uint64)
	return nodes, contracts
}

func (s *Submitter) restoreNodes(bs []batch) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	restore(s.nodes, bs)
}

func (s *Submitter) restoreContracts(bs []batch) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	restore(s.contracts, bs)
}

func restore(m map[util.Uint160]uint64, bs []batch) {
	for _, b := range bs {
		for i := range b.ids {
			m[b.ids[i]] += b.counts[i].Uint64()
		}
	}
}

// split orders entries by identity and cuts them into batches of at most
// size entries. Zero counts are dropped.
func split(m map[util.Uint160]uint64, size int) []batch {
	ids := make([]util.Uint160, 0, len(m))
	for id, n := range m {
		if n != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var res []batch
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}

		b := batch{ids: ids[:n], counts: make([]*big.Int, n)}
		for i := range b.ids {
			b.counts[i] = new(big.Int).SetUint64(m[b.ids[i]])
		}
		res = append(res, b)
		ids = ids[n:]
	}
	return res
}
