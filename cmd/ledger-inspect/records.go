package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/stork-ledger/rpc/ledger"
)

// Storage key prefixes of the ledger records, see contract docs.
const (
	nodePrefix     = 'n'
	contractPrefix = 'c'
)

// parseIdentity accepts Neo address or little-endian hex script hash.
func parseIdentity(s string) (util.Uint160, error) {
	if h, err := address.StringToUint160(s); err == nil {
		return h, nil
	}

	h, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%q is neither address nor script hash", s)
	}
	return h, nil
}

// decodeStorageItem decodes ledger record stored by the key. Exactly one of
// returned records is non-nil on success.
func decodeStorageItem(key, value []byte) (util.Uint160, *ledger.NodeRecord, *ledger.ContractRecord, error) {
	if len(key) != 1+util.Uint160Size {
		return util.Uint160{}, nil, nil, fmt.Errorf("unexpected key length %d", len(key))
	}

	h, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return util.Uint160{}, nil, nil, err
	}

	item, err := stackitem.Deserialize(value)
	if err != nil {
		return h, nil, nil, fmt.Errorf("deserialize record: %w", err)
	}

	switch key[0] {
	case nodePrefix:
		rec := new(ledger.NodeRecord)
		if err = rec.FromStackItem(item); err != nil {
			return h, nil, nil, err
		}
		return h, rec, nil, nil
	case contractPrefix:
		rec := new(ledger.ContractRecord)
		if err = rec.FromStackItem(item); err != nil {
			return h, nil, nil, err
		}
		return h, nil, rec, nil
	default:
		return h, nil, nil, errors.New("unknown record prefix")
	}
}

// printRecord prints ledger record stored by the key. Configuration items
// share the storage and some of them start with a record prefix, such items
// are skipped.
func printRecord(w io.Writer, key, value []byte) error {
	if len(key) != 1+util.Uint160Size {
		return nil
	}

	h, n, c, err := decodeStorageItem(key, value)
	if err != nil {
		return fmt.Errorf("decode record %x: %w", key, err)
	}

	if n != nil {
		printNode(w, h, n)
	} else {
		printContract(w, h, c)
	}
	return nil
}

func printNode(w io.Writer, h util.Uint160, rec *ledger.NodeRecord) {
	if !rec.IsActive {
		fmt.Fprintf(w, "node %s: not registered\n", address.Uint160ToString(h))
		return
	}

	fmt.Fprintf(w, "node %s: stake %s, until %s, transactions %s\n",
		address.Uint160ToString(h), rec.StakeAmount, time.UnixMilli(rec.StakeEndTime.Int64()).UTC().Format(time.RFC3339), rec.TxCount)
}

func printContract(w io.Writer, h util.Uint160, rec *ledger.ContractRecord) {
	if !rec.IsActive {
		fmt.Fprintf(w, "contract %s: not registered\n", address.Uint160ToString(h))
		return
	}

	status := "funded"
	if rec.TxQuotaRemaining.Sign() <= 0 {
		status = "out of fund"
	}

	fmt.Fprintf(w, "contract %s: quota %s (%s)\n", address.Uint160ToString(h), rec.TxQuotaRemaining, status)
}
