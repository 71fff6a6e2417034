/*
Package deploy provides Stork Ledger contract deployment procedure.

Ledger deploys the contract on behalf of the given actor or updates the
already deployed instance if its executable differs from the provided one.
The procedure is idempotent and can be safely repeated.
*/
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/stork-ledger/rpc/ledger"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the ledger deployment.
type Blockchain interface {
	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Actor composes, signs and sends transactions. It is implemented by
// neo-go actor.
type Actor interface {
	ledger.Actor

	// Sender returns the account of the first transaction signer. Contract
	// address depends on it.
	Sender() util.Uint160

	// Wait waits for the transaction to be persisted.
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Prm groups parameters of the ledger deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance.
	Blockchain Blockchain

	// Deploying account. It pays for the deployment and defines contract
	// address.
	Actor Actor

	NEF      nef.File
	Manifest manifest.Manifest

	// Ledger administrator and settlement authority. Both are fixed after
	// the first deployment, they may be the same account.
	Admin   util.Uint160
	Settler util.Uint160

	// Initial ledger parameters.
	MinStake  *big.Int
	CostPerTx *big.Int
}

var (
	errMissingAuthority = errors.New("missing admin or settlement authority")
	errInvalidMinStake  = errors.New("min stake must not be negative")
	errInvalidCostPerTx = errors.New("cost per transaction must be positive")
)

// Ledger deploys Stork Ledger contract or updates the existing one and returns
// its address.
func Ledger(ctx context.Context, prm Prm) (util.Uint160, error) {
	if err := checkPrm(prm); err != nil {
		return util.Uint160{}, fmt.Errorf("invalid deployment parameters: %w", err)
	}

	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	addr := state.CreateContractHash(prm.Actor.Sender(), prm.NEF.Checksum, prm.Manifest.Name)
	log = log.With(zap.Stringer("address", addr))

	cs, err := prm.Blockchain.GetContractStateByHash(addr)
	if err != nil {
		if !isErrContractNotFound(err) {
			return util.Uint160{}, fmt.Errorf("get state of the ledger contract: %w", err)
		}

		log.Info("ledger contract is missing on the chain, deploying...")

		err = deployLedger(ctx, prm)
		if err != nil {
			return util.Uint160{}, err
		}

		log.Info("ledger contract successfully deployed")
		return addr, nil
	}

	if cs.NEF.Checksum == prm.NEF.Checksum {
		log.Debug("ledger contract is up to date")
		return addr, nil
	}

	log.Info("ledger contract executable differs, updating...",
		zap.Uint32("on-chain checksum", cs.NEF.Checksum), zap.Uint32("local checksum", prm.NEF.Checksum))

	err = updateLedger(ctx, prm, addr)
	if err != nil {
		return util.Uint160{}, err
	}

	log.Info("ledger contract successfully updated")
	return addr, nil
}

func checkPrm(prm Prm) error {
	switch {
	case prm.Blockchain == nil || prm.Actor == nil:
		return errors.New("missing blockchain or actor")
	case prm.Admin.Equals(util.Uint160{}) || prm.Settler.Equals(util.Uint160{}):
		return errMissingAuthority
	case prm.MinStake == nil || prm.MinStake.Sign() < 0:
		return errInvalidMinStake
	case prm.CostPerTx == nil || prm.CostPerTx.Sign() <= 0:
		return errInvalidCostPerTx
	}
	return nil
}

// deployData returns arguments of the contract's _deploy method.
func deployData(prm Prm) []any {
	return []any{prm.Admin, prm.Settler, prm.MinStake, prm.CostPerTx}
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

func deployLedger(ctx context.Context, prm Prm) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nefBytes, manifestBytes, err := encodeContract(prm)
	if err != nil {
		return err
	}

	management := state.CreateNativeContractHash(nativenames.Management)

	return await(prm.Actor.Wait(prm.Actor.SendCall(management, "deploy", nefBytes, manifestBytes, deployData(prm))))
}

func updateLedger(ctx context.Context, prm Prm, addr util.Uint160) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nefBytes, manifestBytes, err := encodeContract(prm)
	if err != nil {
		return err
	}

	return await(prm.Actor.Wait(ledger.New(prm.Actor, addr).Update(nefBytes, manifestBytes, nil)))
}

func encodeContract(prm Prm) ([]byte, []byte, error) {
	nefBytes, err := prm.NEF.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("encode NEF: %w", err)
	}

	manifestBytes, err := json.Marshal(prm.Manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("encode manifest: %w", err)
	}

	return nefBytes, manifestBytes, nil
}

func await(res *state.AppExecResult, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", res.Container.StringLE(), res.FaultException)
	}

	return nil
}
