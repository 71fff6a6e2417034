package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/stork-ledger/rpc/ledger"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	ledgerHash := flag.String("ledger", "", "Ledger contract address or script hash (LE)")
	node := flag.String("node", "", "Print stake record of the node")
	contract := flag.String("contract", "", "Print quota record of the contract")
	all := flag.Bool("all", false, "Print all records (requires state root service)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *ledgerHash == "":
		log.Fatal("missing ledger contract")
	}

	h, err := parseIdentity(*ledgerHash)
	if err != nil {
		log.Fatal(fmt.Errorf("ledger contract: %w", err))
	}

	err = inspect(*neoRPCEndpoint, h, *node, *contract, *all)
	if err != nil {
		log.Fatal(err)
	}
}

func inspect(endpoint string, ledgerHash util.Uint160, node, contract string, all bool) error {
	b, err := newRemoteBlockChain(endpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	r := ledger.NewReader(b.inv, ledgerHash)

	version, err := r.Version()
	if err != nil {
		return fmt.Errorf("get ledger version: %w", err)
	}
	minStake, err := r.MinStake()
	if err != nil {
		return fmt.Errorf("get min stake: %w", err)
	}
	costPerTx, err := r.CostPerTx()
	if err != nil {
		return fmt.Errorf("get cost per transaction: %w", err)
	}
	duration, err := r.StakeDuration()
	if err != nil {
		return fmt.Errorf("get stake duration: %w", err)
	}
	admin, err := r.Admin()
	if err != nil {
		return fmt.Errorf("get admin: %w", err)
	}
	settler, err := r.SettlementAuthority()
	if err != nil {
		return fmt.Errorf("get settlement authority: %w", err)
	}

	fmt.Printf("version: %s\nmin stake: %s\ncost per tx: %s\nstake duration: %sms\nadmin: %s\nsettlement authority: %s\n",
		version, minStake, costPerTx, duration, admin.StringLE(), settler.StringLE())

	if node != "" {
		nh, err := parseIdentity(node)
		if err != nil {
			return fmt.Errorf("node: %w", err)
		}
		rec, err := r.GetNode(nh)
		if err != nil {
			return fmt.Errorf("get node record: %w", err)
		}
		printNode(os.Stdout, nh, rec)
	}

	if contract != "" {
		ch, err := parseIdentity(contract)
		if err != nil {
			return fmt.Errorf("contract: %w", err)
		}
		rec, err := r.GetContract(ch)
		if err != nil {
			return fmt.Errorf("get contract record: %w", err)
		}
		printContract(os.Stdout, ch, rec)
	}

	if !all {
		return nil
	}

	for _, prefix := range []byte{nodePrefix, contractPrefix} {
		err = b.iterateContractStorage(ledgerHash, []byte{prefix}, func(key, value []byte) error {
			return printRecord(os.Stdout, key, value)
		})
		if err != nil {
			return err
		}
	}

	return nil
}
