/*
Package ledger implements Ledger contract which is deployed to the Stork chain.

Ledger contract keeps stake sheets of data-validating nodes and transaction
quota of data-consuming contracts. Nodes and contracts register themselves by
depositing GAS. The only settlement authority periodically reports
transactions processed off-chain: node transaction counters grow and contract
quota shrinks. Settlement of an exhausted contract is not an error, it is
reported with ContractOutOfFund notification and the contract goes into debt
which is repaid by the next funding.

Two accounts are set on deployment: the settlement authority, allowed to
settle batches, and the administrator, allowed to change ledger parameters
and update the contract. Both may be the same account.

# Contract notifications

NodeStaked notification. This notification is produced when a node is
registered with RegisterNode method.

	NodeStaked:
	  - name: node
	    type: Hash160
	  - name: stakeEndTime
	    type: Integer

NodeStakeExtended notification. This notification is produced when a node
stake is increased with ExtendNodeStake method.

	NodeStakeExtended:
	  - name: node
	    type: Hash160
	  - name: stakeEndTime
	    type: Integer

ContractCreated notification. This notification is produced when a contract
is registered with RegisterContract method.

	ContractCreated:
	  - name: contract
	    type: Hash160
	  - name: quota
	    type: Integer

ContractFunded notification. This notification is produced when quota of a
contract is bought with FundContract method.

	ContractFunded:
	  - name: contract
	    type: Hash160
	  - name: quotaAdded
	    type: Integer
	  - name: quotaTotal
	    type: Integer

ContractOutOfFund notification. This notification is produced by
SettleContractBatch for every entry whose contract quota does not exceed the
charged transaction count.

	ContractOutOfFund:
	  - name: batchID
	    type: Integer
	  - name: contract
	    type: Hash160

BatchUpdate notification. This notification ends every SettleContractBatch
invocation. Clean flag is false if at least one ContractOutOfFund
notification was produced by the batch.

	BatchUpdate:
	  - name: batchID
	    type: Integer
	  - name: clean
	    type: Boolean

NewCostPerTx and NewMinStake notifications. These notifications are produced
when the administrator changes ledger parameters.

	NewCostPerTx:
	  - name: value
	    type: Integer
	NewMinStake:
	  - name: value
	    type: Integer

Deposit notification. This notification is produced when GAS is transferred
to the contract directly. Such deposits are kept by the contract and credited
to nobody.

	Deposit:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package ledger

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'admin' -> interop.Hash160
    ledger administrator
  - 'settler' -> interop.Hash160
    settlement authority
  - 'minStake' -> int
    deposit must exceed this value to register
  - 'costPerTx' -> int
    price of a single transaction quota unit
  - 'n' + interop.Hash160 -> std.Serialize(NodeRecord)
    node stake sheets
  - 'c' + interop.Hash160 -> std.Serialize(ContractRecord)
    contract quota sheets
  - 'pull' -> int
    exists only during the deposit transfer made by the contract itself

# Records
Records are created on registration and never deleted.
*/
