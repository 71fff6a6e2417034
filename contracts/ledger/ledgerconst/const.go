// Package ledgerconst contains constants shared by the Ledger contract and
// its off-chain clients.
package ledgerconst

const (
	// Day is a single stake extension unit in milliseconds.
	Day = 24 * 60 * 60 * 1000
	// StakeDuration is the lock period of a freshly registered node stake
	// in milliseconds.
	StakeDuration = 4 * 7 * Day
)

// Messages of the contract exceptions.
const (
	ErrInvalidIdentity   = "invalid identity"
	ErrInsufficientStake = "deposit does not exceed minimal stake"
	ErrZeroDeposit       = "deposit must be positive"
	ErrLengthMismatch    = "identity and count lists differ in length"
	ErrAlreadyRegistered = "identity is already registered"
	ErrNotRegistered     = "identity is not registered"
	ErrInvalidDuration   = "extension duration must not be negative"
	ErrNegativeCount     = "transaction count must not be negative"
	ErrInvalidCostPerTx  = "cost per transaction must be positive"
	ErrInvalidMinStake   = "minimal stake must not be negative"
	ErrDepositFailed     = "can't transfer deposit"
	ErrGASOnly           = "only GAS is accepted"
)
