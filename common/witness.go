package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

const (
	// ErrAdminWitnessFailed appears when the method must be
	// called by the ledger administrator but was not.
	ErrAdminWitnessFailed = "admin witness check failed"
	// ErrSettlementWitnessFailed appears when the method must be called
	// by the authorized settlement caller but was not.
	ErrSettlementWitnessFailed = "settlement witness check failed"
	// ErrWitnessFailed appears when the method must be called
	// by the owner of the passed identity but was not.
	ErrWitnessFailed = "witness check failed"
)

// CheckAdminWitness checks witness of the passed administrator.
// It panics with ErrAdminWitnessFailed message on fail.
func CheckAdminWitness(admin []byte) {
	checkWitnessWithPanic(admin, ErrAdminWitnessFailed)
}

// CheckSettlementWitness checks witness of the passed settlement caller.
// It panics with ErrSettlementWitnessFailed message on fail.
func CheckSettlementWitness(settler []byte) {
	checkWitnessWithPanic(settler, ErrSettlementWitnessFailed)
}

// CheckWitness checks witness of the passed caller.
// It panics with ErrWitnessFailed message on fail.
func CheckWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrWitnessFailed)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
