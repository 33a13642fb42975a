package domain

// GasBudget holds the cost-accounting constants reported on successful
// responses. It is configured once at startup and never mutated by
// request traffic, so concurrent reads need no synchronization. A live
// gas control loop would need a reader-writer discipline here.
type GasBudget struct {
	GasPriceWei uint64
	MaxGasLimit uint64
}
