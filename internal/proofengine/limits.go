package proofengine

// Limits holds the global default ceilings applied when a wallet has no
// per-wallet override.
type Limits struct {
	MaxBalance int64
	MaxSend    int64
	MaxPay     int64
}

// DefaultLimits matches spec.md's global defaults.
var DefaultLimits = Limits{MaxBalance: 100_000, MaxSend: 50_000, MaxPay: 50_000}

// effective returns walletCap if the wallet set one, else globalDefault.
// A wallet cap that exceeds the global default is still clamped to it —
// a wallet can only ever be more restrictive than the process-wide ceiling,
// never looser.
func effective(walletCap *int64, globalDefault int64) int64 {
	if walletCap == nil {
		return globalDefault
	}
	if *walletCap < globalDefault {
		return *walletCap
	}
	return globalDefault
}

// Effective exposes the same wallet-cap-vs-global-default resolution to
// callers outside the package (the HTTP facade reports effective limits
// on GET /wallet).
func Effective(walletCap *int64, globalDefault int64) int64 {
	return effective(walletCap, globalDefault)
}
