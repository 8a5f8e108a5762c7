package usecase

import "time"

// Options limita o tempo das interações com colaboradores externos.
type Options struct {
	// StoreTimeout limita cada chamada ao Account Store; estourar vira ErrStoreUnavailable.
	StoreTimeout time.Duration
	// LockWait é quanto uma gravação espera pela anterior da mesma conta antes de ErrBusy.
	// Zero rejeita na hora.
	LockWait time.Duration
}

func DefaultOptions() Options {
	return Options{
		StoreTimeout: 5 * time.Second,
		LockWait:     3 * time.Second,
	}
}

func (o Options) storeTimeout() time.Duration {
	if o.StoreTimeout <= 0 {
		return DefaultOptions().StoreTimeout
	}
	return o.StoreTimeout
}
