package companions

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoCaller             = errors.New("no caller")
	ErrCooldownActive       = errors.New("whistle cooldown active")
	ErrNoCandidates         = errors.New("no callable companions")
	ErrReconstructionFailed = errors.New("reconstruction failed")
	ErrTeleportFailed       = errors.New("teleport failed")
	ErrNotFound             = errors.New("companion not found")
	ErrServerUnavailable    = errors.New("server not available")
	ErrInvalidRecord        = errors.New("invalid record")
)

// CooldownError indica cuánto falta para poder volver a silbar.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %d seconds remaining", ErrCooldownActive, e.Seconds())
}

func (e *CooldownError) Unwrap() error { return ErrCooldownActive }

// Seconds redondea hacia arriba.
func (e *CooldownError) Seconds() int64 {
	ms := e.Remaining.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}
