package bench

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/source"
)

var (
	// ErrInsufficientRecords is returned when the source yields fewer records than a batch needs.
	ErrInsufficientRecords = source.ErrInsufficientRecords
	// ErrRoundTripMismatch is returned when a decrypted record differs from its plaintext.
	ErrRoundTripMismatch = errors.New("round-trip mismatch")
	// ErrInvalidBatchSizes is returned when batch sizes are empty, non-positive, or not ascending.
	ErrInvalidBatchSizes = errors.New("invalid batch sizes")
)

// Op names the step of a batch that failed.
type Op string

const (
	OpFetch       Op = "fetch"
	OpSymEncrypt  Op = "symmetric encrypt"
	OpSymDecrypt  Op = "symmetric decrypt"
	OpSymVerify   Op = "symmetric verify"
	OpAsymEncrypt Op = "asymmetric encrypt"
	OpAsymDecrypt Op = "asymmetric decrypt"
	OpAsymVerify  Op = "asymmetric verify"
	OpSink        Op = "sink"
	OpStore       Op = "store"
)

// BatchError reports the batch size and operation a run aborted on.
type BatchError struct {
	BatchSize int
	Op        Op
	Scheme    string
	Err       error
}

func (e *BatchError) Error() string {
	if e.Scheme != "" {
		return fmt.Sprintf("batch size %d: %s (%s): %v", e.BatchSize, e.Op, e.Scheme, e.Err)
	}
	return fmt.Sprintf("batch size %d: %s: %v", e.BatchSize, e.Op, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Class groups fatal errors for reporting and exit codes.
type Class int

const (
	ClassNone Class = iota
	ClassConfig
	ClassCrypto
	ClassIO
)

func (c Class) String() string {
	switch c {
	case ClassConfig:
		return "configuration"
	case ClassCrypto:
		return "cryptographic"
	case ClassIO:
		return "i/o"
	default:
		return "none"
	}
}

// Classify maps an error to its class. Anything not recognized as a
// configuration or cryptographic failure is treated as I/O.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var verrs config.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, ErrInsufficientRecords),
		errors.Is(err, source.ErrSourceMissing),
		errors.Is(err, ErrInvalidBatchSizes),
		errors.Is(err, source.ErrNullRecord),
		errors.Is(err, scheme.ErrUnknownScheme):
		return ClassConfig
	case errors.Is(err, scheme.ErrMessageTooLong),
		errors.Is(err, scheme.ErrDecrypt),
		errors.Is(err, ErrRoundTripMismatch):
		return ClassCrypto
	}

	var be *BatchError
	if errors.As(err, &be) {
		switch be.Op {
		case OpSymEncrypt, OpSymDecrypt, OpSymVerify, OpAsymEncrypt, OpAsymDecrypt, OpAsymVerify:
			return ClassCrypto
		}
	}

	return ClassIO
}

// ValidateBatchSizes checks that sizes are non-empty, positive, and strictly ascending.
func ValidateBatchSizes(sizes []int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: none configured", ErrInvalidBatchSizes)
	}
	for i, n := range sizes {
		if n <= 0 {
			return fmt.Errorf("%w: %d is not positive", ErrInvalidBatchSizes, n)
		}
		if i > 0 && n <= sizes[i-1] {
			return fmt.Errorf("%w: %d does not follow %d", ErrInvalidBatchSizes, n, sizes[i-1])
		}
	}
	return nil
}
