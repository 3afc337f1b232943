// Package types contains the benchmark data model shared across packages.
package types

import (
	"encoding/hex"
	"time"
)

// PlaintextRecord is a sensitive identifier, such as a social security number.
type PlaintextRecord string

// Bytes returns the record's byte serialization.
func (p PlaintextRecord) Bytes() []byte {
	return []byte(p)
}

// Batch is an ordered sequence of records. A batch of size N is the first N
// records of the source.
type Batch []PlaintextRecord

// CipherResult is the output of a single encryption. Schemes that need a nonce
// carry it next to the ciphertext; it cannot be recovered from Ciphertext alone.
type CipherResult struct {
	Nonce      []byte
	Ciphertext []byte
}

// Sealed returns nonce || ciphertext, the form that must be stored to decrypt later.
func (c CipherResult) Sealed() []byte {
	out := make([]byte, 0, len(c.Nonce)+len(c.Ciphertext))
	out = append(out, c.Nonce...)
	return append(out, c.Ciphertext...)
}

// Hex returns the hex encoding of the sealed form.
func (c CipherResult) Hex() string {
	return hex.EncodeToString(c.Sealed())
}

// TimingRow holds the four pass durations measured for one batch size.
type TimingRow struct {
	BatchSize   int
	SymEncrypt  time.Duration
	SymDecrypt  time.Duration
	AsymEncrypt time.Duration
	AsymDecrypt time.Duration
}

// Seconds returns the four durations in seconds, in column order.
func (r TimingRow) Seconds() [4]float64 {
	return [4]float64{
		r.SymEncrypt.Seconds(),
		r.SymDecrypt.Seconds(),
		r.AsymEncrypt.Seconds(),
		r.AsymDecrypt.Seconds(),
	}
}

// Triple is one persisted record: the plaintext and both hex ciphertexts.
type Triple struct {
	Plaintext string
	SymHex    string
	AsymHex   string
}

// Snapshot retains the inputs and outputs of one batch for persistence.
type Snapshot struct {
	BatchSize int
	Triples   []Triple
}

// StorageSample compares the logical footprint of the plaintext against each
// ciphertext representation.
type StorageSample struct {
	Records         int
	PlaintextBytes  int64
	SymmetricBytes  int64
	AsymmetricBytes int64
}

// SymmetricRatio returns symmetric bytes divided by plaintext bytes.
func (s StorageSample) SymmetricRatio() float64 {
	return ratio(s.SymmetricBytes, s.PlaintextBytes)
}

// AsymmetricRatio returns asymmetric bytes divided by plaintext bytes.
func (s StorageSample) AsymmetricRatio() float64 {
	return ratio(s.AsymmetricBytes, s.PlaintextBytes)
}

// SampleOf computes the logical storage sample of a snapshot, with
// ciphertexts counted in their stored hex form.
func SampleOf(s *Snapshot) StorageSample {
	sample := StorageSample{Records: len(s.Triples)}
	for _, t := range s.Triples {
		sample.PlaintextBytes += int64(len(t.Plaintext))
		sample.SymmetricBytes += int64(len(t.SymHex))
		sample.AsymmetricBytes += int64(len(t.AsymHex))
	}
	return sample
}

func ratio(n, base int64) float64 {
	if base <= 0 {
		return 0
	}
	return float64(n) / float64(base)
}
