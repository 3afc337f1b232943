package source

import (
	"context"
	"fmt"

	"github.com/dbsmedya/encbench/internal/types"
)

// Vitals are the sensor readings attached to a patient log document.
type Vitals struct {
	BPM  int     `bson:"bpm" json:"bpm"`
	Temp float64 `bson:"temp" json:"temp"`
}

// PatientLog is one IoT document. PatientSSN is the field the benchmark encrypts.
type PatientLog struct {
	DeviceID   string  `bson:"device_id" json:"device_id"`
	Timestamp  float64 `bson:"timestamp" json:"timestamp"`
	Vitals     Vitals  `bson:"vitals" json:"vitals"`
	PatientSSN string  `bson:"patient_ssn" json:"patient_ssn"`
	Nonce      string  `bson:"nonce,omitempty" json:"nonce,omitempty"`
}

// SyntheticSource generates patient log documents deterministically from
// their index, so batches are prefixes of each other.
type SyntheticSource struct {
	// Clock returns the timestamp stamped on generated documents, in Unix seconds.
	Clock func() float64
}

// Documents returns the first n documents.
func (s *SyntheticSource) Documents(n int) []PatientLog {
	docs := make([]PatientLog, n)
	for i := range docs {
		docs[i] = PatientLog{
			DeviceID:   fmt.Sprintf("DEV-%d", i),
			Timestamp:  s.now(),
			Vitals:     Vitals{BPM: 70 + i%30, Temp: 36.5},
			PatientSSN: SyntheticSSN(i),
		}
	}
	return docs
}

// Fetch returns the SSNs of the first limit documents.
func (s *SyntheticSource) Fetch(_ context.Context, limit int) (types.Batch, error) {
	batch := make(types.Batch, limit)
	for i := range batch {
		batch[i] = types.PlaintextRecord(SyntheticSSN(i))
	}
	return batch, nil
}

func (s *SyntheticSource) now() float64 {
	if s.Clock == nil {
		return 0
	}
	return s.Clock()
}

// SyntheticSSN returns the identifier of the i-th generated document.
func SyntheticSSN(i int) string {
	return fmt.Sprintf("999-00-%d", 1000+i)
}
