// Package bench implements the benchmark runner: for each batch size it times
// symmetric and asymmetric encryption and decryption of the same records.
package bench

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/encbench/internal/logger"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/source"
	"github.com/dbsmedya/encbench/internal/types"
)

// RowSink receives each timing row as soon as its batch completes.
type RowSink interface {
	WriteRow(row types.TimingRow) error
}

// Options configures a run.
type Options struct {
	RunID           string // empty generates a new one
	BatchSizes      []int
	Snapshot        SnapshotPolicy // nil retains the largest batch
	VerifyRoundTrip bool
	Sinks           []RowSink
}

// Result contains the rows and retained snapshots of a completed run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Rows        []types.TimingRow
	Snapshots   map[int]*types.Snapshot
}

// StorageSample returns the logical storage footprint of the snapshot for batchSize.
func (r *Result) StorageSample(batchSize int) (types.StorageSample, bool) {
	snap, ok := r.Snapshots[batchSize]
	if !ok {
		return types.StorageSample{}, false
	}
	return types.SampleOf(snap), true
}

// Largest returns the snapshot with the largest batch size, or nil.
func (r *Result) Largest() *types.Snapshot {
	var out *types.Snapshot
	for _, snap := range r.Snapshots {
		if out == nil || snap.BatchSize > out.BatchSize {
			out = snap
		}
	}
	return out
}

// Runner executes the benchmark. Batches run sequentially; nothing is
// measured concurrently.
type Runner struct {
	source source.RecordSource
	keys   *scheme.Keyring
	opts   Options
	runID  string
	logger *logger.Logger
}

// NewRunner creates a runner over the given source and key material.
func NewRunner(src source.RecordSource, keys *scheme.Keyring, opts Options) (*Runner, error) {
	if src == nil {
		return nil, fmt.Errorf("record source is nil")
	}
	if keys == nil || keys.Symmetric == nil || keys.Asymmetric == nil {
		return nil, fmt.Errorf("keyring is incomplete")
	}
	if err := ValidateBatchSizes(opts.BatchSizes); err != nil {
		return nil, err
	}
	if opts.Snapshot == nil {
		opts.Snapshot = SnapshotLargest(opts.BatchSizes)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	return &Runner{
		source: src,
		keys:   keys,
		opts:   opts,
		runID:  opts.RunID,
		logger: logger.NewDefault(),
	}, nil
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(log *logger.Logger) {
	r.logger = log
}

// RunID identifies this run in logs, sinks, and the run lock.
func (r *Runner) RunID() string {
	return r.runID
}

// Run measures every batch size in order. The first failure aborts the run;
// rows already handed to sinks stay written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.logger.WithRun(r.runID)
	result := &Result{
		RunID:     r.runID,
		StartedAt: time.Now(),
		Rows:      make([]types.TimingRow, 0, len(r.opts.BatchSizes)),
		Snapshots: make(map[int]*types.Snapshot),
	}

	log.Infow("Starting benchmark",
		"batch_sizes", r.opts.BatchSizes,
		"symmetric", r.keys.Symmetric.Name(),
		"asymmetric", r.keys.Asymmetric.Name(),
		"verify_roundtrip", r.opts.VerifyRoundTrip,
	)

	for _, n := range r.opts.BatchSizes {
		row, snap, err := r.runBatch(ctx, n)
		if err != nil {
			log.Errorw("Benchmark aborted", "batch_size", n, "class", Classify(err).String(), "error", err)
			return result, err
		}

		result.Rows = append(result.Rows, row)

		for _, sink := range r.opts.Sinks {
			if err := sink.WriteRow(row); err != nil {
				return result, &BatchError{BatchSize: n, Op: OpSink, Err: err}
			}
		}

		if snap != nil {
			result.Snapshots[n] = snap
		}

		log.WithBatch(n).Infow("Batch complete",
			"sym_encrypt", row.SymEncrypt,
			"sym_decrypt", row.SymDecrypt,
			"asym_encrypt", row.AsymEncrypt,
			"asym_decrypt", row.AsymDecrypt,
			"snapshot", snap != nil,
		)
	}

	result.CompletedAt = time.Now()
	log.Infow("Benchmark complete", "rows", len(result.Rows), "duration", result.CompletedAt.Sub(result.StartedAt))

	return result, nil
}

func (r *Runner) runBatch(ctx context.Context, n int) (types.TimingRow, *types.Snapshot, error) {
	row := types.TimingRow{BatchSize: n}

	batch, err := r.source.Fetch(ctx, n)
	if err != nil {
		return row, nil, &BatchError{BatchSize: n, Op: OpFetch, Err: err}
	}
	if len(batch) < n {
		return row, nil, &BatchError{BatchSize: n, Op: OpFetch,
			Err: fmt.Errorf("%w: need %d, source returned %d", ErrInsufficientRecords, n, len(batch))}
	}
	batch = batch[:n]

	sym := r.keys.Symmetric
	symCT, err := r.measure(n, sym, batch, OpSymEncrypt, OpSymDecrypt, OpSymVerify, &row.SymEncrypt, &row.SymDecrypt)
	if err != nil {
		return row, nil, err
	}

	asym := r.keys.Asymmetric
	asymCT, err := r.measure(n, asym, batch, OpAsymEncrypt, OpAsymDecrypt, OpAsymVerify, &row.AsymEncrypt, &row.AsymDecrypt)
	if err != nil {
		return row, nil, err
	}

	if !r.opts.Snapshot(n) {
		return row, nil, nil
	}

	snap := &types.Snapshot{BatchSize: n, Triples: make([]types.Triple, n)}
	for i, rec := range batch {
		snap.Triples[i] = types.Triple{
			Plaintext: string(rec),
			SymHex:    symCT[i].Hex(),
			AsymHex:   asymCT[i].Hex(),
		}
	}
	return row, snap, nil
}

// measure times one encrypt pass and one decrypt pass of s over batch.
// Only the two loops are inside the clock.
func (r *Runner) measure(n int, s scheme.Scheme, batch types.Batch, encOp, decOp, verifyOp Op,
	encDur, decDur *time.Duration) ([]types.CipherResult, error) {

	ciphertexts := make([]types.CipherResult, len(batch))
	start := time.Now()
	for i, rec := range batch {
		c, err := s.Encrypt(rec.Bytes())
		if err != nil {
			return nil, &BatchError{BatchSize: n, Op: encOp, Scheme: s.Name(),
				Err: fmt.Errorf("record %d: %w", i, err)}
		}
		ciphertexts[i] = c
	}
	*encDur = time.Since(start)

	plaintexts := make([][]byte, len(batch))
	start = time.Now()
	for i, c := range ciphertexts {
		p, err := s.Decrypt(c)
		if err != nil {
			return nil, &BatchError{BatchSize: n, Op: decOp, Scheme: s.Name(),
				Err: fmt.Errorf("record %d: %w", i, err)}
		}
		plaintexts[i] = p
	}
	*decDur = time.Since(start)

	if r.opts.VerifyRoundTrip {
		for i, rec := range batch {
			if !bytes.Equal(plaintexts[i], rec.Bytes()) {
				return nil, &BatchError{BatchSize: n, Op: verifyOp, Scheme: s.Name(),
					Err: fmt.Errorf("%w: record %d", ErrRoundTripMismatch, i)}
			}
		}
	}

	r.logger.WithRun(r.runID).WithBatch(n).WithScheme(s.Name()).Debugw("Pass measured",
		"encrypt", *encDur,
		"decrypt", *decDur,
		"verified", r.opts.VerifyRoundTrip,
	)

	return ciphertexts, nil
}
