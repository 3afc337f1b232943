// Package docbench runs the benchmark against a document store. Unlike the
// relational runner, the timed regions include writing and reading the store.
package docbench

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/logger"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/source"
	"github.com/dbsmedya/encbench/internal/types"
)

// BaselineLabel is the storage entry for the unencrypted documents.
const BaselineLabel = "Plain JSON"

// DocumentStore is a single collection the benchmark replaces and reads back.
type DocumentStore interface {
	// Reset removes every document.
	Reset(ctx context.Context) error
	InsertMany(ctx context.Context, docs []source.PatientLog) error
	FindAll(ctx context.Context) ([]source.PatientLog, error)
	// LogicalSize returns the uncompressed size of the stored documents in bytes.
	LogicalSize(ctx context.Context) (int64, error)
}

// DocumentSource generates the first n documents deterministically.
type DocumentSource interface {
	Documents(n int) []source.PatientLog
}

// Options configures a run.
type Options struct {
	RunID           string // empty generates a new one
	BatchSizes      []int
	Snapshot        bench.SnapshotPolicy // nil records sizes for the largest batch
	BaselineSize    int                  // 0 means the largest batch
	VerifyRoundTrip bool
	Sinks           []bench.RowSink
}

// Result holds the timing rows and the recorded logical sizes, in the order
// they were measured: baseline first, then symmetric and asymmetric per snapshot.
type Result struct {
	RunID string
	Rows  []types.TimingRow
	Sizes *orderedmap.OrderedMap[string, int64]
}

// Runner executes the document benchmark.
type Runner struct {
	store   DocumentStore
	docs    DocumentSource
	keys    *scheme.Keyring
	opts    Options
	largest int
	runID   string
	logger  *logger.Logger
}

// NewRunner creates a runner.
func NewRunner(store DocumentStore, docs DocumentSource, keys *scheme.Keyring, opts Options) (*Runner, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("document source is nil")
	}
	if keys == nil || keys.Symmetric == nil || keys.Asymmetric == nil {
		return nil, fmt.Errorf("keyring is incomplete")
	}
	if err := bench.ValidateBatchSizes(opts.BatchSizes); err != nil {
		return nil, err
	}

	largest := opts.BatchSizes[len(opts.BatchSizes)-1]
	if opts.Snapshot == nil {
		opts.Snapshot = bench.SnapshotLargest(opts.BatchSizes)
	}
	if opts.BaselineSize <= 0 {
		opts.BaselineSize = largest
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	return &Runner{
		store:   store,
		docs:    docs,
		keys:    keys,
		opts:    opts,
		largest: largest,
		runID:   opts.RunID,
		logger:  logger.NewDefault(),
	}, nil
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(log *logger.Logger) {
	r.logger = log
}

// RunID identifies this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run measures the baseline and then every batch size in order.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.logger.WithRun(r.runID)
	result := &Result{
		RunID: r.runID,
		Sizes: orderedmap.NewOrderedMap[string, int64](),
	}

	baseline, err := r.measureBaseline(ctx)
	if err != nil {
		return result, err
	}
	result.Sizes.Set(BaselineLabel, baseline)
	log.Infow("Baseline stored", "documents", r.opts.BaselineSize, "logical_bytes", baseline)

	for _, n := range r.opts.BatchSizes {
		row := types.TimingRow{BatchSize: n}
		docs := r.docs.Documents(n)

		symSize, err := r.pass(ctx, n, docs, r.keys.Symmetric, true, &row.SymEncrypt, &row.SymDecrypt)
		if err != nil {
			return result, err
		}
		asymSize, err := r.pass(ctx, n, docs, r.keys.Asymmetric, false, &row.AsymEncrypt, &row.AsymDecrypt)
		if err != nil {
			return result, err
		}

		if r.opts.Snapshot(n) {
			result.Sizes.Set(r.label(r.keys.Symmetric.Name(), n), symSize)
			result.Sizes.Set(r.label(r.keys.Asymmetric.Name(), n), asymSize)
		}

		result.Rows = append(result.Rows, row)
		for _, sink := range r.opts.Sinks {
			if err := sink.WriteRow(row); err != nil {
				return result, &bench.BatchError{BatchSize: n, Op: bench.OpSink, Err: err}
			}
		}

		log.WithBatch(n).Infow("Batch complete",
			"sym_encrypt", row.SymEncrypt,
			"sym_decrypt", row.SymDecrypt,
			"asym_encrypt", row.AsymEncrypt,
			"asym_decrypt", row.AsymDecrypt,
		)
	}

	return result, nil
}

func (r *Runner) measureBaseline(ctx context.Context) (int64, error) {
	n := r.opts.BaselineSize
	if err := r.store.Reset(ctx); err != nil {
		return 0, &bench.BatchError{BatchSize: n, Op: bench.OpStore, Err: err}
	}
	if err := r.store.InsertMany(ctx, r.docs.Documents(n)); err != nil {
		return 0, &bench.BatchError{BatchSize: n, Op: bench.OpStore, Err: err}
	}
	size, err := r.store.LogicalSize(ctx)
	if err != nil {
		return 0, &bench.BatchError{BatchSize: n, Op: bench.OpStore, Err: err}
	}
	return size, nil
}

// pass times encrypt+store and load+decrypt for one scheme. It returns the
// logical size of the encrypted collection when the batch is a snapshot.
func (r *Runner) pass(ctx context.Context, n int, docs []source.PatientLog, s scheme.Scheme, symmetric bool,
	encDur, decDur *time.Duration) (int64, error) {

	encOp, decOp, verifyOp := bench.OpAsymEncrypt, bench.OpAsymDecrypt, bench.OpAsymVerify
	if symmetric {
		encOp, decOp, verifyOp = bench.OpSymEncrypt, bench.OpSymDecrypt, bench.OpSymVerify
	}
	fail := func(op bench.Op, err error) error {
		return &bench.BatchError{BatchSize: n, Op: op, Scheme: s.Name(), Err: err}
	}

	start := time.Now()
	encrypted := make([]source.PatientLog, len(docs))
	for i, doc := range docs {
		c, err := s.Encrypt([]byte(doc.PatientSSN))
		if err != nil {
			return 0, fail(encOp, fmt.Errorf("document %d: %w", i, err))
		}
		doc.PatientSSN = hex.EncodeToString(c.Ciphertext)
		if len(c.Nonce) > 0 {
			doc.Nonce = hex.EncodeToString(c.Nonce)
		}
		encrypted[i] = doc
	}
	if err := r.store.Reset(ctx); err != nil {
		return 0, fail(bench.OpStore, err)
	}
	if err := r.store.InsertMany(ctx, encrypted); err != nil {
		return 0, fail(bench.OpStore, err)
	}
	*encDur = time.Since(start)

	var size int64
	if r.opts.Snapshot(n) {
		var err error
		if size, err = r.store.LogicalSize(ctx); err != nil {
			return 0, fail(bench.OpStore, err)
		}
	}

	start = time.Now()
	stored, err := r.store.FindAll(ctx)
	if err != nil {
		return 0, fail(bench.OpStore, err)
	}
	decrypted := make([]string, len(stored))
	for i, doc := range stored {
		p, err := decryptDocument(s, doc)
		if err != nil {
			return 0, fail(decOp, fmt.Errorf("document %s: %w", doc.DeviceID, err))
		}
		decrypted[i] = string(p)
	}
	*decDur = time.Since(start)

	if r.opts.VerifyRoundTrip {
		if err := verify(docs, stored, decrypted); err != nil {
			return 0, fail(verifyOp, err)
		}
	}

	r.logger.WithRun(r.runID).WithBatch(n).WithScheme(s.Name()).Debugw("Pass measured",
		"encrypt", *encDur,
		"decrypt", *decDur,
		"logical_bytes", size,
	)

	return size, nil
}

func decryptDocument(s scheme.Scheme, doc source.PatientLog) ([]byte, error) {
	ct, err := hex.DecodeString(doc.PatientSSN)
	if err != nil {
		return nil, fmt.Errorf("%w: patient_ssn is not hex: %v", scheme.ErrDecrypt, err)
	}
	var nonce []byte
	if doc.Nonce != "" {
		if nonce, err = hex.DecodeString(doc.Nonce); err != nil {
			return nil, fmt.Errorf("%w: nonce is not hex: %v", scheme.ErrDecrypt, err)
		}
	}
	return s.Decrypt(types.CipherResult{Nonce: nonce, Ciphertext: ct})
}

// verify matches documents by device ID; the store does not guarantee order.
func verify(want, stored []source.PatientLog, decrypted []string) error {
	if len(stored) != len(want) {
		return fmt.Errorf("%w: stored %d documents, expected %d", bench.ErrRoundTripMismatch, len(stored), len(want))
	}
	expected := make(map[string]string, len(want))
	for _, doc := range want {
		expected[doc.DeviceID] = doc.PatientSSN
	}
	for i, doc := range stored {
		if ssn, ok := expected[doc.DeviceID]; !ok || ssn != decrypted[i] {
			return fmt.Errorf("%w: document %s", bench.ErrRoundTripMismatch, doc.DeviceID)
		}
	}
	return nil
}

func (r *Runner) label(name string, n int) string {
	if n == r.largest {
		return name
	}
	return fmt.Sprintf("%s @%d", name, n)
}
