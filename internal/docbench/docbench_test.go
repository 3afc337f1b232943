package docbench

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/logger"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/source"
	"github.com/dbsmedya/encbench/internal/types"
)

// memoryStore keeps documents in memory and returns them in reverse order
// to exercise order-independent verification.
type memoryStore struct {
	docs      []source.PatientLog
	resets    int
	insertErr error
}

func (m *memoryStore) Reset(context.Context) error {
	m.resets++
	m.docs = nil
	return nil
}

func (m *memoryStore) InsertMany(_ context.Context, docs []source.PatientLog) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memoryStore) FindAll(context.Context) ([]source.PatientLog, error) {
	out := make([]source.PatientLog, len(m.docs))
	for i, d := range m.docs {
		out[len(out)-1-i] = d
	}
	return out, nil
}

func (m *memoryStore) LogicalSize(context.Context) (int64, error) {
	var size int64
	for _, d := range m.docs {
		b, err := json.Marshal(d)
		if err != nil {
			return 0, err
		}
		size += int64(len(b))
	}
	return size, nil
}

var (
	keysOnce sync.Once
	keys     *scheme.Keyring
	keysErr  error
)

func testKeyring(t *testing.T) *scheme.Keyring {
	t.Helper()
	keysOnce.Do(func() {
		var sym scheme.Scheme
		sym, keysErr = scheme.NewAESGCM([]byte(strings.Repeat("k", 32)))
		if keysErr != nil {
			return
		}
		var asym scheme.Scheme
		asym, keysErr = scheme.GenerateRSA(2048, scheme.PaddingOAEPSHA256)
		keys = &scheme.Keyring{Symmetric: sym, Asymmetric: asym}
	})
	require.NoError(t, keysErr)
	return keys
}

func newTestRunner(t *testing.T, store DocumentStore, opts Options) *Runner {
	t.Helper()
	r, err := NewRunner(store, &source.SyntheticSource{}, testKeyring(t), opts)
	require.NoError(t, err)
	r.SetLogger(logger.NewNop())
	return r
}

type rowCollector struct{ rows []types.TimingRow }

func (c *rowCollector) WriteRow(row types.TimingRow) error {
	c.rows = append(c.rows, row)
	return nil
}

func TestRun(t *testing.T) {
	store := &memoryStore{}
	sink := &rowCollector{}
	r := newTestRunner(t, store, Options{
		BatchSizes:      []int{2, 4},
		VerifyRoundTrip: true,
		Sinks:           []bench.RowSink{sink},
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.Rows[0].BatchSize)
	assert.Equal(t, 4, result.Rows[1].BatchSize)
	assert.Equal(t, result.Rows, sink.rows)
	assert.Equal(t, r.RunID(), result.RunID)

	// Baseline, then one symmetric and one asymmetric reset per batch.
	assert.Equal(t, 1+2*2, store.resets)

	var labels []string
	for el := result.Sizes.Front(); el != nil; el = el.Next() {
		labels = append(labels, el.Key)
	}
	assert.Equal(t, []string{BaselineLabel, scheme.NameAESGCM, scheme.NameRSAOAEP}, labels)

	plain, _ := result.Sizes.Get(BaselineLabel)
	sym, _ := result.Sizes.Get(scheme.NameAESGCM)
	asym, _ := result.Sizes.Get(scheme.NameRSAOAEP)
	assert.Greater(t, plain, int64(0))
	assert.Greater(t, sym, plain)
	assert.Greater(t, asym, sym)

	// The collection holds the last asymmetric batch, hex encoded.
	require.Len(t, store.docs, 4)
	assert.Len(t, store.docs[0].PatientSSN, 512)
	assert.Empty(t, store.docs[0].Nonce)
}

func TestRun_SymmetricDocumentsCarryNonce(t *testing.T) {
	store := &memoryStore{}
	var captured []source.PatientLog
	r := newTestRunner(t, &capturingStore{memoryStore: store, capture: &captured}, Options{BatchSizes: []int{1}})

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	// captured[0] is the baseline, [1] the symmetric insert.
	require.GreaterOrEqual(t, len(captured), 2)
	assert.Equal(t, "999-00-1000", captured[0].PatientSSN)
	assert.Len(t, captured[1].Nonce, 24)
	assert.NotEqual(t, "999-00-1000", captured[1].PatientSSN)
}

type capturingStore struct {
	*memoryStore
	capture *[]source.PatientLog
}

func (c *capturingStore) InsertMany(ctx context.Context, docs []source.PatientLog) error {
	*c.capture = append(*c.capture, docs...)
	return c.memoryStore.InsertMany(ctx, docs)
}

func TestRun_SnapshotSizesLabelled(t *testing.T) {
	r := newTestRunner(t, &memoryStore{}, Options{
		BatchSizes:   []int{1, 2},
		Snapshot:     bench.SnapshotSizes(1, 2),
		BaselineSize: 2,
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	_, ok := result.Sizes.Get(scheme.NameAESGCM + " @1")
	assert.True(t, ok)
	_, ok = result.Sizes.Get(scheme.NameAESGCM)
	assert.True(t, ok)
	assert.Equal(t, 5, result.Sizes.Len())
}

func TestRun_StoreFailure(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("connection reset")}
	r := newTestRunner(t, store, Options{BatchSizes: []int{1}})

	_, err := r.Run(context.Background())
	require.Error(t, err)

	var be *bench.BatchError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, bench.OpStore, be.Op)
	assert.Equal(t, bench.ClassIO, bench.Classify(err))
}

// droppingStore loses one document on read.
type droppingStore struct{ *memoryStore }

func (d droppingStore) FindAll(ctx context.Context) ([]source.PatientLog, error) {
	docs, err := d.memoryStore.FindAll(ctx)
	if len(docs) > 0 {
		docs = docs[1:]
	}
	return docs, err
}

func TestRun_VerifyDetectsLostDocument(t *testing.T) {
	r := newTestRunner(t, droppingStore{&memoryStore{}}, Options{BatchSizes: []int{3}, VerifyRoundTrip: true})

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, bench.ErrRoundTripMismatch)
	assert.Equal(t, bench.ClassCrypto, bench.Classify(err))
}

func TestDecryptDocument_InvalidHex(t *testing.T) {
	_, err := decryptDocument(testKeyring(t).Symmetric, source.PatientLog{PatientSSN: "zz"})
	assert.ErrorIs(t, err, scheme.ErrDecrypt)

	_, err = decryptDocument(testKeyring(t).Symmetric, source.PatientLog{PatientSSN: "00", Nonce: "q"})
	assert.ErrorIs(t, err, scheme.ErrDecrypt)
}

func TestNewRunner_Errors(t *testing.T) {
	k := testKeyring(t)
	_, err := NewRunner(nil, &source.SyntheticSource{}, k, Options{BatchSizes: []int{1}})
	assert.Error(t, err)
	_, err = NewRunner(&memoryStore{}, nil, k, Options{BatchSizes: []int{1}})
	assert.Error(t, err)
	_, err = NewRunner(&memoryStore{}, &source.SyntheticSource{}, nil, Options{BatchSizes: []int{1}})
	assert.Error(t, err)
	_, err = NewRunner(&memoryStore{}, &source.SyntheticSource{}, k, Options{BatchSizes: []int{2, 1}})
	assert.ErrorIs(t, err, bench.ErrInvalidBatchSizes)
}
