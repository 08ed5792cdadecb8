package orderstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tshirt-store/internal/pkg/logger"
)

// fakeReader replays messages, then blocks until the context ends
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	errs      []error
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		r.mu.Unlock()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	r.mu.Unlock()
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func messageFor(t *testing.T, offset int64, req CreateRequest) kafka.Message {
	t.Helper()
	value, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(req.ClientOrderID), Value: value, Offset: offset}
}

// flakyRepository fails Create with a store error the first failures times
type flakyRepository struct {
	*MemoryRepository
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakyRepository) Create(ctx context.Context, rec *Record) error {
	f.mu.Lock()
	f.attempts++
	fail := f.attempts <= f.failures
	f.mu.Unlock()
	if fail {
		return errors.New("connection reset by peer")
	}
	return f.MemoryRepository.Create(ctx, rec)
}

func TestConsumer_StoresMirroredOrders(t *testing.T) {
	svc, repo := newTestService()

	invalid := validRequest("ORD3")
	invalid.Total = 1

	reader := &fakeReader{
		errs: []error{errors.New("broker hiccup")},
		messages: []kafka.Message{
			messageFor(t, 0, validRequest("ORD1")),
			{Key: []byte("junk"), Value: []byte("{not json"), Offset: 1},
			messageFor(t, 2, validRequest("ORD1")),
			messageFor(t, 3, invalid),
			messageFor(t, 4, validRequest("ORD2")),
		},
	}
	c := &Consumer{service: svc, reader: reader, logger: logger.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	// one read error plus five messages
	for i := 0; i < 6; i++ {
		c.processMessage(ctx)
	}
	cancel()
	c.Run(ctx)
	c.Close()

	records, total, err := repo.List(context.Background(), ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	clientIDs := map[string]bool{}
	for _, r := range records {
		require.NotNil(t, r.ClientOrderID)
		clientIDs[*r.ClientOrderID] = true
	}
	assert.True(t, clientIDs["ORD1"])
	assert.True(t, clientIDs["ORD2"])

	// duplicates, junk and invalid orders are settled too
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, reader.commits())
	assert.True(t, reader.closed)
}

func TestConsumer_MessageMatchesMirrorPayload(t *testing.T) {
	// the storefront publishes the bare mirror payload without tax or notes
	payload := validRequest("ORD5").MirrorPayload
	value, err := json.Marshal(payload)
	require.NoError(t, err)

	svc, repo := newTestService()
	reader := &fakeReader{messages: []kafka.Message{{Key: []byte("ORD5"), Value: value}}}
	c := &Consumer{service: svc, reader: reader, logger: logger.Discard()}

	c.processMessage(context.Background())

	rec, err := repo.FindByIdempotencyKey(context.Background(), payload.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, payload.Total, rec.Total)
	assert.Equal(t, StatusPending, rec.Status)
}

func TestConsumer_RetriesStoreFailuresBeforeCommitting(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: NewMemoryRepository(), failures: 2}
	svc := NewService(repo, nil, "INR", logger.Discard())

	reader := &fakeReader{messages: []kafka.Message{messageFor(t, 7, validRequest("ORD7"))}}
	c := &Consumer{service: svc, reader: reader, logger: logger.Discard(), backoff: time.Millisecond}

	c.processMessage(context.Background())

	assert.Equal(t, 3, repo.attempts)
	_, total, err := repo.List(context.Background(), ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []int64{7}, reader.commits())
}

func TestConsumer_LeavesOffsetWhenStoreStaysDown(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: NewMemoryRepository(), failures: 1 << 30}
	svc := NewService(repo, nil, "INR", logger.Discard())

	reader := &fakeReader{messages: []kafka.Message{messageFor(t, 9, validRequest("ORD9"))}}
	c := &Consumer{service: svc, reader: reader, logger: logger.Discard(), backoff: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c.processMessage(ctx)

	assert.Empty(t, reader.commits())
	assert.Greater(t, repo.attempts, 1)
}
