package claims

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// memoryCache is an in-process stand-in for the Redis entry cache
type memoryCache struct {
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok := c.data[key]
	return raw, ok
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte) {
	c.sets++
	c.data[key] = value
}

type aggregatorFixture struct {
	aggregator *AuditAggregator
	db         *sql.DB
	mock       sqlmock.Sqlmock
	reader     *stubLogReader
	cache      *memoryCache
}

func newAggregatorFixture(t *testing.T, entryCache *memoryCache) *aggregatorFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New("audit-test", "error")
	reader := &stubLogReader{entriesByTx: map[string][]types.LogEntry{}, errByTx: map[string]error{}}
	repo := repository.NewClaimsRepository(db, log)

	var c *AuditAggregator
	if entryCache != nil {
		c = NewAuditAggregator(repo, reader, entryCache, testTopicID, log)
	} else {
		c = NewAuditAggregator(repo, reader, nil, testTopicID, log)
	}

	return &aggregatorFixture{
		aggregator: c,
		db:         db,
		mock:       mock,
		reader:     reader,
		cache:      entryCache,
	}
}

func (f *aggregatorFixture) expectClaimWithHistory(claimID string, history []types.ClaimHistoryEntry) {
	now := time.Now()
	f.mock.ExpectQuery("SELECT id, patient_id, insurer_id").
		WithArgs(claimID).
		WillReturnRows(sqlmock.NewRows(claimColumns).
			AddRow(claimID, "patient-1", "insurer-1", "MRI scan", 2500.0, types.ClaimStatusApproved, "tx-a", "QmClaim", "hash-1", now, now))

	historyRows := sqlmock.NewRows(historyColumns)
	for _, entry := range history {
		historyRows.AddRow(entry.ID, claimID, entry.EventType, entry.AnchorReference, entry.RecordedAt)
	}
	f.mock.ExpectQuery("FROM claim_anchor_history").
		WithArgs(claimID).
		WillReturnRows(historyRows)
}

func threeEntryHistory() []types.ClaimHistoryEntry {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []types.ClaimHistoryEntry{
		{ID: "h-1", EventType: types.EventClaimCreated, AnchorReference: "tx-a", RecordedAt: base},
		{ID: "h-2", EventType: types.EventClaimApproved, AnchorReference: "tx-b", RecordedAt: base.Add(time.Hour)},
		{ID: "h-3", EventType: types.EventClaimPaid, AnchorReference: "tx-c", RecordedAt: base.Add(2 * time.Hour)},
	}
}

func TestAggregate_OneItemPerHistoryEntryInOrder(t *testing.T) {
	f := newAggregatorFixture(t, nil)
	f.expectClaimWithHistory("claim-1", threeEntryHistory())

	f.reader.entriesByTx["tx-a"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_CREATED"})}
	f.reader.entriesByTx["tx-b"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_APPROVED"})}
	f.reader.entriesByTx["tx-c"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_PAID"})}

	timeline, err := f.aggregator.Aggregate(context.Background(), "claim-1")

	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, types.EventClaimCreated, timeline[0].EventType)
	assert.Equal(t, types.EventClaimApproved, timeline[1].EventType)
	assert.Equal(t, types.EventClaimPaid, timeline[2].EventType)
	assert.Equal(t, "tx-b", timeline[1].HCSMessageID)

	decoded := timeline[1].MirrorDecoded.(map[string]interface{})
	assert.Equal(t, "CLAIM_APPROVED", decoded["eventType"])
}

func TestAggregate_OneBadEntryDoesNotSinkTheBatch(t *testing.T) {
	f := newAggregatorFixture(t, nil)
	f.expectClaimWithHistory("claim-1", threeEntryHistory())

	f.reader.entriesByTx["tx-a"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_CREATED"})}
	f.reader.errByTx["tx-b"] = &types.LogReadError{TopicID: testTopicID, TransactionID: "tx-b", Cause: errors.New("timeout")}
	f.reader.entriesByTx["tx-c"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_PAID"})}

	timeline, err := f.aggregator.Aggregate(context.Background(), "claim-1")

	require.NoError(t, err)
	require.Len(t, timeline, 3)

	assert.NotNil(t, timeline[0].MirrorDecoded)
	assert.Empty(t, timeline[0].Error)

	assert.Nil(t, timeline[1].MirrorDecoded)
	assert.NotEmpty(t, timeline[1].Error)

	assert.NotNil(t, timeline[2].MirrorDecoded)
	assert.Empty(t, timeline[2].Error)
}

func TestAggregate_EmptyMirrorResultLeavesEntryUndecoded(t *testing.T) {
	f := newAggregatorFixture(t, nil)
	f.expectClaimWithHistory("claim-1", threeEntryHistory()[:1])

	timeline, err := f.aggregator.Aggregate(context.Background(), "claim-1")

	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Nil(t, timeline[0].MirrorDecoded)
	assert.Empty(t, timeline[0].Error)
}

func TestAggregate_CacheReadThrough(t *testing.T) {
	entryCache := newMemoryCache()
	f := newAggregatorFixture(t, entryCache)

	history := threeEntryHistory()[:1]
	f.reader.entriesByTx["tx-a"] = []types.LogEntry{anchoredMessage(t, map[string]interface{}{"eventType": "CLAIM_CREATED"})}

	f.expectClaimWithHistory("claim-1", history)
	_, err := f.aggregator.Aggregate(context.Background(), "claim-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.reader.calls)
	assert.Equal(t, 1, entryCache.sets)

	// Second aggregation resolves from the cache without a mirror read
	f.expectClaimWithHistory("claim-1", history)
	timeline, err := f.aggregator.Aggregate(context.Background(), "claim-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.reader.calls)

	decoded := timeline[0].MirrorDecoded.(map[string]interface{})
	assert.Equal(t, "CLAIM_CREATED", decoded["eventType"])
}

func TestAggregate_EmptyResultsAreNotCached(t *testing.T) {
	entryCache := newMemoryCache()
	f := newAggregatorFixture(t, entryCache)

	f.expectClaimWithHistory("claim-1", threeEntryHistory()[:1])

	_, err := f.aggregator.Aggregate(context.Background(), "claim-1")

	require.NoError(t, err)
	assert.Equal(t, 0, entryCache.sets)
}

func TestAggregate_ClaimNotFound(t *testing.T) {
	f := newAggregatorFixture(t, nil)
	f.mock.ExpectQuery("SELECT id, patient_id, insurer_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := f.aggregator.Aggregate(context.Background(), "missing")

	var platformErr *types.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, types.ErrorTypeNotFound, platformErr.Type)
}
