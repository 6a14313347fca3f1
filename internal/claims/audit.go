package claims

import (
	"context"
	"encoding/json"

	"github.com/Mcnoble1/Medisphere-sub002/internal/anchor"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/cache"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// AuditAggregator reconstructs a claim's full audit timeline by
// resolving every history entry against the mirror node. One bad entry
// never sinks the batch: per-entry failures are recorded inline on the
// timeline item and the remaining entries are still resolved.
type AuditAggregator struct {
	repo    *repository.ClaimsRepository
	reader  anchor.LogReader
	cache   cache.Cache
	topicID string
	logger  *logger.Logger
}

// NewAuditAggregator creates a new audit aggregator. The cache is
// optional; pass nil to resolve every entry against the mirror node.
func NewAuditAggregator(
	repo *repository.ClaimsRepository,
	reader anchor.LogReader,
	entryCache cache.Cache,
	topicID string,
	log *logger.Logger,
) *AuditAggregator {
	return &AuditAggregator{
		repo:    repo,
		reader:  reader,
		cache:   entryCache,
		topicID: topicID,
		logger:  log,
	}
}

// Aggregate builds the timeline for one claim. The returned slice has
// exactly one item per history entry, in history (insertion) order.
func (a *AuditAggregator) Aggregate(ctx context.Context, claimID string) ([]types.TimelineEntry, error) {
	claim, err := a.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	timeline := make([]types.TimelineEntry, 0, len(claim.History))
	for _, entry := range claim.History {
		item := types.TimelineEntry{
			EventType:    entry.EventType,
			RecordedAt:   entry.RecordedAt,
			HCSMessageID: entry.AnchorReference,
		}

		messages, err := a.fetchMessages(ctx, entry.AnchorReference)
		if err != nil {
			item.Error = err.Error()
			a.logger.WithError(err).Warn("Timeline entry resolution failed")
		} else if len(messages) > 0 {
			item.MirrorDecoded = anchor.DecodeMessage(&messages[0])
		}

		timeline = append(timeline, item)
	}

	return timeline, nil
}

// fetchMessages resolves a transaction's messages, reading through the
// cache when one is configured. Mirror messages are immutable once
// consensus-stamped, so cached entries never expire for correctness
// reasons, only for space.
func (a *AuditAggregator) fetchMessages(ctx context.Context, transactionID string) ([]types.LogEntry, error) {
	cacheKey := "mirror:" + transactionID

	if a.cache != nil {
		if raw, hit := a.cache.Get(ctx, cacheKey); hit {
			var cached []types.LogEntry
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			// Undecodable cache entry; fall through to the mirror node.
		}
	}

	messages, err := a.reader.FetchByTransactionID(ctx, a.topicID, transactionID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && len(messages) > 0 {
		if raw, err := json.Marshal(messages); err == nil {
			a.cache.Set(ctx, cacheKey, raw)
		}
	}

	return messages, nil
}
