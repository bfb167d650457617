package worker

// dlq.go: jobs that exhaust MaxJobAttempts land in dlq:{original_queue} for
// manual inspection. ledgerctl can move them back with ReplayDLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DLQQuarantineSuffix names the list where unreadable DLQ entries are kept
// instead of being replayed.
const DLQQuarantineSuffix = ":ilegibles"

// ReplayDLQ moves up to limit entries back to their original queue with a
// fresh attempt counter and returns how many were moved. Each entry is read,
// re-queued and removed in one WATCH/MULTI transaction, so a failed push
// leaves it in the DLQ. Unreadable entries go to the quarantine list.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int) (int, error) {
	dlqKey := DLQPrefix + queue
	moved := 0
	for moved < limit {
		done := false
		err := rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.LIndex(ctx, dlqKey, -1).Bytes()
			if errors.Is(err, redis.Nil) {
				done = true
				return nil
			}
			if err != nil {
				return err
			}

			var entry DLQEntry
			if jsonErr := json.Unmarshal(raw, &entry); jsonErr != nil || entry.OriginalQueue == "" {
				log.Error().Err(jsonErr).Str("queue", queue).Msg("dlq: entrada ilegible en cuarentena")
				_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
					p.RPop(ctx, dlqKey)
					p.LPush(ctx, dlqKey+DLQQuarantineSuffix, raw)
					return nil
				})
				return err
			}

			encoded, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
			if err != nil {
				return err
			}
			cmds, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.RPop(ctx, dlqKey)
				p.LPush(ctx, entry.OriginalQueue, encoded)
				return nil
			})
			if err != nil {
				// EXEC does not roll back a failed LPUSH; put the entry back
				if len(cmds) == 2 && cmds[0].Err() == nil {
					if restoreErr := rdb.RPush(ctx, dlqKey, raw).Err(); restoreErr != nil {
						log.Error().Err(restoreErr).Str("queue", queue).Msg("dlq: no se pudo restaurar la entrada")
					}
				}
				return err
			}
			moved++
			return nil
		}, dlqKey)
		if errors.Is(err, redis.TxFailedErr) {
			// another replay touched the DLQ; read the tail again
			continue
		}
		if err != nil {
			return moved, err
		}
		if done {
			break
		}
	}
	return moved, nil
}
