package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GenesisHash seeds the ledger hash chain before any log rows exist.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ComputeLogHash computes the chained hash for a single credit log row.
// Hash covers: id, operation, created_at, user_id, amount, transaction_id,
// reference, previous_hash. Any retroactive edit breaks the chain from that
// row onward.
func ComputeLogHash(id int64, operation string, createdAt time.Time, userID int64, amount int, transactionID, reference, previousHash string) string {
	data := fmt.Sprintf("%d|%s|%s|%d|%d|%s|%s|%s",
		id,
		operation,
		createdAt.UTC().Format(time.RFC3339Nano),
		userID,
		amount,
		transactionID,
		reference,
		previousHash,
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// IntegrityReport summarizes a ledger verification run.
type IntegrityReport struct {
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	TotalLogs       int64     `json:"totalLogs"`
	ChainBreaks     int64     `json:"chainBreaks"`
	MissingAnchors  int64     `json:"missingAnchors"`
	AnchorMismatch  int64     `json:"anchorMismatches"`
	Status          string    `json:"status"` // "intact", "degraded", "compromised"
	FirstBreakLogID *int64    `json:"firstBreakLogId,omitempty"`
	Details         []string  `json:"details,omitempty"`
}

// LedgerIntegrityService verifies the credit_logs hash chain and checks it
// against externally anchored daily roots.
//
// Trust model: database rows and the chain itself are mutable and therefore
// untrusted; only anchors written to WORM object storage are trusted.
type LedgerIntegrityService struct {
	db       *pgxpool.Pool
	anchorer *Anchorer
	logger   *Logger
}

func NewLedgerIntegrityService(db *pgxpool.Pool, anchorer *Anchorer) *LedgerIntegrityService {
	return &LedgerIntegrityService{
		db:       db,
		anchorer: anchorer,
		logger:   Default(),
	}
}

// DailyRoot computes the Merkle root over a day's credit log hashes.
func (s *LedgerIntegrityService) DailyRoot(ctx context.Context, date time.Time) (string, int, int64, int64, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	query := `
		SELECT id, row_hash FROM credit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY id ASC
	`
	rows, err := s.db.Query(ctx, query, startOfDay, endOfDay)
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("query credit logs: %w", err)
	}
	defer rows.Close()

	var hashes []string
	var count int
	var firstID, lastID int64

	for rows.Next() {
		var id int64
		var rowHash *string
		if err := rows.Scan(&id, &rowHash); err != nil {
			return "", 0, 0, 0, err
		}
		if count == 0 {
			firstID = id
		}
		lastID = id
		count++
		if rowHash != nil {
			hashes = append(hashes, *rowHash)
		}
	}
	if err := rows.Err(); err != nil {
		return "", 0, 0, 0, err
	}
	if count == 0 {
		return "", 0, 0, 0, nil
	}

	return merkleRoot(hashes), count, firstID, lastID, nil
}

// AnchorDay computes a day's root and writes it to object storage, recording
// the anchor row locally for fast lookup.
func (s *LedgerIntegrityService) AnchorDay(ctx context.Context, date time.Time) error {
	rootHash, count, firstID, lastID, err := s.DailyRoot(ctx, date)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	key, err := s.anchorer.PutDailyAnchor(ctx, date, rootHash, count, firstID, lastID)
	if err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO ledger_anchors (anchor_date, root_hash, log_count, first_log_id, last_log_id, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (anchor_date) DO UPDATE
		SET root_hash = EXCLUDED.root_hash,
		    log_count = EXCLUDED.log_count,
		    first_log_id = EXCLUDED.first_log_id,
		    last_log_id = EXCLUDED.last_log_id
	`
	if _, err := s.db.Exec(ctx, insertQuery, date, rootHash, count, firstID, lastID, key); err != nil {
		return fmt.Errorf("record anchor: %w", err)
	}

	s.logger.Log(ctx, Event{
		Event: EventLedgerAnchorCreated,
		Details: map[string]any{
			"date":        date.Format("2006-01-02"),
			"log_count":   count,
			"storage_key": key,
		},
	})
	return nil
}

// VerifyIntegrity verifies the hash chain and anchors for a date range.
func (s *LedgerIntegrityService) VerifyIntegrity(ctx context.Context, startDate, endDate time.Time) (*IntegrityReport, error) {
	report := &IntegrityReport{
		StartDate: startDate,
		EndDate:   endDate,
		Status:    "intact",
	}

	total, chainBreaks, firstBreak, err := s.verifyChain(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	report.TotalLogs = total
	report.ChainBreaks = chainBreaks
	if firstBreak > 0 {
		report.FirstBreakLogID = &firstBreak
	}

	mismatches, missing, err := s.verifyAnchors(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	report.AnchorMismatch = mismatches
	report.MissingAnchors = missing

	if chainBreaks > 0 || mismatches > 0 {
		report.Status = "compromised"
		s.logger.Log(ctx, Event{
			Event: EventLedgerChainBreak,
			Details: map[string]any{
				"chain_breaks":      chainBreaks,
				"anchor_mismatches": mismatches,
				"first_break_id":    firstBreak,
			},
		})
	} else if missing > 0 {
		report.Status = "degraded"
		report.Details = append(report.Details, fmt.Sprintf("%d days missing external anchors", missing))
	}

	return report, nil
}

func (s *LedgerIntegrityService) verifyChain(ctx context.Context, startDate, endDate time.Time) (int64, int64, int64, error) {
	query := `
		SELECT id, operation, created_at, user_id, amount, transaction_id,
		       related_entity_type, related_entity_id, previous_hash, row_hash
		FROM credit_logs
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY id ASC
	`
	rows, err := s.db.Query(ctx, query, startDate, endDate)
	if err != nil {
		return 0, 0, 0, err
	}
	defer rows.Close()

	var total, chainBreaks, firstBreak int64
	var previousHash string

	for rows.Next() {
		var id, userID int64
		var operation, transactionID string
		var createdAt time.Time
		var amount int
		var entityType, entityID, prevHash, rowHash *string

		if err := rows.Scan(&id, &operation, &createdAt, &userID, &amount, &transactionID, &entityType, &entityID, &prevHash, &rowHash); err != nil {
			return 0, 0, 0, err
		}
		total++

		if rowHash == nil || prevHash == nil {
			// Rows written before the chain migration carry no hashes.
			continue
		}

		if previousHash != "" && *prevHash != previousHash {
			chainBreaks++
			if firstBreak == 0 {
				firstBreak = id
			}
		}

		// Reference is only part of the hash when both entity fields are set,
		// matching how the repository computes it on insert.
		reference := ""
		if entityType != nil && entityID != nil {
			reference = *entityType + ":" + *entityID
		}
		expected := ComputeLogHash(id, operation, createdAt, userID, amount, transactionID, reference, *prevHash)
		if *rowHash != expected {
			chainBreaks++
			if firstBreak == 0 {
				firstBreak = id
			}
		}

		previousHash = *rowHash
	}
	if err := rows.Err(); err != nil {
		return 0, 0, 0, err
	}

	return total, chainBreaks, firstBreak, nil
}

func (s *LedgerIntegrityService) verifyAnchors(ctx context.Context, startDate, endDate time.Time) (int64, int64, error) {
	var mismatches, missing int64

	for d := startDate; d.Before(endDate) || d.Equal(endDate); d = d.AddDate(0, 0, 1) {
		var storedHash string
		query := `SELECT root_hash FROM ledger_anchors WHERE anchor_date = $1`
		if err := s.db.QueryRow(ctx, query, d).Scan(&storedHash); err != nil {
			missing++
			continue
		}

		computedHash, count, _, _, err := s.DailyRoot(ctx, d)
		if err != nil {
			return 0, 0, err
		}
		if count > 0 && computedHash != storedHash {
			mismatches++
		}
	}

	return mismatches, missing, nil
}

func merkleRoot(hashes []string) string {
	if len(hashes) == 0 {
		return ""
	}
	for len(hashes) > 1 {
		var next []string
		for i := 0; i < len(hashes); i += 2 {
			if i+1 < len(hashes) {
				combined := hashes[i] + hashes[i+1]
				hash := sha256.Sum256([]byte(combined))
				next = append(next, hex.EncodeToString(hash[:]))
			} else {
				next = append(next, hashes[i])
			}
		}
		hashes = next
	}
	return hashes[0]
}
