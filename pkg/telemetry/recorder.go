package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// OperationRecord is one row of execution telemetry: the terminal result of
// a single merge or delete operation.
type OperationRecord struct {
	RunID                    string    `parquet:"run_id"`
	Timestamp                time.Time `parquet:"timestamp"`
	Subject                  string    `parquet:"subject"`
	Survivor                 string    `parquet:"survivor"`
	Merged                   string    `parquet:"merged"` // comma-joined entity names
	EntityType               string    `parquet:"entity_type"`
	Status                   string    `parquet:"status"`
	Message                  string    `parquet:"message"`
	RelationshipsTransferred int       `parquet:"relationships_transferred"`
	Attempts                 int       `parquet:"attempts"`
}

// Recorder buffers operation records and flushes them to a timestamped
// Parquet file on Close. A nil *Recorder is valid and records nothing, so
// callers need no telemetry-enabled branch.
type Recorder struct {
	runID     string
	subject   string
	outputDir string
	logger    *slog.Logger

	mu     sync.Mutex
	buffer []OperationRecord
}

// NewRecorder creates a recorder writing under outputDir. The run ID is a
// time-ordered UUID shared by every record of the run.
func NewRecorder(outputDir, subject string, logger *slog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return &Recorder{
		runID:     id.String(),
		subject:   subject,
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// RunID returns the run identifier stamped on every record.
func (r *Recorder) RunID() string {
	if r == nil {
		return ""
	}
	return r.runID
}

// Record buffers one operation outcome.
func (r *Recorder) Record(survivor string, merged []string, entityType, status, message string, relationships, attempts int) {
	if r == nil {
		return
	}

	rec := OperationRecord{
		RunID:                    r.runID,
		Timestamp:                time.Now().UTC(),
		Subject:                  r.subject,
		Survivor:                 survivor,
		Merged:                   strings.Join(merged, ","),
		EntityType:               entityType,
		Status:                   status,
		Message:                  message,
		RelationshipsTransferred: relationships,
		Attempts:                 attempts,
	}

	r.mu.Lock()
	r.buffer = append(r.buffer, rec)
	r.mu.Unlock()
}

// Close flushes buffered records to a Parquet file. Closing a recorder with
// no records writes nothing.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("%s_operations_%s.parquet", r.subject, time.Now().Format("20060102_150405"))
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry file: %w", err)
	}

	r.logger.Info("wrote telemetry records", "path", path, "records", len(r.buffer))
	r.buffer = r.buffer[:0]
	return nil
}
