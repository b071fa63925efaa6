package blackbox

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/doeshing/jarvish/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS command_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT    NOT NULL,
	cwd         TEXT    NOT NULL,
	exit_code   INTEGER NOT NULL,
	stdout_hash TEXT,
	stderr_hash TEXT,
	created_at  TEXT    NOT NULL
);`

// Index is the relational record of command executions, with output bodies
// stored as blobs. The handle is only ever used from the REPL task.
type Index struct {
	db    *sql.DB
	blobs *BlobStore
	log   *zap.Logger
}

// Open creates (or opens) {dataDir}/history.db and {dataDir}/blobs,
// applying the schema idempotently.
func Open(dataDir string, log *zap.Logger) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	blobs, err := NewBlobStore(filepath.Join(dataDir, "blobs"))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Index{db: db, blobs: blobs, log: log}, nil
}

// Close releases the database handle.
func (x *Index) Close() error {
	return x.db.Close()
}

// Record stores one completed invocation: non-empty outputs go to the blob
// store, the row references their identities.
func (x *Index) Record(command string, result domain.CommandResult) error {
	stdoutHash, err := x.blobs.Put([]byte(result.Stdout))
	if err != nil {
		return fmt.Errorf("store stdout blob: %w", err)
	}
	stderrHash, err := x.blobs.Put([]byte(result.Stderr))
	if err != nil {
		return fmt.Errorf("store stderr blob: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	_, err = x.db.Exec(
		`INSERT INTO command_history (command, cwd, exit_code, stdout_hash, stderr_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		command, cwd, result.ExitCode,
		nullable(stdoutHash), nullable(stderrHash),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert command history: %w", err)
	}
	return nil
}

// Recent returns the latest n records, newest first.
func (x *Index) Recent(n int) ([]domain.CommandRecord, error) {
	rows, err := x.db.Query(
		`SELECT id, command, cwd, exit_code, stdout_hash, stderr_hash, created_at
		 FROM command_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.CommandRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ByID fetches one record.
func (x *Index) ByID(id int64) (domain.CommandRecord, error) {
	row := x.db.QueryRow(
		`SELECT id, command, cwd, exit_code, stdout_hash, stderr_hash, created_at
		 FROM command_history WHERE id = ?`, id)
	return scanRecord(row)
}

// LoadOutput decompresses a recorded output stream by its blob identity.
func (x *Index) LoadOutput(hash string) (string, error) {
	content, err := x.blobs.Get(hash)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// RecentContext formats the last n invocations for the assistant's context
// message. When the most recent command failed, its stderr is decompressed
// from blob storage and included verbatim.
func (x *Index) RecentContext(n int) string {
	records, err := x.Recent(n)
	if err != nil {
		x.log.Warn("failed to load history context", zap.Error(err))
		return ""
	}
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recent command history (most recent first):\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "  [%d] %s (cwd: %s, exit: %d, at: %s)\n",
			rec.ID, rec.Command, rec.Cwd, rec.ExitCode, rec.CreatedAt)
	}

	last := records[0]
	if last.ExitCode != 0 && last.StderrHash != "" {
		stderr, err := x.LoadOutput(last.StderrHash)
		if err != nil {
			x.log.Warn("failed to load stderr blob for context",
				zap.String("hash", last.StderrHash), zap.Error(err))
		} else {
			fmt.Fprintf(&b, "\nThe most recent command failed. Its stderr was:\n%s\n", stderr)
		}
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.CommandRecord, error) {
	var rec domain.CommandRecord
	var stdoutHash, stderrHash sql.NullString
	if err := row.Scan(&rec.ID, &rec.Command, &rec.Cwd, &rec.ExitCode,
		&stdoutHash, &stderrHash, &rec.CreatedAt); err != nil {
		return domain.CommandRecord{}, fmt.Errorf("scan history row: %w", err)
	}
	rec.StdoutHash = stdoutHash.String
	rec.StderrHash = stderrHash.String
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
