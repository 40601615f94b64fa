package datasets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var (
	// ErrInterrupted reports an import stopped by the user.
	ErrInterrupted = errors.New("import interrupted by user")
	// ErrScanTimeout reports a row scan that produced no rows within the
	// configured timeout.
	ErrScanTimeout = errors.New("row scan timed out")
)

// DefaultBatchSize is the number of rows inserted per transaction, so
// long-running imports persist progress periodically.
const DefaultBatchSize = 1000

// ImportOptions configures the import process.
type ImportOptions struct {
	LogErrors   bool          // log bad rows to a table instead of aborting
	BatchSize   int           // rows per transaction, DefaultBatchSize when 0
	ScanTimeout time.Duration // watchdog for stalled providers, 0 disables
	Logger      *zap.Logger   // nop when nil
}

func (o *ImportOptions) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *ImportOptions) batchSize() int {
	if o == nil || o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// ImportToSQLite imports every table of a RowProvider and writes the
// resulting SQLite database to the provided io.Writer.
// If writer is an *os.File backed by a regular file, it writes directly to
// that file so partial data survives an interrupt. Otherwise it builds the
// database in a temporary file and copies it to the writer on success.
func ImportToSQLite(provider RowProvider, writer io.Writer, opts *ImportOptions) error {
	logger := opts.logger()

	var dbPath string
	useTemp := true
	if f, ok := writer.(*os.File); ok {
		stat, err := f.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			dbPath = f.Name()
			useTemp = false
			logger.Debug("importing directly into file", zap.String("path", dbPath))
		}
	}

	if useTemp {
		tmpFile, err := os.CreateTemp("", "nirspipe-*.db")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		dbPath = tmpFile.Name()
		tmpFile.Close() // close so sql.Open can use it
		defer os.Remove(dbPath)
		logger.Debug("importing via temp file", zap.String("path", dbPath))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One connection avoids locking issues and keeps tx.Stmt cheap.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA page_size = 65536; PRAGMA cache_size = -2000;"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set PRAGMAs: %w", err)
	}

	err = populateDB(db, provider, opts)
	db.Close()

	if useTemp {
		if err != nil {
			return err
		}
		f, openErr := os.Open(dbPath)
		if openErr != nil {
			return fmt.Errorf("failed to open temp file for reading: %w", openErr)
		}
		defer f.Close()
		if _, copyErr := io.Copy(writer, f); copyErr != nil {
			return fmt.Errorf("failed to write to output: %w", copyErr)
		}
	}
	return err
}

func populateDB(db *sql.DB, provider RowProvider, opts *ImportOptions) error {
	logger := opts.logger()
	logErrors := opts != nil && opts.LogErrors
	batchSize := opts.batchSize()

	runID := uuid.NewString()
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _import_runs (
		run_id TEXT PRIMARY KEY,
		started DATETIME DEFAULT CURRENT_TIMESTAMP,
		table_count INTEGER
	)`); err != nil {
		return fmt.Errorf("failed to create run table: %w", err)
	}

	if logErrors {
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _import_errors (
			run_id TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			message TEXT,
			table_name TEXT,
			row_data TEXT
		)`); err != nil {
			return fmt.Errorf("failed to create error log table: %w", err)
		}
	}

	tableNames := provider.TableNames()
	if _, err := db.Exec(`INSERT INTO _import_runs (run_id, table_count) VALUES (?, ?)`,
		runID, len(tableNames)); err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	logger.Info("import run started",
		zap.String("run_id", runID),
		zap.Strings("tables", tableNames))

	for _, tableName := range tableNames {
		headers := provider.Headers(tableName)
		if len(headers) == 0 {
			continue // skip tables without headers
		}

		colTypes := provider.ColumnTypes(tableName)
		createSQL := CreateTableSQL(tableName, headers, colTypes)
		if _, err := db.Exec(createSQL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}

		insertSQL, err := InsertSQL(tableName, headers)
		if err != nil {
			return fmt.Errorf("failed to generate insert statement for table %s: %w", tableName, err)
		}
		mainStmt, err := db.Prepare(insertSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement for table %s: %w", tableName, err)
		}
		defer mainStmt.Close()

		var mainLogStmt *sql.Stmt
		if logErrors {
			mainLogStmt, err = db.Prepare(`INSERT INTO _import_errors (run_id, message, table_name, row_data) VALUES (?, ?, ?, ?)`)
			if err != nil {
				return fmt.Errorf("failed to prepare log statement: %w", err)
			}
			defer mainLogStmt.Close()
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		stmt := tx.Stmt(mainStmt)
		var logStmt *sql.Stmt
		if logErrors {
			logStmt = tx.Stmt(mainLogStmt)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		var wd *Watchdog
		var timedOut <-chan struct{}
		if opts != nil && opts.ScanTimeout > 0 {
			wd = NewWatchdog(opts.ScanTimeout)
			timedOut = wd.Start()
		}

		rowCount := 0
		err = provider.ScanRows(tableName, func(row []any, rowErr error) error {
			select {
			case <-ctx.Done():
				return ErrInterrupted
			default:
			}
			if timedOut != nil {
				select {
				case <-timedOut:
					return ErrScanTimeout
				default:
				}
				wd.Kick()
			}

			if rowErr != nil {
				if logErrors {
					if _, err := logStmt.Exec(runID, rowErr.Error(), tableName, fmt.Sprintf("%v", row)); err != nil {
						return fmt.Errorf("failed to log error: %w", err)
					}
					return nil
				}
				return rowErr
			}

			if len(row) < len(headers) {
				padded := make([]any, len(headers))
				copy(padded, row)
				row = padded
			} else if len(row) > len(headers) {
				row = row[:len(headers)]
			}

			if _, err := stmt.Exec(row...); err != nil {
				if logErrors {
					if _, logErr := logStmt.Exec(runID, err.Error(), tableName, fmt.Sprintf("%v", row)); logErr != nil {
						return fmt.Errorf("failed to log insert error: %w", logErr)
					}
					return nil
				}
				return fmt.Errorf("failed to insert row in table %s: %w", tableName, err)
			}

			rowCount++
			if rowCount%batchSize == 0 {
				stmt.Close()
				if logStmt != nil {
					logStmt.Close()
				}
				if err := tx.Commit(); err != nil {
					return fmt.Errorf("failed to commit transaction for table %s: %w", tableName, err)
				}
				tx, err = db.Begin()
				if err != nil {
					return fmt.Errorf("failed to begin transaction: %w", err)
				}
				stmt = tx.Stmt(mainStmt)
				if logErrors {
					logStmt = tx.Stmt(mainLogStmt)
				}
			}
			return nil
		})

		if wd != nil {
			wd.Stop()
		}
		stmt.Close()
		if logStmt != nil {
			logStmt.Close()
		}

		if err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, ErrScanTimeout) {
				logger.Warn("import stopped, committing partial transaction",
					zap.String("table", tableName),
					zap.Error(err))
				if commitErr := tx.Commit(); commitErr != nil {
					logger.Error("failed to commit on stop", zap.Error(commitErr))
				}
				return err
			}
			tx.Rollback()
			return fmt.Errorf("failed to scan rows for table %s: %w", tableName, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction for table %s: %w", tableName, err)
		}
		logger.Info("table imported",
			zap.String("table", tableName),
			zap.Int("rows", rowCount))
	}
	return nil
}
