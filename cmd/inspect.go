package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/enhance-session/internal"
	"github.com/spf13/cobra"
)

var inspectSampleRows int

// inspectCmd represents the history inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect the history database schema and contents",
	Long: `Inspect the SQLite database behind the history store.

This command shows:
  • Tables, columns and row counts
  • Sample keys with their value sizes
  • How many entries the saved prompt collection decodes to

Without a path the configured history database is inspected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dbPath string
		if len(args) > 0 {
			dbPath = args[0]
		} else {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			if !strings.EqualFold(env.cfg.HistoryBackend, internal.BackendSQLite) {
				return fmt.Errorf("history backend is %q; inspect needs a sqlite database", env.cfg.HistoryBackend)
			}
			dbPath = env.cfg.HistoryPath
		}

		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no history database at %s", dbPath)
		}
		return inspectDatabase(cmd.OutOrStdout(), dbPath, inspectSampleRows)
	},
}

func inspectDatabase(w io.Writer, dbPath string, sample int) error {
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	_, _ = fmt.Fprintf(w, "📋 Database: %s\n", dbPath)
	_, _ = fmt.Fprintf(w, "📊 Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(w, db, tableName, sample); err != nil {
			_, _ = fmt.Fprintf(w, "⚠️  Error inspecting table %s: %v\n", tableName, err)
		}
		_, _ = fmt.Fprintln(w)
	}

	return inspectCollection(w, db)
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(w io.Writer, db *sql.DB, tableName string, sample int) error {
	_, _ = fmt.Fprintf(w, "📦 Table: %s\n", tableName)

	var rowCount int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	_, _ = fmt.Fprintf(w, "📊 Rows: %d\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	_, _ = fmt.Fprintf(w, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		_, _ = fmt.Fprintf(w, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}

	if tableName == "kv" && rowCount > 0 && sample > 0 {
		return showKeys(w, db, sample)
	}
	return nil
}

// ColumnInfo describes one column from PRAGMA table_info
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid, notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showKeys(w io.Writer, db *sql.DB, limit int) error {
	rows, err := db.Query("SELECT key, length(value) FROM kv ORDER BY key LIMIT ?", limit)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	_, _ = fmt.Fprintf(w, "📄 Keys (first %d):\n", limit)
	for rows.Next() {
		var key string
		var size sql.NullInt64
		if err := rows.Scan(&key, &size); err != nil {
			return err
		}
		if !size.Valid {
			_, _ = fmt.Fprintf(w, "  • %s: <NULL>\n", key)
			continue
		}
		_, _ = fmt.Fprintf(w, "  • %s: %d bytes\n", key, size.Int64)
	}
	return rows.Err()
}

// inspectCollection reports whether the saved prompt collection decodes
func inspectCollection(w io.Writer, db *sql.DB) error {
	raw, ok, err := internal.QueryKV(db, internal.HistoryKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", internal.HistoryKey, err)
	}
	if !ok {
		_, _ = fmt.Fprintf(w, "💬 Collection %q: not written yet\n", internal.HistoryKey)
		return nil
	}

	var entries []internal.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		_, _ = fmt.Fprintf(w, "⚠️  Collection %q does not decode: %v\n", internal.HistoryKey, err)
		return nil
	}
	withTask := 0
	for _, e := range entries {
		if e.TaskID != "" {
			withTask++
		}
	}
	_, _ = fmt.Fprintf(w, "💬 Collection %q: %d entr(ies), %d with a task id\n", internal.HistoryKey, len(entries), withTask)
	return nil
}

func init() {
	historyCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 5, "Number of keys to show")
}
