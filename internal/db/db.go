package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/query"
)

// Config holds the connection parameters of one console.
type Config struct {
	Host     string
	Port     string
	User     string
	DBName   string
	Password string
}

// ConnString builds a keyword/value conninfo string.
func (c Config) ConnString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%s user=%s dbname=%s", c.Host, c.Port, c.User, c.DBName)
	if c.Password != "" {
		fmt.Fprintf(&b, " password=%s", c.Password)
	}
	return b.String()
}

// Summary renders the config as "host:port user@db" for diagnostics.
func (c Config) Summary() string {
	return fmt.Sprintf("%s:%s %s@%s", c.Host, c.Port, c.User, c.DBName)
}

// DB is a single synchronous connection to the observed server.
type DB struct {
	conn *pgx.Conn
	cfg  Config
}

// Connect opens a connection using cfg.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Summary(), err)
	}
	return &DB{conn: conn, cfg: cfg}, nil
}

// Config returns the connection parameters the DB was opened with.
func (db *DB) Config() Config {
	return db.cfg
}

// Close terminates the connection.
func (db *DB) Close() {
	if db.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = db.conn.Close(ctx)
	}
}

// Query runs sql and materialises the whole result as a text-cell table.
func (db *DB) Query(ctx context.Context, sql string) (*model.Table, error) {
	rows, err := db.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var cells [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		cells = append(cells, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &model.Table{Columns: columns, Cells: cells}, nil
}

// Activity collects the six header counters.
func (db *DB) Activity(ctx context.Context) (model.ActivityCounters, error) {
	var a model.ActivityCounters
	for _, q := range []struct {
		sql  string
		dest *int
	}{
		{query.ActivityCountTotal, &a.Total},
		{query.ActivityCountIdle, &a.Idle},
		{query.ActivityCountIdleInTx, &a.IdleInTx},
		{query.ActivityCountActive, &a.Active},
		{query.ActivityCountWaiting, &a.Waiting},
		{query.ActivityCountOthers, &a.Others},
	} {
		if err := db.conn.QueryRow(ctx, q.sql).Scan(q.dest); err != nil {
			return model.ActivityCounters{}, fmt.Errorf("activity count: %w", err)
		}
	}
	return a, nil
}

// formatValue renders a pgx row value the way the server would print it.
// NULLs become empty cells so they fall out of the numeric diff as zeros.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "t"
		}
		return "f"
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
