package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/FraserHollow/TrolleyEngine/internal/config"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

// EventRow is one engine event persisted for telemetry.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	SessionID string                 `json:"session_id"`
}

// Client persists events and stage outcomes for one play session. It
// implements events.Sink.
type Client struct {
	db        *sql.DB
	sessionID string
}

// New connects using the PG* environment variables and tags everything
// written with a fresh session id. The password honors the *_FILE secret
// convention.
func New() (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "trolley")
	dbname := getEnv("PGDATABASE", "trolley")
	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		host, port, user, dbname)
	if password != "" {
		connStr += " password=" + password
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:        db,
		sessionID: uuid.NewString(),
	}
	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create telemetry tables: %w", err)
	}
	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// SessionID identifies this run in the telemetry tables.
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS engine_events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB,
			session_id TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_engine_events_ts ON engine_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_engine_events_session ON engine_events(session_id);
		CREATE TABLE IF NOT EXISTS stage_outcomes (
			outcome_id     BIGSERIAL PRIMARY KEY,
			ts             TIMESTAMPTZ NOT NULL,
			session_id     TEXT NOT NULL,
			stage_index    INT NOT NULL,
			scene          TEXT NOT NULL,
			final_decision TEXT,
			fatalities     INT NOT NULL,
			decisions      INT NOT NULL,
			time_used      DOUBLE PRECISION NOT NULL,
			time_available DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_stage_outcomes_session ON stage_outcomes(session_id);
	`
	_, err := c.db.Exec(query)
	return err
}

// Append inserts one event row. Satisfies events.Sink.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]interface{}) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	query := `
		INSERT INTO engine_events (ts, level, event, msg, fields, session_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.sessionID)
	return err
}

// RecordStage persists the outcome of one finished stage.
func (c *Client) RecordStage(sceneID string, stageIndex int, s stats.StageStats) error {
	var decision *string
	if s.Result != nil {
		str := s.Result.String()
		decision = &str
	}

	query := `
		INSERT INTO stage_outcomes
			(ts, session_id, stage_index, scene, final_decision,
			 fatalities, decisions, time_used, time_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := c.db.Exec(query, time.Now().UTC(), c.sessionID, stageIndex, sceneID,
		decision, s.NumFatalities, s.NumDecisions, s.DecisionTimeUsed, s.DecisionTimeAvailable)
	return err
}

// Query returns the last N events of this session, newest first.
func (c *Client) Query(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, msg, fields, session_id
		FROM engine_events
		WHERE session_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := c.db.Query(query, c.sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.SessionID); err != nil {
			return nil, err
		}
		if msg.Valid {
			e.Message = &msg.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
