package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examforge.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examforge?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  user_id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS question_categories (
  category_id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
  question_id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_type TEXT NOT NULL CHECK (question_type IN ('single','multiple')),
  content TEXT NOT NULL,
  score INTEGER NOT NULL,
  category_id INTEGER NOT NULL REFERENCES question_categories(category_id)
);

CREATE TABLE IF NOT EXISTS question_options (
  option_id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(question_id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  is_correct INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS exam_templates (
  template_id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam_name TEXT NOT NULL,
  exam_type TEXT NOT NULL CHECK (exam_type IN ('normal','makeup','special')),
  duration INTEGER NOT NULL,
  total_score INTEGER NOT NULL,
  single_choice_count INTEGER NOT NULL,
  multiple_choice_count INTEGER NOT NULL,
  available_start INTEGER NOT NULL,
  available_end INTEGER NOT NULL,
  target_category_ids TEXT
);

CREATE TABLE IF NOT EXISTS user_exams (
  user_exam_id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(user_id),
  template_id INTEGER NOT NULL REFERENCES exam_templates(template_id),
  total_score INTEGER,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','finished')),
  created_at INTEGER NOT NULL,
  submitted_at INTEGER
);

CREATE TABLE IF NOT EXISTS user_exam_questions (
  user_exam_question_id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_exam_id TEXT NOT NULL REFERENCES user_exams(user_exam_id) ON DELETE CASCADE,
  question_id INTEGER NOT NULL REFERENCES questions(question_id),
  category_id INTEGER NOT NULL,
  selected_option_ids TEXT NOT NULL DEFAULT '[]',
  is_correct INTEGER NOT NULL DEFAULT 0,
  score INTEGER NOT NULL DEFAULT 0,
  UNIQUE (user_exam_id, question_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  user_id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_categories (
  category_id BIGSERIAL PRIMARY KEY,
  category_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
  question_id BIGSERIAL PRIMARY KEY,
  question_type TEXT NOT NULL CHECK (question_type IN ('single','multiple')),
  content TEXT NOT NULL,
  score INTEGER NOT NULL,
  category_id BIGINT NOT NULL REFERENCES question_categories(category_id)
);

CREATE TABLE IF NOT EXISTS question_options (
  option_id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(question_id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS exam_templates (
  template_id BIGSERIAL PRIMARY KEY,
  exam_name TEXT NOT NULL,
  exam_type TEXT NOT NULL CHECK (exam_type IN ('normal','makeup','special')),
  duration INTEGER NOT NULL,
  total_score INTEGER NOT NULL,
  single_choice_count INTEGER NOT NULL,
  multiple_choice_count INTEGER NOT NULL,
  available_start BIGINT NOT NULL,
  available_end BIGINT NOT NULL,
  target_category_ids TEXT
);

CREATE TABLE IF NOT EXISTS user_exams (
  user_exam_id TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(user_id),
  template_id BIGINT NOT NULL REFERENCES exam_templates(template_id),
  total_score INTEGER,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','finished')),
  created_at BIGINT NOT NULL,
  submitted_at BIGINT
);

CREATE TABLE IF NOT EXISTS user_exam_questions (
  user_exam_question_id BIGSERIAL PRIMARY KEY,
  user_exam_id TEXT NOT NULL REFERENCES user_exams(user_exam_id) ON DELETE CASCADE,
  question_id BIGINT NOT NULL REFERENCES questions(question_id),
  category_id BIGINT NOT NULL,
  selected_option_ids TEXT NOT NULL DEFAULT '[]',
  is_correct BOOLEAN NOT NULL DEFAULT FALSE,
  score INTEGER NOT NULL DEFAULT 0,
  UNIQUE (user_exam_id, question_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
