// Package testdb opens an in-memory sqlite database with the same schema
// as the production store, for repository and HTTP tests. A single pooled
// connection keeps every query on the one in-memory database and
// serializes concurrent writers the way the production store's
// single-document updates do.
package testdb

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE campaigns (
    id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    category TEXT NOT NULL DEFAULT 'General',
    progress INTEGER NOT NULL DEFAULT 0,
    target INTEGER NOT NULL DEFAULT 10000,
    time_left TEXT NOT NULL DEFAULT 'N/A',
    image TEXT NOT NULL,
    urgent INTEGER NOT NULL DEFAULT 0,
    organiser_id TEXT NOT NULL REFERENCES users (id),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE campaign_supporters (
    campaign_id TEXT NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users (id),
    joined_at DATETIME NOT NULL,
    PRIMARY KEY (campaign_id, user_id)
);

CREATE TABLE events (
    id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL,
    event_date DATETIME NOT NULL,
    date_text TEXT NOT NULL DEFAULT '',
    time_text TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    description TEXT,
    category TEXT NOT NULL DEFAULT 'General',
    featured INTEGER NOT NULL DEFAULT 0,
    event_type TEXT NOT NULL DEFAULT 'In-Person',
    organiser_id TEXT NOT NULL REFERENCES users (id),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE event_attendees (
    event_id TEXT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users (id),
    joined_at DATETIME NOT NULL,
    PRIMARY KEY (event_id, user_id)
);
`

func Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
