package game

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const pokerTableSchema = `
CREATE TABLE IF NOT EXISTS poker_table (
	guid             TEXT PRIMARY KEY,
	stage            CHAR(1) NOT NULL,
	min_players      INTEGER NOT NULL,
	max_players      INTEGER NOT NULL,
	players          TEXT NOT NULL,
	pocket_cards     TEXT NOT NULL DEFAULT '',
	community_cards  TEXT NOT NULL DEFAULT '',
	player_to_action TEXT NOT NULL DEFAULT '',
	betting_status   TEXT NOT NULL DEFAULT '',
	score            TEXT NOT NULL DEFAULT '',
	halted           BOOLEAN NOT NULL DEFAULT FALSE,
	halt_reason      TEXT NOT NULL DEFAULT '',
	joinable         BOOLEAN NOT NULL,
	version          BIGINT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
)`

const upsertPokerTable = `
INSERT INTO poker_table (guid, stage, min_players, max_players, players, pocket_cards,
	community_cards, player_to_action, betting_status, score, halted, halt_reason,
	joinable, version, created_at, updated_at)
VALUES (:guid, :stage, :min_players, :max_players, :players, :pocket_cards,
	:community_cards, :player_to_action, :betting_status, :score, :halted, :halt_reason,
	:joinable, :version, :created_at, :updated_at)
ON CONFLICT (guid) DO UPDATE SET
	stage = EXCLUDED.stage,
	players = EXCLUDED.players,
	pocket_cards = EXCLUDED.pocket_cards,
	community_cards = EXCLUDED.community_cards,
	player_to_action = EXCLUDED.player_to_action,
	betting_status = EXCLUDED.betting_status,
	score = EXCLUDED.score,
	halted = EXCLUDED.halted,
	halt_reason = EXCLUDED.halt_reason,
	joinable = EXCLUDED.joinable,
	version = EXCLUDED.version,
	updated_at = EXCLUDED.updated_at`

// PostgresTableStore keeps one row per table in poker_table.
type PostgresTableStore struct {
	db *sqlx.DB
}

func NewPostgresTableStore(ctx context.Context, connStr string) (*PostgresTableStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to postgres")
	}
	if _, err := db.ExecContext(ctx, pokerTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Unable to create poker_table")
	}
	return &PostgresTableStore{db: db}, nil
}

func (p *PostgresTableStore) Load(ctx context.Context, tableID string) (*Table, error) {
	var r tableRecord
	err := p.db.GetContext(ctx, &r, "SELECT * FROM poker_table WHERE guid = $1", tableID)
	if err == sql.ErrNoRows {
		return nil, TableNotFoundError{TableID: tableID}
	} else if err != nil {
		return nil, errors.Wrapf(err, "Unable to load table %s from postgres", tableID)
	}
	return r.toTable()
}

func (p *PostgresTableStore) Save(ctx context.Context, t *Table) error {
	r, err := newTableRecord(t)
	if err != nil {
		return err
	}
	if _, err := p.db.NamedExecContext(ctx, upsertPokerTable, r); err != nil {
		return errors.Wrapf(err, "Unable to save table %s to postgres", t.ID)
	}
	return nil
}

func (p *PostgresTableStore) OpenTables(ctx context.Context) ([]string, error) {
	var ids []string
	err := p.db.SelectContext(ctx, &ids, "SELECT guid FROM poker_table WHERE joinable ORDER BY created_at, guid")
	if err != nil {
		return nil, errors.Wrap(err, "Unable to list open tables from postgres")
	}
	return ids, nil
}

func (p *PostgresTableStore) Close() error {
	return p.db.Close()
}
