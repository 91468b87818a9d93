package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/felipetav/dialogue-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateNumber is returned by Create when the dialogue number is
// already taken. Normal flows avoid it via find-before-create.
var ErrDuplicateNumber = errors.New("dialogue number already exists")

type DialogueStorer interface {
	GetByNumber(context.Context, int) (*types.Dialogue, error)
	GetAll(context.Context) ([]types.Dialogue, error)
	GetAllWithHighlights(context.Context) ([]types.Dialogue, error)
	Create(context.Context, *types.Dialogue) error
	Save(context.Context, *types.Dialogue) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

const dialogueColumns = "id, number, title, audio_drive_id, transcript_text, highlights"

func scanDialogue(rows pgx.Rows) (*types.Dialogue, error) {
	d := &types.Dialogue{}
	var highlights []byte
	if err := rows.Scan(
		&d.ID,
		&d.Number,
		&d.Title,
		&d.AudioDriveID,
		&d.TranscriptText,
		&highlights); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(highlights, &d.Highlights); err != nil {
		return nil, fmt.Errorf("error to decode highlights of dialogue %d: %w", d.Number, err)
	}
	return d, nil
}

func marshalHighlights(hs []types.Highlight) ([]byte, error) {
	if hs == nil {
		hs = []types.Highlight{}
	}
	return json.Marshal(hs)
}

func (p *PostgresStore) GetByNumber(ctx context.Context, number int) (*types.Dialogue, error) {
	rows, err := p.pool.Query(ctx, "select "+dialogueColumns+" from dialogues where number = $1", number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	return scanDialogue(rows)
}

func (p *PostgresStore) GetAll(ctx context.Context) ([]types.Dialogue, error) {
	return p.getMany(ctx, "select "+dialogueColumns+" from dialogues")
}

// GetAllWithHighlights returns only records carrying at least one highlight,
// for the flattened training dataset.
func (p *PostgresStore) GetAllWithHighlights(ctx context.Context) ([]types.Dialogue, error) {
	return p.getMany(ctx, "select "+dialogueColumns+" from dialogues where jsonb_array_length(highlights) > 0")
}

func (p *PostgresStore) getMany(ctx context.Context, query string) ([]types.Dialogue, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dialogues []types.Dialogue
	for rows.Next() {
		d, err := scanDialogue(rows)
		if err != nil {
			return nil, err
		}
		dialogues = append(dialogues, *d)
	}
	return dialogues, rows.Err()
}

func (p *PostgresStore) Create(ctx context.Context, d *types.Dialogue) error {
	highlights, err := marshalHighlights(d.Highlights)
	if err != nil {
		return err
	}

	query := `INSERT INTO dialogues (id, number, title, audio_drive_id, transcript_text, highlights)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = p.pool.Exec(
		ctx,
		query,
		d.ID,
		d.Number,
		d.Title,
		d.AudioDriveID,
		d.TranscriptText,
		highlights,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

// Save upserts by number: the loaded record's fields win wholesale,
// highlights included. Last writer wins, no conflict detection.
func (p *PostgresStore) Save(ctx context.Context, d *types.Dialogue) error {
	highlights, err := marshalHighlights(d.Highlights)
	if err != nil {
		return err
	}

	query := `INSERT INTO dialogues (id, number, title, audio_drive_id, transcript_text, highlights)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (number) DO UPDATE SET
			title = EXCLUDED.title,
			audio_drive_id = EXCLUDED.audio_drive_id,
			transcript_text = EXCLUDED.transcript_text,
			highlights = EXCLUDED.highlights
			`
	_, err = p.pool.Exec(
		ctx,
		query,
		d.ID,
		d.Number,
		d.Title,
		d.AudioDriveID,
		d.TranscriptText,
		highlights,
	)

	return err
}

func (p *PostgresStore) createDialogueTables(ctx context.Context) error {

	query := `
	CREATE TABLE IF NOT EXISTS dialogues (
		id UUID PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		audio_drive_id TEXT NOT NULL DEFAULT '',
		transcript_text TEXT NOT NULL DEFAULT '',
		highlights JSONB NOT NULL DEFAULT '[]'::jsonb
	);

	CREATE INDEX IF NOT EXISTS idx_dialogues_number ON dialogues(number);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createDialogueTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
