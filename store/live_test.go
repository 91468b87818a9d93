package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/felipetav/dialogue-backend/types"

	"github.com/google/uuid"
)

// Numbers in this range belong to the live test; cleaned up afterwards.
const liveTestNumberBase = 900000

// openLiveStore connects to the Postgres instance described by the PG_*
// environment. Skipped when PG_HOST is unset.
func openLiveStore(t *testing.T) *PostgresStore {
	t.Helper()
	if os.Getenv("PG_HOST") == "" {
		t.Skip("PG_HOST not set, skipping live database test")
	}

	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))

	s, err := NewPostgresStore(ctx, connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	t.Cleanup(func() {
		s.pool.Exec(ctx, "delete from dialogues where number >= $1", liveTestNumberBase)
		s.Close()
	})
	return s
}

func TestLiveStore_CreateAndGet(t *testing.T) {
	s := openLiveStore(t)
	ctx := context.Background()

	d := &types.Dialogue{
		ID:             uuid.New(),
		Number:         liveTestNumberBase + 1,
		Title:          "Live test",
		TranscriptText: "Привет!",
	}
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &types.Dialogue{ID: uuid.New(), Number: d.Number}
	if err := s.Create(ctx, dup); !errors.Is(err, ErrDuplicateNumber) {
		t.Errorf("duplicate create: err = %v, want ErrDuplicateNumber", err)
	}

	got, err := s.GetByNumber(ctx, d.Number)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Live test" || got.TranscriptText != "Привет!" {
		t.Errorf("got %+v", got)
	}
	if got.Highlights == nil || len(got.Highlights) != 0 {
		t.Errorf("highlights = %v, want empty array", got.Highlights)
	}

	if _, err := s.GetByNumber(ctx, liveTestNumberBase+999); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing number: err = %v, want sql.ErrNoRows", err)
	}
}

func TestLiveStore_SaveUpsertsHighlights(t *testing.T) {
	s := openLiveStore(t)
	ctx := context.Background()

	word := "hi"
	d := &types.Dialogue{
		ID:     uuid.New(),
		Number: liveTestNumberBase + 2,
		Highlights: []types.Highlight{
			{Russian: "привет", Translation: "hi", FullSentence: "привет, как дела", TranslatedWord: &word},
		},
	}
	// Save without a prior Create must insert.
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("save insert: %v", err)
	}

	d.Highlights = []types.Highlight{{Russian: "пока", Translation: "bye"}}
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("save update: %v", err)
	}

	got, err := s.GetByNumber(ctx, d.Number)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Highlights) != 1 || got.Highlights[0].Russian != "пока" {
		t.Errorf("highlights not replaced wholesale: %+v", got.Highlights)
	}

	withHighlights, err := s.GetAllWithHighlights(ctx)
	if err != nil {
		t.Fatalf("get all with highlights: %v", err)
	}
	found := false
	for _, cur := range withHighlights {
		if cur.Number == d.Number {
			found = true
		}
	}
	if !found {
		t.Errorf("dialogue %d missing from GetAllWithHighlights", d.Number)
	}
}
