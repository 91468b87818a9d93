package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/felipetav/dialogue-backend/drive"
	"github.com/felipetav/dialogue-backend/store"
	"github.com/felipetav/dialogue-backend/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// File naming contract with the storage folder: audio<N>.<ext> and
// transcript<N>.txt, number at the start of the name, case-insensitive.
var (
	audioNameRe      = regexp.MustCompile(`(?i)^audio(\d+)\.`)
	transcriptNameRe = regexp.MustCompile(`(?i)^transcript(\d+)\.txt$`)
)

type DialogueHandler struct {
	dialogueStore store.DialogueStorer
	files         drive.FileStorer
	folderID      string
}

func NewDialogueHandler(dialogueStore store.DialogueStorer, files drive.FileStorer, folderID string) *DialogueHandler {
	return &DialogueHandler{
		dialogueStore: dialogueStore,
		files:         files,
		folderID:      folderID,
	}
}

// dialogueAssets are the storage file ids discovered for one number.
type dialogueAssets struct {
	audioID      string
	transcriptID string
}

func parseDialogueFile(name string) (number int, isAudio bool, ok bool) {
	if m := audioNameRe.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false, false
		}
		return n, true, true
	}
	if m := transcriptNameRe.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false, false
		}
		return n, false, true
	}
	return 0, false, false
}

// HandleListDialogues merges the storage folder listing with the persisted
// records. Numbers known only to storage appear with a synthesized label;
// numbers known only to the store keep whatever the store says.
func (h *DialogueHandler) HandleListDialogues(c *fiber.Ctx) error {
	files, err := h.files.ListFiles(context.Background(), h.folderID, "")
	if err != nil {
		return err
	}

	assets := make(map[int]*dialogueAssets)
	for _, f := range files {
		number, isAudio, ok := parseDialogueFile(f.Name)
		if !ok {
			continue
		}
		a := assets[number]
		if a == nil {
			a = &dialogueAssets{}
			assets[number] = a
		}
		if isAudio {
			a.audioID = f.ID
		} else {
			a.transcriptID = f.ID
		}
	}

	dialogues, err := h.dialogueStore.GetAll(context.Background())
	if err != nil {
		return err
	}

	records := make(map[int]*types.Dialogue, len(dialogues))
	for i := range dialogues {
		records[dialogues[i].Number] = &dialogues[i]
	}

	numbers := make(map[int]struct{}, len(assets)+len(records))
	for n := range assets {
		numbers[n] = struct{}{}
	}
	for n := range records {
		numbers[n] = struct{}{}
	}

	items := make([]types.DialogueListItem, 0, len(numbers))
	for n := range numbers {
		item := types.DialogueListItem{
			Number: n,
			Label:  fmt.Sprintf("Dialogue %d", n),
		}
		if a := assets[n]; a != nil {
			item.AudioID = a.audioID
		}
		if d := records[n]; d != nil {
			item.Label = d.DisplayTitle()
			item.HasHighlights = d.HasHighlights()
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Number < items[j].Number
	})

	return c.JSON(items)
}

// HandleGetDialogue returns transcript and highlights for one number,
// caching the transcript in the store on first fetch. A number with no
// record and no storage file is a soft miss: empty payload, status 200,
// never a 404. Dependents rely on that contract.
func (h *DialogueHandler) HandleGetDialogue(c *fiber.Ctx) error {
	number, numErr := strconv.Atoi(c.Params("number"))

	resp := types.TranscriptResponse{
		Transcript: "",
		Highlights: []types.Highlight{},
	}
	if numErr != nil {
		// Non-numeric input matches nothing; same as an unknown number.
		return c.JSON(resp)
	}

	d, err := h.dialogueStore.GetByNumber(context.Background(), number)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if d == nil || d.TranscriptText == "" {
		d, err = h.cacheTranscript(context.Background(), number, d)
		if err != nil {
			return err
		}
	}

	if d != nil {
		resp.Transcript = d.TranscriptText
		resp.Highlights = types.NormalizedHighlights(d.Highlights)
	}
	return c.JSON(resp)
}

// cacheTranscript looks for transcript<number>.txt in the folder and, when
// found, downloads the text and persists it on the record, creating the
// record if none exists yet. Returns the record as loaded or created, nil
// when storage has no transcript either.
func (h *DialogueHandler) cacheTranscript(ctx context.Context, number int, d *types.Dialogue) (*types.Dialogue, error) {
	files, err := h.files.ListFiles(ctx, h.folderID, fmt.Sprintf("transcript%d.txt", number))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return d, nil
	}

	text, err := h.files.FetchText(ctx, files[0].ID)
	if err != nil {
		return nil, err
	}

	if d == nil {
		d = &types.Dialogue{
			ID:     uuid.New(),
			Number: number,
		}
	}
	d.TranscriptText = text

	if err := h.dialogueStore.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// HandleSaveHighlights replaces the dialogue's highlight set wholesale with
// the submitted list. The record is created on first save. Last writer wins.
func (h *DialogueHandler) HandleSaveHighlights(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.HighlightList
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errs := params.Validate(); len(errs) > 0 {
		return NewValidationError(errs)
	}

	d, err := h.dialogueStore.GetByNumber(context.Background(), number)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		d = &types.Dialogue{
			ID:     uuid.New(),
			Number: number,
		}
	}

	d.Highlights = params.ToHighlights(time.Now())

	if err := h.dialogueStore.Save(context.Background(), d); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"result": "ok"})
}

// HandleAllHighlights flattens every stored highlight into one sequence for
// the review dataset, tagging each entry with its dialogue number. Dialogues
// without highlights are omitted entirely.
func (h *DialogueHandler) HandleAllHighlights(c *fiber.Ctx) error {
	dialogues, err := h.dialogueStore.GetAllWithHighlights(context.Background())
	if err != nil {
		return err
	}

	entries := make([]types.FlatHighlight, 0)
	for _, d := range dialogues {
		for _, hl := range d.Highlights {
			hl = hl.Normalized()
			entries = append(entries, types.FlatHighlight{
				Russian:        hl.Russian,
				Translation:    hl.Translation,
				FullSentence:   hl.FullSentence,
				TranslatedWord: hl.TranslatedWord,
				DialogueNumber: d.Number,
			})
		}
	}

	return c.JSON(entries)
}
