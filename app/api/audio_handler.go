package api

import (
	"context"

	"github.com/felipetav/dialogue-backend/drive"

	"github.com/gofiber/fiber/v2"
)

type AudioHandler struct {
	files drive.FileStorer
}

func NewAudioHandler(files drive.FileStorer) *AudioHandler {
	return &AudioHandler{
		files: files,
	}
}

// HandleAudio pipes the storage file straight into the response body. The
// stream is consumed at the pace the client accepts it, so large files are
// never buffered server-side. If the upstream read fails after the first
// byte the connection is dropped; no JSON error is written onto a partially
// sent binary body.
func (h *AudioHandler) HandleAudio(c *fiber.Ctx) error {
	body, contentType, err := h.files.FetchStream(context.Background(), c.Params("fileId"))
	if err != nil {
		return err
	}

	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	// SendStream closes body once the response is fully written or aborted.
	return c.SendStream(body)
}
