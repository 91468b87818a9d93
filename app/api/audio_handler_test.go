package api

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAudio_StreamsFileBytes(t *testing.T) {
	content := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 1024)
	files := &fakeDrive{streams: map[string][]byte{"a5": content}}
	app := newTestApp(newFakeStore(), files)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audio/a5", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("content type = %q, want audio/mpeg", got)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, content) {
		t.Errorf("body differs from file content: %d bytes vs %d", len(body), len(content))
	}
}

func TestAudio_UnknownFile(t *testing.T) {
	app := newTestApp(newFakeStore(), &fakeDrive{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audio/missing", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
