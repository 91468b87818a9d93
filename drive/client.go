package drive

import (
	"context"
	"fmt"
	"io"
	"sync"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// listPageSize must cover the whole folder in one call; the folder holds a
// few hundred files at most.
const listPageSize = 1000

// File is one listing entry: the provider's file id and the display name
// carrying the dialogue number convention.
type File struct {
	ID   string
	Name string
}

// FileStorer is the read-only surface of the storage provider the handlers
// depend on.
type FileStorer interface {
	ListFiles(ctx context.Context, folderID, nameFilter string) ([]File, error)
	FetchText(ctx context.Context, fileID string) (string, error)
	FetchStream(ctx context.Context, fileID string) (io.ReadCloser, string, error)
}

// Client wraps the Google Drive API. The underlying service is built once,
// on first use, so that bad credentials fail the request instead of the
// process.
type Client struct {
	credentialsJSON []byte

	once    sync.Once
	svc     *gdrive.Service
	initErr error
}

func NewClient(credentialsJSON []byte) *Client {
	return &Client{
		credentialsJSON: credentialsJSON,
	}
}

func (c *Client) service() (*gdrive.Service, error) {
	c.once.Do(func() {
		creds, err := ReadonlyCredentials(context.Background(), c.credentialsJSON)
		if err != nil {
			c.initErr = err
			return
		}
		c.svc, c.initErr = gdrive.NewService(context.Background(), option.WithCredentials(creds))
	})
	return c.svc, c.initErr
}

// listQuery builds the Drive search expression: non-trashed files directly
// inside the folder, optionally narrowed to one exact name.
func listQuery(folderID, nameFilter string) string {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	if nameFilter != "" {
		q += fmt.Sprintf(" and name = '%s'", nameFilter)
	}
	return q
}

func (c *Client) ListFiles(ctx context.Context, folderID, nameFilter string) ([]File, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	list, err := svc.Files.List().
		Q(listQuery(folderID, nameFilter)).
		PageSize(listPageSize).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error to list drive folder %s: %w", folderID, err)
	}

	files := make([]File, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, File{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

func (c *Client) FetchText(ctx context.Context, fileID string) (string, error) {
	svc, err := c.service()
	if err != nil {
		return "", err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("error to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error to read file %s: %w", fileID, err)
	}
	return string(data), nil
}

// FetchStream returns the file body unbuffered, plus the provider's
// content type when known. The caller owns closing the stream.
func (c *Client) FetchStream(ctx context.Context, fileID string) (io.ReadCloser, string, error) {
	svc, err := c.service()
	if err != nil {
		return nil, "", err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, "", fmt.Errorf("error to download file %s: %w", fileID, err)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
