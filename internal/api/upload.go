package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/s/learnhub/internal/models"
)

// Upload is a file plus form fields forwarded to an upload endpoint.
type Upload struct {
	Field    string
	FileName string
	File     io.Reader
	Fields   map[string]string
}

func (c *Client) UploadPDF(ctx context.Context, up Upload) (*models.PDF, error) {
	data, err := c.upload(ctx, "pdfs/upload", up)
	if err != nil {
		return nil, err
	}
	var out models.PDF
	if err := DecodeObject(data, &out, "pdf"); err != nil {
		return nil, errors.Wrap(err, "POST pdfs/upload")
	}
	return &out, nil
}

func (c *Client) UploadVideo(ctx context.Context, up Upload) (*models.Video, error) {
	data, err := c.upload(ctx, "videos/upload", up)
	if err != nil {
		return nil, err
	}
	var out models.Video
	if err := DecodeObject(data, &out, "video"); err != nil {
		return nil, errors.Wrap(err, "POST videos/upload")
	}
	return &out, nil
}

// upload streams the multipart body instead of buffering the whole file.
func (c *Client) upload(ctx context.Context, path string, up Upload) ([]byte, error) {
	if up.File == nil {
		return nil, errors.Wrap(ErrValidation, "upload: missing file")
	}
	field := up.Field
	if field == "" {
		field = "file"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		for k, v := range up.Fields {
			if err := mw.WriteField(k, v); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile(field, up.FileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, up.File); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	data, err := c.do(ctx, http.MethodPost, path, nil, pr, mw.FormDataContentType())
	pr.Close()
	return data, err
}
