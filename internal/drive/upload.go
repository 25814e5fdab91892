package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	uploadPath             = "/upload/drive/v3/files"
	statusResumeIncomplete = 308
)

// upload sends content through a resumable session regardless of its size,
// chunkSize bytes per request. The session URI is kept for the whole
// transfer; a chunk the server only partly persisted is resent from the
// offset it reports.
func (a *driveAPI) upload(ctx context.Context, meta Entry, content io.Reader) (Entry, error) {
	session, err := a.openSession(ctx, meta)
	if err != nil {
		return Entry{}, err
	}

	buf := make([]byte, 0, a.chunkSize)
	var offset int64
	eof := false

	for {
		if !eof && len(buf) < a.chunkSize {
			n, err := io.ReadFull(content, buf[len(buf):a.chunkSize])
			buf = buf[:len(buf)+n]
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				eof = true
			case err != nil:
				return Entry{}, fmt.Errorf("read upload content: %w", err)
			}
		}

		total := "*"
		if eof {
			total = strconv.FormatInt(offset+int64(len(buf)), 10)
		}

		f, next, err := a.putChunk(ctx, session, buf, offset, total)
		if err != nil {
			return Entry{}, err
		}
		if f != nil {
			return fromFile(f), nil
		}

		sent := next - offset
		if sent < 0 || sent > int64(len(buf)) {
			return Entry{}, fmt.Errorf("upload session reported offset %d outside chunk at %d", next, offset)
		}
		if eof && sent == int64(len(buf)) {
			return Entry{}, fmt.Errorf("upload session incomplete after final chunk")
		}

		n := copy(buf, buf[sent:])
		buf = buf[:n]
		offset = next
	}
}

func (a *driveAPI) openSession(ctx context.Context, meta Entry) (string, error) {
	body, err := json.Marshal(&drivev3.File{
		Name:     meta.Name,
		Parents:  meta.Parents,
		MimeType: meta.MimeType,
	})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("uploadType", "resumable")
	q.Set("supportsAllDrives", "true")
	q.Set("fields", fileFields)
	target := googleapi.ResolveRelative(a.svc.BasePath, uploadPath) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if meta.MimeType != "" {
		req.Header.Set("X-Upload-Content-Type", meta.MimeType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}

	session := resp.Header.Get("Location")
	if session == "" {
		return "", fmt.Errorf("upload session: missing Location header")
	}
	return session, nil
}

// putChunk sends chunk at offset. It returns the created file when the
// transfer is complete, or the next offset the server expects.
func (a *driveAPI) putChunk(ctx context.Context, session string, chunk []byte, offset int64, total string) (*drivev3.File, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, session, bytes.NewReader(chunk))
	if err != nil {
		return nil, 0, err
	}
	req.ContentLength = int64(len(chunk))
	if len(chunk) == 0 {
		req.Header.Set("Content-Range", "bytes */"+total)
	} else {
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%s", offset, offset+int64(len(chunk))-1, total))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == statusResumeIncomplete {
		next, err := persistedOffset(resp.Header.Get("Range"))
		if err != nil {
			return nil, 0, err
		}
		return nil, next, nil
	}

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, 0, err
	}

	var f drivev3.File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, 0, fmt.Errorf("decode uploaded file: %w", err)
	}
	return &f, 0, nil
}

// persistedOffset parses a "bytes=0-N" Range header into N+1. No header means
// nothing has been persisted.
func persistedOffset(header string) (int64, error) {
	if header == "" {
		return 0, nil
	}
	_, last, ok := strings.Cut(strings.TrimPrefix(header, "bytes="), "-")
	if !ok {
		return 0, fmt.Errorf("upload session: malformed Range %q", header)
	}
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("upload session: malformed Range %q", header)
	}
	return n + 1, nil
}
