package internal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxMediaSize int64 = 5 << 20

var (
	ErrMediaTooLarge = errors.New("media file too large")
	ErrDraftClosed   = errors.New("media draft already closed")
)

// MediaDraft collects attachments for a memory that has not been created
// yet. Decoded file contents are held until the draft is submitted,
// cancelled via Close, or the item is removed.
type MediaDraft struct {
	ids     IDGenerator
	maxSize int64
	items   []MediaAttachment
	closed  bool
}

func NewMediaDraft(ids IDGenerator, maxSize int64) *MediaDraft {
	if maxSize <= 0 {
		maxSize = DefaultMaxMediaSize
	}
	return &MediaDraft{ids: ids, maxSize: maxSize}
}

// AttachFile reads path and adds it to the draft.
func (d *MediaDraft) AttachFile(path string) (MediaAttachment, error) {
	if d.closed {
		return MediaAttachment{}, ErrDraftClosed
	}

	info, err := os.Stat(path)
	if err != nil {
		return MediaAttachment{}, fmt.Errorf("stat media: %w", err)
	}
	if info.Size() > d.maxSize {
		return MediaAttachment{}, fmt.Errorf("%s (%d bytes): %w", info.Name(), info.Size(), ErrMediaTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MediaAttachment{}, fmt.Errorf("read media: %w", err)
	}
	return d.Attach(filepath.Base(path), data)
}

// Attach adds in-memory content, sniffing its MIME type and encoding it as
// a data URI.
func (d *MediaDraft) Attach(name string, data []byte) (MediaAttachment, error) {
	if d.closed {
		return MediaAttachment{}, ErrDraftClosed
	}
	if int64(len(data)) > d.maxSize {
		return MediaAttachment{}, fmt.Errorf("%s (%d bytes): %w", name, len(data), ErrMediaTooLarge)
	}

	mime := DetectMIME(data)
	att := MediaAttachment{
		ID:   d.ids.NewID(),
		Data: EncodeDataURI(mime, data),
		Type: mime,
		Name: name,
	}
	d.items = append(d.items, att)
	return att, nil
}

// Remove releases one pending attachment.
func (d *MediaDraft) Remove(id string) bool {
	idx := slices.IndexFunc(d.items, func(a MediaAttachment) bool { return a.ID == id })
	if idx < 0 {
		return false
	}
	d.items[idx] = MediaAttachment{}
	d.items = slices.Delete(d.items, idx, idx+1)
	return true
}

func (d *MediaDraft) Items() []MediaAttachment {
	return slices.Clone(d.items)
}

func (d *MediaDraft) Len() int {
	return len(d.items)
}

// Submit hands the attachments over and closes the draft.
func (d *MediaDraft) Submit() ([]MediaAttachment, error) {
	if d.closed {
		return nil, ErrDraftClosed
	}
	items := d.items
	if items == nil {
		items = []MediaAttachment{}
	}
	d.items = nil
	d.closed = true
	return items, nil
}

// Close drops every pending attachment. Safe to call after Submit.
func (d *MediaDraft) Close() error {
	clear(d.items)
	d.items = nil
	d.closed = true
	return nil
}

func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	base, _, _ := strings.Cut(mt, ";")
	return strings.TrimSpace(base)
}

func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI reverses EncodeDataURI.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mime, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return mime, data, nil
}
