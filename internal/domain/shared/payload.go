package shared

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrPayloadConsumed is returned when a stream-backed payload is read twice
var ErrPayloadConsumed = errors.New("binary payload stream already consumed")

// BinaryPayload is a binary artifact that was acquired either as a fully
// materialized buffer or as an incremental reader. Both forms can be turned
// into the other, so callers pick the transport without caring how the
// payload arrived.
type BinaryPayload struct {
	data     []byte
	reader   io.Reader
	consumed bool
}

// PayloadFromBytes wraps an in-memory buffer
func PayloadFromBytes(data []byte) *BinaryPayload {
	if data == nil {
		data = []byte{}
	}
	return &BinaryPayload{data: data}
}

// PayloadFromReader wraps a reader. The reader is consumed at most once.
func PayloadFromReader(r io.Reader) *BinaryPayload {
	return &BinaryPayload{reader: r}
}

// IsStream reports whether the payload is still backed by an unread reader
func (p *BinaryPayload) IsStream() bool {
	return p.reader != nil && p.data == nil
}

// Bytes returns the whole payload, draining the reader if necessary. A
// stream-backed payload is materialized on first call and cached.
func (p *BinaryPayload) Bytes() ([]byte, error) {
	if p.data != nil {
		return p.data, nil
	}
	if p.consumed {
		return nil, ErrPayloadConsumed
	}
	if p.reader == nil {
		p.data = []byte{}
		return p.data, nil
	}

	data, err := io.ReadAll(p.reader)
	p.consumed = true
	if closer, ok := p.reader.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	p.data = data
	return p.data, nil
}

// Reader returns a reader over the payload. Buffered payloads return a fresh
// reader on every call; stream payloads hand out the underlying reader once.
func (p *BinaryPayload) Reader() (io.Reader, error) {
	if p.data != nil {
		return bytes.NewReader(p.data), nil
	}
	if p.consumed {
		return nil, ErrPayloadConsumed
	}
	if p.reader == nil {
		return bytes.NewReader(nil), nil
	}
	p.consumed = true
	return p.reader, nil
}

// TransferMode selects how a binary artifact crosses a service boundary
type TransferMode string

const (
	TransferModeBytes  TransferMode = "bytes"
	TransferModeStream TransferMode = "stream"
)

// ParseTransferMode matches "stream" case-insensitively; anything else,
// including an empty value, selects the buffered mode.
func ParseTransferMode(s string) TransferMode {
	if strings.EqualFold(strings.TrimSpace(s), string(TransferModeStream)) {
		return TransferModeStream
	}
	return TransferModeBytes
}

// String returns the string representation of TransferMode
func (m TransferMode) String() string {
	return string(m)
}
