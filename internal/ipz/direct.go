package ipz

import (
	"fmt"
	"io"
)

// DirectReader fetches one keyword straight from a backing seekable stream
// without a full table-of-contents walk. It trusts a caller-supplied record
// offset map; keeping that map consistent with the image's actual layout is
// the caller's responsibility. Concurrent reads against the same stream
// handle must be serialized by the caller, as seek-then-read is not atomic.
type DirectReader struct {
	src         io.ReadSeeker
	startOffset int64
	offsets     map[string]int64
	cfg         PlatformConfig
}

// NewDirectReader wraps an open stream whose VPD region begins at
// startOffset. offsets maps record name to the record's byte position
// within the region.
func NewDirectReader(src io.ReadSeeker, startOffset int64, offsets map[string]int64, cfg PlatformConfig) (*DirectReader, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrIO)
	}
	return &DirectReader{
		src:         src,
		startOffset: startOffset,
		offsets:     offsets,
		cfg:         cfg,
	}, nil
}

// ReadKeyword locates record/keyword in the stream, decodes it with the
// same rules as a full parse, and returns the value.
func (d *DirectReader) ReadKeyword(record, keyword string) (string, error) {
	recOffset, ok := d.offsets[record]
	if !ok {
		return "", parseErr(ErrKeywordNotFound, record, keyword, 0,
			"record not present in offset map")
	}
	base := d.startOffset + recOffset
	if _, err := d.src.Seek(base+recordHeaderSkip, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: seek record %s: %v", ErrIO, record, err)
	}
	name, err := d.readString(recordNameLen)
	if err != nil {
		return "", err
	}
	if name != record {
		return "", parseErr(ErrRecordMismatch, record, keyword, int(base),
			fmt.Sprintf("found %q", name))
	}
	return d.scanKeywords(record, keyword)
}

// scanKeywords walks the keyword section from the current stream position
// until it finds the target, hits the PF terminator, or runs out of data.
func (d *DirectReader) scanKeywords(record, keyword string) (string, error) {
	for {
		kw, err := d.readString(kwNameLen)
		if err != nil {
			return "", err
		}
		if kw == lastKeywordName {
			return "", parseErr(ErrKeywordNotFound, record, keyword, 0, "")
		}
		var length int
		if kw[0] == poundKwPrefix {
			raw, err := d.readExact(2)
			if err != nil {
				return "", err
			}
			length = int(raw[0]) | int(raw[1])<<8
		} else {
			raw, err := d.readExact(1)
			if err != nil {
				return "", err
			}
			length = int(raw[0])
		}
		if kw != keyword {
			if _, err := d.src.Seek(int64(length), io.SeekCurrent); err != nil {
				return "", fmt.Errorf("%w: skip %s/%s: %v", ErrIO, record, kw, err)
			}
			continue
		}
		data, err := d.readExact(length)
		if err != nil {
			return "", err
		}
		value, err := decodeKeyword(d.cfg.EncodingFor(record, keyword), data)
		if err != nil {
			return "", parseErr(ErrDecode, record, keyword, 0, err.Error())
		}
		return value, nil
	}
}

func (d *DirectReader) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.src, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, parseErr(ErrOutOfBounds, "", "", 0, "stream ended inside keyword section")
		}
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return buf, nil
}

func (d *DirectReader) readString(n int) (string, error) {
	buf, err := d.readExact(n)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
