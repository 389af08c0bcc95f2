package samrec

import (
	"bufio"
	"io"

	"github.com/shenwei356/xopen"
)

// Reader yields the data records of a SAM text stream, skipping the @ header.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
	line   int
	n      int64
}

// NewReader reads records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16)}
}

// Open opens a SAM file (plain or gzip); "-" reads standard input.
func Open(path string) (*Reader, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	return &Reader{r: fh.Reader, closer: fh}, nil
}

// Next returns the next data record, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (Record, error) {
	for {
		text, err := r.r.ReadString('\n')
		if len(text) > 0 {
			r.line++
			r.n += int64(len(text))
			if text[0] != '@' && text != "\n" && text != "\r\n" {
				return Parse(text, r.line)
			}
		}
		if err != nil {
			return Record{}, err
		}
	}
}

// Line is the number of the last line read.
func (r *Reader) Line() int { return r.line }

// BytesRead is the number of (decompressed) bytes consumed so far.
func (r *Reader) BytesRead() int64 { return r.n }

// Close releases the underlying file, if the Reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
