package output

import (
	"sync"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// DefaultBatchSize is the number of records handed to a file's writer goroutine at a time.
const DefaultBatchSize = 128

func init() {
	// Reads with an empty QUAL field still get the four FASTQ lines.
	fastx.ForcelyOutputFastq = true
}

// NewRecord builds a FASTQ record. The sequence is not validated against an alphabet.
func NewRecord(name, sequence, quality string) *fastx.Record {
	return &fastx.Record{
		ID:   []byte(name),
		Name: []byte(name),
		Seq: &seq.Seq{
			Alphabet: seq.Unlimit,
			Seq:      []byte(sequence),
			Qual:     []byte(quality),
		},
	}
}

// RecordWriter writes FASTQ records to one file from a dedicated goroutine, in the order they
// were written. Call Close when done.
type RecordWriter struct {
	path    string
	cache   []*fastx.Record
	records chan []*fastx.Record
	done    chan error

	mu  sync.Mutex
	err error

	count  int64
	bytes  int64
	closed bool
}

// NewRecordWriter creates (or truncates) filename; a .gz suffix selects gzip output.
// batchSize is the number of records buffered before they are handed over.
func NewRecordWriter(filename string, batchSize int) (*RecordWriter, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	writer, err := xopen.Wopen(filename)
	if err != nil {
		return nil, err
	}
	w := &RecordWriter{
		path:    filename,
		cache:   make([]*fastx.Record, 0, batchSize),
		records: make(chan []*fastx.Record),
		done:    make(chan error, 1),
	}
	go w.drain(writer)
	return w, nil
}

func (w *RecordWriter) drain(writer *xopen.Writer) {
	for records := range w.records {
		if w.failed() != nil {
			continue
		}
		for _, record := range records {
			record.FormatToWriter(writer, 0)
		}
		// xopen.Writer.Flush drops errors; the embedded bufio.Writer keeps the first one.
		if err := writer.Writer.Flush(); err != nil {
			w.setErr(err)
		}
	}
	if err := writer.Writer.Flush(); err != nil {
		w.setErr(err)
	}
	writer.Close()
	w.done <- w.failed()
}

func (w *RecordWriter) setErr(err error) {
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
}

func (w *RecordWriter) failed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Write queues one record. It returns the first error the file has hit so far.
func (w *RecordWriter) Write(record *fastx.Record) error {
	if err := w.failed(); err != nil {
		return err
	}
	w.cache = append(w.cache, record)
	w.count++
	w.bytes += int64(len(record.Name) + len(record.Seq.Seq) + len(record.Seq.Qual) + 6)
	if len(w.cache) == cap(w.cache) {
		w.Flush()
	}
	return nil
}

// Flush hands the buffered records to the writer goroutine.
func (w *RecordWriter) Flush() {
	if len(w.cache) == 0 {
		return
	}
	w.records <- w.cache
	w.cache = make([]*fastx.Record, 0, cap(w.cache))
}

// Close flushes, waits for the goroutine to finish the file and closes it. Closing twice is a
// no-op that returns the first result again.
func (w *RecordWriter) Close() error {
	if w.closed {
		return w.failed()
	}
	w.closed = true
	w.Flush()
	close(w.records)
	return <-w.done
}

// Path is the file being written.
func (w *RecordWriter) Path() string { return w.path }

// Count is the number of records written.
func (w *RecordWriter) Count() int64 { return w.count }

// Bytes is the uncompressed size of the records written.
func (w *RecordWriter) Bytes() int64 { return w.bytes }
