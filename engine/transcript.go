package engine

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	defaultTranscriptRecords = 1000
	transcriptFlushInterval  = 100 * time.Millisecond
)

// Direction tells which side of an exchange a record belongs to.
type Direction uint8

const (
	DirSent Direction = iota
	DirReceived
	DirError
)

func (d Direction) marker() string {
	switch d {
	case DirSent:
		return ">"
	case DirReceived:
		return "<"
	default:
		return "!"
	}
}

// Record is one entry of a client session.
type Record struct {
	Time time.Time
	Dir  Direction
	Data []byte
}

// Payload renders Data as text when it is printable and as hex otherwise.
func (r Record) Payload() string {
	if printable(r.Data) {
		return string(r.Data)
	}
	return "hex:" + hex.EncodeToString(r.Data)
}

func (r Record) String() string {
	return fmt.Sprintf("[%s] %s %s", r.Time.Format("15:04:05"), r.Dir.marker(), r.Payload())
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Transcript keeps the most recent records of a client session and, when
// given a path, appends every record to that file.
type Transcript struct {
	mu      sync.Mutex
	ring    []Record
	next    int
	wrapped bool
	closed  bool

	file    *os.File
	pending chan Record
	done    chan struct{}
}

func NewTranscript(filePath string, capacity int) (*Transcript, error) {
	if capacity <= 0 {
		capacity = defaultTranscriptRecords
	}
	t := &Transcript{
		ring: make([]Record, capacity),
		done: make(chan struct{}),
	}

	if filePath == "" {
		close(t.done)
		return t, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	t.file = f
	t.pending = make(chan Record, 100)
	go t.persist()

	return t, nil
}

func (t *Transcript) Sent(msg []byte)     { t.add(DirSent, msg) }
func (t *Transcript) Received(msg []byte) { t.add(DirReceived, msg) }

func (t *Transcript) Error(err error) {
	if err != nil {
		t.add(DirError, []byte(err.Error()))
	}
}

func (t *Transcript) add(dir Direction, data []byte) {
	if t == nil {
		return
	}
	rec := Record{Time: time.Now(), Dir: dir, Data: append([]byte(nil), data...)}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.ring[t.next] = rec
	t.next++
	if t.next == len(t.ring) {
		t.next = 0
		t.wrapped = true
	}
	if t.pending != nil {
		t.pending <- rec
	}
}

// Records returns the retained records, oldest first.
func (t *Transcript) Records() []Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.wrapped {
		return append([]Record(nil), t.ring[:t.next]...)
	}
	out := make([]Record, 0, len(t.ring))
	out = append(out, t.ring[t.next:]...)
	return append(out, t.ring[:t.next]...)
}

// ReadAll formats the retained records one per line.
func (t *Transcript) ReadAll() string {
	var sb strings.Builder
	for _, rec := range t.Records() {
		sb.WriteString(rec.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (t *Transcript) persist() {
	defer close(t.done)

	w := bufio.NewWriter(t.file)
	defer w.Flush()

	ticker := time.NewTicker(transcriptFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-t.pending:
			if !ok {
				return
			}
			fmt.Fprintln(w, rec.String())
		case <-ticker.C:
			w.Flush()
		}
	}
}

// Close writes out pending records and closes the file.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.pending != nil {
		close(t.pending)
	}
	t.mu.Unlock()

	<-t.done
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}
