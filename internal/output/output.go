// Package output persists rendered documents. Every writer acquires its
// resource per document and releases it on every path.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/synth"
)

// Writer stores one rendered document.
type Writer interface {
	Write(ctx context.Context, doc synth.Document) error
}

// WriteError reports a document that could not be stored.
type WriteError struct {
	Kind model.ObjectKind
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DirWriter writes each document under Root at its logical name.
type DirWriter struct {
	Root string
}

// NewDirWriter returns a writer rooted at dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{Root: dir}
}

// Write creates the document atomically: a temp file in the target
// directory is written, closed and renamed into place.
func (w *DirWriter) Write(ctx context.Context, doc synth.Document) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Kind: doc.Kind, Name: doc.Name, Err: err}
	}
	if err := w.write(doc); err != nil {
		return &WriteError{Kind: doc.Kind, Name: doc.Name, Err: err}
	}
	return nil
}

func (w *DirWriter) write(doc synth.Document) (err error) {
	target := filepath.Join(w.Root, filepath.FromSlash(doc.LogicalName))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".extforge-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(doc.Data); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// MemoryWriter keeps documents in memory keyed by logical name.
type MemoryWriter struct {
	mu   sync.Mutex
	docs map[string]synth.Document
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{docs: make(map[string]synth.Document)}
}

func (w *MemoryWriter) Write(ctx context.Context, doc synth.Document) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Kind: doc.Kind, Name: doc.Name, Err: err}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[doc.LogicalName] = doc
	return nil
}

// Get returns the document stored under a logical name.
func (w *MemoryWriter) Get(logicalName string) (synth.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[logicalName]
	return doc, ok
}

// Names returns the stored logical names in sorted order.
func (w *MemoryWriter) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.docs))
	for n := range w.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Multi fans one document out to several writers, stopping at the first
// failure.
type Multi []Writer

func (m Multi) Write(ctx context.Context, doc synth.Document) error {
	for _, w := range m {
		if err := w.Write(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
