package epubgen

import (
	"os"

	"github.com/bmaupin/go-epub"
	"github.com/gosimple/slug"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

const (
	// ChapterFilename is the internal name of the only section in the book
	ChapterFilename = "chapter1.xhtml"
	Language        = "en"
)

// Book is the metadata and body of a single chapter e-book
type Book struct {
	Title   string
	Author  string
	Content string
}

// EpubBuilder turns a Book into EPUB bytes
type EpubBuilder interface {
	Build(book Book) ([]byte, error)
}

// Builder stages the book in a temporary file before reading it back.
// TempDir defaults to the OS temp directory.
type Builder struct {
	TempDir string

	write func(e *epub.Epub, path string) error
}

func NewBuilder() *Builder {
	return &Builder{}
}

func newEpubmaker(book Book) (*epub.Epub, error) {
	body, err := wellFormed(book.Content)
	if err != nil {
		return nil, util.Wrap(util.EpubError, "normalizing content", err)
	}

	e := epub.NewEpub(book.Title)
	e.SetAuthor(book.Author)
	e.SetLang(Language)

	// go-epub adds the nav document and the NCX table of contents on write
	if _, err := e.AddSection(body, book.Title, ChapterFilename, ""); err != nil {
		return nil, util.Wrap(util.EpubError, "adding chapter", err)
	}
	return e, nil
}

func tempPattern(title string) string {
	titleSlug := slug.Make(title)
	if len(titleSlug) == 0 {
		return "smtp-to-kindle-*.epub"
	}
	if len(titleSlug) > 40 {
		titleSlug = titleSlug[:40]
	}
	return "smtp-to-kindle-" + titleSlug + "-*.epub"
}

// Build writes the book to a temp file, reads it back and removes the file on every path
func (b *Builder) Build(book Book) ([]byte, error) {
	e, err := newEpubmaker(book)
	if err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp(b.TempDir, tempPattern(book.Title))
	if err != nil {
		return nil, util.Wrap(util.FileError, "creating staging file", err)
	}
	stagingPath := tempFile.Name()
	defer os.Remove(stagingPath)

	if err := tempFile.Close(); err != nil {
		return nil, util.Wrap(util.FileError, "closing staging file", err)
	}

	write := b.write
	if write == nil {
		write = (*epub.Epub).Write
	}
	if err := write(e, stagingPath); err != nil {
		return nil, util.Wrap(util.EpubError, "writing epub", err)
	}

	data, err := os.ReadFile(stagingPath)
	if err != nil {
		return nil, util.Wrap(util.FileError, "reading staged epub", err)
	}
	return data, nil
}

// BuilderFunc adapts a function to EpubBuilder
type BuilderFunc func(book Book) ([]byte, error)

func (f BuilderFunc) Build(book Book) ([]byte, error) {
	return f(book)
}
