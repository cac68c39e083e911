package epubgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bmaupin/go-epub"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(content)
	}
	require.NotEmpty(t, r.File)
	assert.Equal(t, "mimetype", r.File[0].Name, "mimetype must be the first entry")
	return files
}

func findSuffix(files map[string]string, suffix string) (string, bool) {
	for name, content := range files {
		if strings.HasSuffix(name, suffix) {
			return content, true
		}
	}
	return "", false
}

func TestBuild_SingleChapterBook(t *testing.T) {
	tempDir := t.TempDir()
	b := &Builder{TempDir: tempDir}

	data, err := b.Build(Book{Title: "Weekly Digest", Author: "Bot", Content: "<p>Hello</p>"})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	files := readZip(t, data)
	assert.Equal(t, "application/epub+zip", files["mimetype"])

	opf, ok := findSuffix(files, ".opf")
	require.True(t, ok, "package document missing")
	assert.Contains(t, opf, "Weekly Digest")
	assert.Contains(t, opf, "Bot")
	assert.Contains(t, opf, ">en<")
	assert.Contains(t, opf, ChapterFilename)

	chapter, ok := findSuffix(files, ChapterFilename)
	require.True(t, ok, "chapter missing")
	assert.Contains(t, chapter, "<p>Hello</p>")

	_, ok = findSuffix(files, "nav.xhtml")
	assert.True(t, ok, "navigation document missing")
	ncx, ok := findSuffix(files, ".ncx")
	require.True(t, ok, "ncx missing")
	assert.Contains(t, ncx, "Weekly Digest")
}

func TestBuild_RemovesStagingFile(t *testing.T) {
	tempDir := t.TempDir()
	b := &Builder{TempDir: tempDir}

	_, err := b.Build(Book{Title: "Weekly Digest", Author: "Bot", Content: "<p>Hello</p>"})
	require.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func assertWellFormedXML(t *testing.T, doc string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, doc)
	}
}

func TestBuild_LooseHTMLBecomesWellFormedChapter(t *testing.T) {
	b := &Builder{TempDir: t.TempDir()}

	data, err := b.Build(Book{Title: "Loose", Author: "Bot", Content: "<p>a<br>b&nbsp;c<p>unclosed"})
	require.NoError(t, err)

	chapter, ok := findSuffix(readZip(t, data), ChapterFilename)
	require.True(t, ok, "chapter missing")
	assertWellFormedXML(t, chapter)
	assert.Contains(t, chapter, "<br/>")
	assert.Contains(t, chapter, "b\u00a0c")
	assert.Contains(t, chapter, "<p>unclosed</p>")
}

func TestWellFormed(t *testing.T) {
	out, err := wellFormed(`<p>a<br>b&nbsp;c<img src="x.png"><script>run()</script>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>a<br/>b\u00a0c<img src=\"x.png\"/><script>run()</script></p>", out)
}

func TestBuild_WriteFailureRemovesStagingFile(t *testing.T) {
	tempDir := t.TempDir()
	b := &Builder{
		TempDir: tempDir,
		write: func(e *epub.Epub, path string) error {
			require.NoError(t, os.WriteFile(path, []byte("partial"), 0644))
			return errors.New("disk full")
		},
	}

	_, err := b.Build(Book{Title: "Weekly Digest", Author: "Bot", Content: "<p>Hello</p>"})
	require.Error(t, err)
	assert.Equal(t, util.EpubError, util.ContextOf(err))
	assert.ErrorContains(t, err, "disk full")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_MissingTempDir(t *testing.T) {
	b := &Builder{TempDir: filepath.Join(t.TempDir(), "does-not-exist")}

	_, err := b.Build(Book{Title: "Weekly Digest", Author: "Bot", Content: "<p>Hello</p>"})
	require.Error(t, err)
	assert.Equal(t, util.FileError, util.ContextOf(err))
}

func TestTempPattern(t *testing.T) {
	assert.Equal(t, "smtp-to-kindle-weekly-digest-*.epub", tempPattern("Weekly Digest"))
	assert.Equal(t, "smtp-to-kindle-*.epub", tempPattern("!!!"))
}

func TestExtractDocument_Fragment(t *testing.T) {
	doc, err := ExtractDocument("<p>Hello</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", doc.Content)
	assert.Empty(t, doc.Title)
}

func TestExtractDocument_FullDocument(t *testing.T) {
	markup := `<!DOCTYPE html>
<html><head><title> Weekly Digest </title><meta name="author" content="Bot"></head>
<body><p>Hello</p></body></html>`

	doc, err := ExtractDocument(markup)
	require.NoError(t, err)
	assert.Equal(t, "Weekly Digest", doc.Title)
	assert.Equal(t, "Bot", doc.Author)
	assert.Equal(t, "<p>Hello</p>", doc.Content)
}

func TestFromURL(t *testing.T) {
	paragraph := "<p>The quick brown fox jumps over the lazy dog, and then keeps running through the field, " +
		"past the river, over the hills, until it reaches the forest where it finally rests for the night.</p>"
	page := "<html><head><title>Fox Report</title></head><body><article>" +
		strings.Repeat(paragraph, 6) + "</article></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	doc, err := FromURL(srv.URL, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Fox Report", doc.Title)
	assert.Contains(t, doc.Content, "<h1>Fox Report</h1>")
	assert.Contains(t, doc.Content, "quick brown fox")
}

func TestFromURL_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := FromURL(url, time.Second)
	require.Error(t, err)
	assert.Equal(t, util.NetworkError, util.ContextOf(err))
}
