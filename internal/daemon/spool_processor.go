package daemon

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/epubgen"
	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

const maxProcessedEntries = 1000

// DefaultAuthor is used when neither the document nor the config names one
const DefaultAuthor = "smtp-to-kindle"

// Deliverer sends one request and reports the outcome
type Deliverer interface {
	Deliver(ctx context.Context, req kindle.Request) kindle.Result
}

type ProcessedDocument struct {
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

type ProcessedState struct {
	Documents []ProcessedDocument `json:"documents"`
	LastCheck time.Time           `json:"last_check"`
}

// SpoolDocument is an HTML file waiting in the spool
type SpoolDocument struct {
	Path    string
	Hash    string
	Content string
}

type SpoolProcessor struct {
	statePath string
	state     ProcessedState
	cfg       config.ConfigProvider
	deliverer Deliverer
	logger    logger.LoggerInterface
}

func NewSpoolProcessor(cfg config.ConfigProvider, deliverer Deliverer, log logger.LoggerInterface) (*SpoolProcessor, error) {
	if cfg.GetPidFile() == "" {
		return nil, fmt.Errorf("pid file is not configured")
	}
	statePath := filepath.Join(filepath.Dir(cfg.GetPidFile()), "processed_documents.json")

	processor := &SpoolProcessor{
		statePath: statePath,
		state:     ProcessedState{Documents: make([]ProcessedDocument, 0)},
		cfg:       cfg,
		deliverer: deliverer,
		logger:    log,
	}

	processor.loadState()
	return processor, nil
}

func isHTMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm" || ext == ".xhtml"
}

// ReadDocuments returns the spool files that have not been delivered yet
func (sp *SpoolProcessor) ReadDocuments() ([]SpoolDocument, error) {
	spoolPath := sp.cfg.GetSpoolPath()

	info, err := os.Stat(spoolPath)
	if err != nil {
		return nil, fmt.Errorf("spool path does not exist: %w", err)
	}

	var paths []string
	if info.IsDir() {
		files, err := os.ReadDir(spoolPath)
		if err != nil {
			return nil, fmt.Errorf("error reading spool directory: %w", err)
		}
		for _, file := range files {
			if file.IsDir() || !isHTMLFile(file.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(spoolPath, file.Name()))
		}
	} else {
		paths = []string{spoolPath}
	}

	var documents []SpoolDocument
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			sp.logger.Warnf("Error reading file %s: %v", path, err)
			continue
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			continue
		}
		documents = append(documents, SpoolDocument{
			Path:    path,
			Hash:    sp.hashDocument(data),
			Content: string(data),
		})
	}

	return sp.filterNewDocuments(documents), nil
}

func (sp *SpoolProcessor) filterNewDocuments(documents []SpoolDocument) []SpoolDocument {
	var newDocuments []SpoolDocument
	processedHashes := make(map[string]bool)

	for _, processed := range sp.state.Documents {
		processedHashes[processed.Hash] = true
	}

	for _, doc := range documents {
		if !processedHashes[doc.Hash] {
			newDocuments = append(newDocuments, doc)
		}
	}

	return newDocuments
}

func (sp *SpoolProcessor) hashDocument(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// request turns a spool document into a delivery using the configured account
func (sp *SpoolProcessor) request(doc SpoolDocument) (kindle.Request, error) {
	extracted, err := epubgen.ExtractDocument(doc.Content)
	if err != nil {
		return kindle.Request{}, err
	}

	title := extracted.Title
	if title == "" {
		title = util.FileStem(doc.Path)
	}
	author := extracted.Author
	if author == "" {
		author = sp.cfg.GetAuthor()
	}
	if author == "" {
		author = DefaultAuthor
	}

	return kindle.Request{
		Author:      author,
		Title:       title,
		Content:     extracted.Content,
		KindleEmail: sp.cfg.GetReceiver(),
		SenderEmail: sp.cfg.GetSender(),
		AppPassword: sp.cfg.GetPassword(),
		SMTPServer:  sp.cfg.GetServer(),
		SMTPPort:    strconv.Itoa(sp.cfg.GetPort()),
	}, nil
}

// ProcessDocuments delivers each document and remembers the ones that went out.
// Failed documents stay in the spool and are retried on the next cycle.
func (sp *SpoolProcessor) ProcessDocuments(ctx context.Context, documents []SpoolDocument) ([]string, error) {
	if len(documents) == 0 {
		return []string{}, nil
	}

	var delivered []string
	now := time.Now()

	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			break
		}

		req, err := sp.request(doc)
		if err != nil {
			sp.logger.Errorf("Skipping %s: %v", doc.Path, err)
			continue
		}

		res := sp.deliverer.Deliver(ctx, req)
		if !res.OK {
			sp.logger.Errorf("%s: %s", doc.Path, res.Message)
			continue
		}
		sp.logger.Info(res.Message)

		sp.state.Documents = append(sp.state.Documents, ProcessedDocument{
			Path:      doc.Path,
			Hash:      doc.Hash,
			Title:     req.Title,
			Timestamp: now,
		})
		delivered = append(delivered, doc.Path)
	}

	sp.state.LastCheck = now

	if len(sp.state.Documents) > maxProcessedEntries {
		sort.Slice(sp.state.Documents, func(i, j int) bool {
			return sp.state.Documents[i].Timestamp.After(sp.state.Documents[j].Timestamp)
		})
		sp.state.Documents = sp.state.Documents[:maxProcessedEntries]
	}

	if err := sp.saveState(); err != nil {
		sp.logger.Warnf("failed to save processed state: %v", err)
	}

	return delivered, nil
}

// State returns a copy of what has been delivered so far
func (sp *SpoolProcessor) State() ProcessedState {
	state := sp.state
	state.Documents = append([]ProcessedDocument(nil), sp.state.Documents...)
	return state
}

func (sp *SpoolProcessor) loadState() {
	data, err := os.ReadFile(sp.statePath)
	if err != nil {
		return
	}

	if err := json.Unmarshal(data, &sp.state); err != nil {
		sp.logger.Warnf("failed to load processed state: %v", err)
		sp.state = ProcessedState{Documents: make([]ProcessedDocument, 0)}
	}
}

func (sp *SpoolProcessor) saveState() error {
	data, err := json.MarshalIndent(sp.state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(sp.statePath, data, 0644)
}
