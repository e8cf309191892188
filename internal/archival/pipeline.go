package archival

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"archive-backend/internal/documents"
	"archive-backend/internal/entities"
	"archive-backend/internal/extract"
	"archive-backend/internal/llm"
	"archive-backend/internal/shared/metrics"
	"archive-backend/internal/shared/storage/object"
	"archive-backend/internal/shared/telemetry"
)

// State is the position of one file's pipeline.
type State string

const (
	StateIdle      State = "idle"
	StateAnalyzing State = "analyzing"
	StateAnalyzed  State = "analyzed"
	StateSaving    State = "saving"
	StateSaved     State = "saved"
)

var (
	// ErrBusy is returned when a transition is requested while another one
	// is still running for the same file.
	ErrBusy = errors.New("pipeline busy")
	// ErrNotAnalyzed is returned when Commit runs before a successful
	// analysis.
	ErrNotAnalyzed = errors.New("no analysis result to commit")
	// ErrAnalysis wraps extraction and model failures.
	ErrAnalysis = errors.New("analysis failed")
	// ErrPersist wraps storage failures during commit.
	ErrPersist = errors.New("persist failed")
)

// AnalysisResult is the reviewed output held between Analyze and Commit.
type AnalysisResult struct {
	FileID     string         `json:"fileId"`
	FileName   string         `json:"fileName"`
	FilePath   string         `json:"filePath"`
	MimeType   string         `json:"mimeType"`
	FileSize   int64          `json:"fileSize"`
	Extraction llm.Extraction `json:"extraction"`
	AnalyzedAt time.Time      `json:"analyzedAt"`
}

// Status is the externally visible pipeline snapshot.
type Status struct {
	State      State           `json:"state"`
	FileID     string          `json:"fileId"`
	Result     *AnalysisResult `json:"result,omitempty"`
	DocumentID string          `json:"documentId,omitempty"`
}

// pipeline is the per-(user, file) state machine. Its mutex serializes
// transitions so a double submission can never commit twice.
type pipeline struct {
	mu         sync.Mutex
	state      State
	result     *AnalysisResult
	documentID string
}

// Service runs the analyze, review, commit pipeline over the read-only file
// gateway. Pipelines are keyed by (userID, fileID); that pair is also the
// commit idempotency key.
type Service struct {
	store object.Store
	model llm.Client
	docs  *documents.Service

	mu        sync.Mutex
	pipelines map[string]*pipeline
}

// NewService constructs a Service.
func NewService(store object.Store, model llm.Client, docs *documents.Service) *Service {
	return &Service{
		store:     store,
		model:     model,
		docs:      docs,
		pipelines: make(map[string]*pipeline),
	}
}

// Analyze runs extraction for one file and holds the result for review.
// A failure returns the pipeline to idle so a retry re-analyzes from
// scratch. The model call runs outside the pipeline lock.
func (s *Service) Analyze(ctx context.Context, userID, fileID string) (Status, error) {
	if strings.TrimSpace(fileID) == "" {
		return Status{}, fmt.Errorf("%w: file id required", ErrAnalysis)
	}
	p := s.pipelineFor(userID, fileID)

	p.mu.Lock()
	switch p.state {
	case StateAnalyzing, StateSaving:
		p.mu.Unlock()
		return Status{}, ErrBusy
	case StateSaved:
		status := snapshot(fileID, p)
		p.mu.Unlock()
		return status, nil
	}
	p.state = StateAnalyzing
	p.result = nil
	p.mu.Unlock()

	metrics.IncAnalyzeStarted()
	started := time.Now()
	result, err := s.analyzeFile(ctx, fileID)
	metrics.ObserveAnalyzeDurationMs(float64(time.Since(started).Milliseconds()))

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateIdle
		metrics.IncAnalyzeFailed()
		telemetry.Warn("pipeline.analyze.failed", map[string]any{
			"user_id": userID,
			"file_id": fileID,
			"error":   err.Error(),
		})
		return Status{}, err
	}
	p.state = StateAnalyzed
	p.result = &result
	metrics.IncAnalyzeCompleted()
	telemetry.Info("pipeline.analyze.completed", map[string]any{
		"user_id":        userID,
		"file_id":        fileID,
		"pipeline_state": string(p.state),
		"entity_count":   len(result.Extraction.Entities),
	})
	return snapshot(fileID, p), nil
}

// Commit persists the held analysis result as a document. A persist failure
// returns the pipeline to analyzed, keeping the result so a retry re-commits
// without re-analysis. After a successful commit the pipeline is saved and
// every further Commit returns the same document ID.
func (s *Service) Commit(ctx context.Context, userID, fileID string, overrides CommitOverrides) (Status, error) {
	p := s.pipelineFor(userID, fileID)

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateSaved:
		return snapshot(fileID, p), nil
	case StateAnalyzing, StateSaving:
		return Status{}, ErrBusy
	case StateAnalyzed:
	default:
		return Status{}, ErrNotAnalyzed
	}
	if p.result == nil {
		p.state = StateIdle
		return Status{}, ErrNotAnalyzed
	}

	p.state = StateSaving
	result := *p.result
	doc, specs := buildDocument(result, overrides)

	created, err := s.docs.Create(ctx, doc, specs)
	if err != nil {
		p.state = StateAnalyzed
		metrics.IncCommitFailed()
		telemetry.Warn("pipeline.commit.failed", map[string]any{
			"user_id": userID,
			"file_id": fileID,
			"error":   err.Error(),
		})
		return Status{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	p.state = StateSaved
	p.documentID = created.ID
	p.result = &result
	metrics.IncCommitSaved()
	telemetry.Info("pipeline.commit.saved", map[string]any{
		"user_id":        userID,
		"file_id":        fileID,
		"document_id":    created.ID,
		"pipeline_state": string(p.state),
	})
	return snapshot(fileID, p), nil
}

// Status reports the pipeline snapshot for one file.
func (s *Service) Status(userID, fileID string) Status {
	p := s.pipelineFor(userID, fileID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot(fileID, p)
}

// Abandon discards the pipeline with no persisted side effects. A saved
// pipeline stays saved; abandoning it only drops the in-memory record.
func (s *Service) Abandon(userID, fileID string) {
	s.mu.Lock()
	delete(s.pipelines, key(userID, fileID))
	s.mu.Unlock()
}

// CommitOverrides lets the reviewer adjust extraction fields before the
// result is persisted. Empty fields keep the analyzed values.
type CommitOverrides struct {
	Title        string
	Content      string
	DocumentType string
	ImageURL     string
}

func buildDocument(result AnalysisResult, overrides CommitOverrides) (documents.Document, []entities.Spec) {
	ext := result.Extraction
	if overrides.Title != "" {
		ext.Title = overrides.Title
	}
	if overrides.Content != "" {
		ext.Content = overrides.Content
	}
	if overrides.DocumentType != "" {
		ext.DocumentType = overrides.DocumentType
	}

	doc := documents.Document{
		ID:           uuid.NewString(),
		Title:        ext.Title,
		FileName:     result.FileName,
		Content:      ext.Content,
		ImageURL:     overrides.ImageURL,
		DocumentType: ext.DocumentType,
		FileID:       result.FileID,
		FilePath:     result.FilePath,
		MimeType:     result.MimeType,
		FileSize:     result.FileSize,
	}
	specs := make([]entities.Spec, 0, len(ext.Entities))
	for _, mention := range ext.Entities {
		specs = append(specs, entities.Spec{
			Name: mention.Name,
			Type: mention.Type,
			Date: mention.Date,
		})
	}
	return doc, specs
}

func (s *Service) analyzeFile(ctx context.Context, fileID string) (AnalysisResult, error) {
	info, err := s.store.Stat(ctx, fileID)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return AnalysisResult{}, err
		}
		return AnalysisResult{}, fmt.Errorf("%w: stat: %v", ErrAnalysis, err)
	}

	text, err := extract.ExtractText(ctx, s.store, fileID, info.MimeType, info.Name)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	extraction, err := s.model.ExtractDocument(ctx, llm.ExtractInput{
		FileName: info.Name,
		MimeType: info.MimeType,
		Text:     text,
	})
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	return AnalysisResult{
		FileID:     info.ID,
		FileName:   info.Name,
		FilePath:   info.Path,
		MimeType:   info.MimeType,
		FileSize:   info.Size,
		Extraction: extraction,
		AnalyzedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) pipelineFor(userID, fileID string) *pipeline {
	k := key(userID, fileID)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pipelines[k]
	if !ok {
		p = &pipeline{state: StateIdle}
		s.pipelines[k] = p
	}
	return p
}

func key(userID, fileID string) string {
	return userID + "|" + fileID
}

func snapshot(fileID string, p *pipeline) Status {
	status := Status{State: p.state, FileID: fileID, DocumentID: p.documentID}
	if p.result != nil {
		copied := *p.result
		status.Result = &copied
	}
	return status
}
