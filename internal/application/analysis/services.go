package analysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/application"
	"github.com/bryanwahyu/truthlens/internal/domain/ai"
	domain "github.com/bryanwahyu/truthlens/internal/domain/analysis"
	"github.com/bryanwahyu/truthlens/internal/domain/files"
)

// Analysis modes, used for logs and metrics.
const (
	ModeText   = "text"
	ModeFile   = "file"
	ModeImage  = "image"
	ModeUpload = "upload"
	ModeStored = "stored"
)

// Recorder receives one event per finished analysis.
type Recorder interface {
	RecordAnalysis(mode string, level domain.ReliabilityLevel, err error)
}

// Service runs the extraction -> model -> parse pipeline.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	AI        ai.Client
	Extractor domain.Extractor
	Store     files.Store
	Clock     application.Clock
	Recorder  Recorder
	Log       *zap.Logger
	// NewID generates upload ids; defaults to uuid.NewString.
	NewID func() string
}

// AnalyzeText sends raw text to the model.
func (s *Service) AnalyzeText(ctx context.Context, content string) (res domain.Result, err error) {
	defer s.track(ModeText, s.now(), &res, &err)

	if strings.TrimSpace(content) == "" {
		return domain.Result{}, domain.ErrEmptyContent
	}
	reply, err := s.AI.AnalyzeText(ctx, content)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Parse(content, reply), nil
}

// AnalyzeFile extracts text from a stored document and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, path, fileType string) (res domain.Result, err error) {
	defer s.track(ModeFile, s.now(), &res, &err)
	return s.analyzeFile(ctx, path, fileType)
}

// AnalyzeImage sends the raw image bytes to the vision model. No OCR happens here.
func (s *Service) AnalyzeImage(ctx context.Context, path string) (res domain.Result, err error) {
	defer s.track(ModeImage, s.now(), &res, &err)
	return s.analyzeImage(ctx, path)
}

// AnalyzeUpload saves the upload, analyzes it and removes it again.
// Removal failures are logged and never change the result.
func (s *Service) AnalyzeUpload(ctx context.Context, filename string, r io.Reader) (res domain.Result, err error) {
	defer s.track(ModeUpload, s.now(), &res, &err)

	if !files.IsAllowed(filename) {
		return domain.Result{}, fmt.Errorf("%w: %s", files.ErrDisallowedType, filename)
	}
	id := s.newID()
	path, err := s.Store.Save(ctx, id, filename, r)
	if err != nil {
		return domain.Result{}, err
	}
	defer s.cleanup(id)

	s.logger().Info("upload saved", zap.String("file_id", id), zap.String("file_name", filename))
	return s.analyzePath(ctx, path)
}

// AnalyzeStored analyzes a previously uploaded file by id. The file is kept.
func (s *Service) AnalyzeStored(ctx context.Context, id string) (res domain.Result, err error) {
	defer s.track(ModeStored, s.now(), &res, &err)

	path, err := s.Store.Resolve(ctx, id)
	if err != nil {
		return domain.Result{}, err
	}
	if rel, ok := s.Store.(files.Releaser); ok {
		defer s.release(rel, id)
	}
	return s.analyzePath(ctx, path)
}

// Preview saves the upload and returns its id plus the first characters of
// its text, without calling the model. The file stays for AnalyzeStored.
func (s *Service) Preview(ctx context.Context, filename string, r io.Reader) (domain.UploadResponse, error) {
	if !files.IsAllowed(filename) {
		return domain.UploadResponse{}, fmt.Errorf("%w: %s", files.ErrDisallowedType, filename)
	}
	id := s.newID()
	path, err := s.Store.Save(ctx, id, filename, r)
	if err != nil {
		return domain.UploadResponse{}, err
	}

	preview := "[Image file - will be analyzed with vision model]"
	if !files.IsImage(filename) {
		text, err := s.Extractor.Extract(ctx, path, files.TypeOf(filename))
		if err != nil {
			s.cleanup(id)
			return domain.UploadResponse{}, err
		}
		preview = domain.Truncate(text, domain.UploadPreviewLimit)
	}

	return domain.UploadResponse{
		Status:         "success",
		FileID:         id,
		FileName:       filename,
		ContentPreview: preview,
	}, nil
}

func (s *Service) analyzePath(ctx context.Context, path string) (domain.Result, error) {
	if files.IsImage(path) {
		return s.analyzeImage(ctx, path)
	}
	return s.analyzeFile(ctx, path, files.TypeOf(path))
}

func (s *Service) analyzeFile(ctx context.Context, path, fileType string) (domain.Result, error) {
	text, err := s.Extractor.Extract(ctx, path, fileType)
	if err != nil {
		return domain.Result{}, err
	}
	reply, err := s.AI.AnalyzeText(ctx, text)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Parse(text, reply), nil
}

func (s *Service) analyzeImage(ctx context.Context, path string) (domain.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Result{}, err
	}
	reply, err := s.AI.AnalyzeImage(ctx, data)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Parse(domain.ImageContentLabel, reply), nil
}

// cleanup runs detached from the request context so a cancelled request still removes its file.
func (s *Service) cleanup(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.Store.Delete(ctx, id); err != nil {
		s.logger().Warn("failed to remove temporary upload", zap.String("file_id", id), zap.Error(err))
		return
	}
	s.logger().Debug("temporary upload removed", zap.String("file_id", id))
}

func (s *Service) release(rel files.Releaser, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rel.Release(ctx, id); err != nil {
		s.logger().Warn("failed to release local copy", zap.String("file_id", id), zap.Error(err))
	}
}

func (s *Service) track(mode string, start time.Time, res *domain.Result, err *error) {
	elapsed := s.now().Sub(start)
	if *err != nil {
		s.logger().Warn("analysis failed", zap.String("mode", mode), zap.Duration("elapsed", elapsed), zap.Error(*err))
	} else {
		s.logger().Info("analysis complete",
			zap.String("mode", mode),
			zap.String("reliability", string(res.ReliabilityLevel)),
			zap.Int("recommendations", len(res.Recommendations)),
			zap.Duration("elapsed", elapsed),
		)
	}
	if s.Recorder != nil {
		s.Recorder.RecordAnalysis(mode, res.ReliabilityLevel, *err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
