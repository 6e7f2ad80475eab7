package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mcgenerator/internal/domain/entity"
	"mcgenerator/internal/domain/repository"
	"mcgenerator/internal/infrastructure/metrics"
)

type ManifestUseCase interface {
	Generate(ctx context.Context, req entity.GenerationRequest) (*entity.ManifestResult, error)
}

var _ ManifestUseCase = (*ManifestService)(nil)

type ManifestService struct {
	renderer repository.ManifestRenderer
	analyzer repository.ManifestAnalyzer
	logger   *slog.Logger
}

// NewManifestService wires a renderer with an optional analyzer. A nil
// analyzer skips the post-render check.
func NewManifestService(
	renderer repository.ManifestRenderer,
	analyzer repository.ManifestAnalyzer,
	logger *slog.Logger,
) *ManifestService {
	return &ManifestService{
		renderer: renderer,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (s *ManifestService) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.ManifestResult, error) {
	startTime := time.Now()
	requestID := uuid.NewString()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := s.renderer.Render(req)
	if err != nil {
		s.fail(ctx, requestID, err)
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	if s.analyzer != nil {
		issues, err := s.analyzer.Analyze(manifest, req)
		if err != nil {
			s.fail(ctx, requestID, err)
			return nil, fmt.Errorf("analyze manifest: %w", err)
		}
		if len(issues) > 0 {
			err := &entity.AnalysisError{Issues: issues}
			s.fail(ctx, requestID, err)
			return nil, err
		}
	}

	duration := time.Since(startTime)
	metrics.IncManifestGenerated("success")
	metrics.ObserveGenerationDuration(duration)
	metrics.ObserveManifestBytes(len(manifest))
	for _, spec := range req.Roles {
		if len(spec.Hosts) > 0 {
			metrics.AddHostsRendered(spec.Role.String(), len(spec.Hosts))
		}
	}

	s.logger.InfoContext(ctx, "manifest generated",
		"request_id", requestID,
		"hosts", req.HostCount(),
		"bytes", len(manifest),
		"duration", duration,
	)

	return &entity.ManifestResult{
		RequestID: requestID,
		Manifest:  manifest,
		Hosts:     req.HostCount(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *ManifestService) fail(ctx context.Context, requestID string, err error) {
	typ := ErrorType(err)
	metrics.IncManifestGenerated("error")
	metrics.IncError("generator", typ)
	s.logger.WarnContext(ctx, "manifest generation failed", "request_id", requestID, "type", typ, "err", err)
}

// ErrorType maps an error to a short label used in metrics and logs.
func ErrorType(err error) string {
	var (
		missing  *entity.MissingFieldError
		count    *entity.InvalidCountError
		field    *entity.InvalidFieldError
		analysis *entity.AnalysisError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.As(err, &count):
		return "invalid_count"
	case errors.As(err, &field):
		return "invalid_field"
	case errors.As(err, &analysis):
		return "analysis"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
