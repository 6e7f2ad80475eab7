package repository

import "mcgenerator/internal/domain/entity"

// ManifestRenderer turns a generation request into a MachineConfig manifest.
type ManifestRenderer interface {
	Render(req entity.GenerationRequest) (string, error)
}

// ManifestAnalyzer checks a rendered manifest before it is handed back.
type ManifestAnalyzer interface {
	Analyze(manifest string, req entity.GenerationRequest) ([]entity.ManifestIssue, error)
}
