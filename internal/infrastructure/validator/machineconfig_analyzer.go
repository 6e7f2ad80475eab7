package validator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"mcgenerator/internal/domain/entity"
	"mcgenerator/internal/domain/repository"
	"mcgenerator/internal/infrastructure/machineconfig"
)

const (
	machineConfigAPIVersion = "machineconfiguration.openshift.io/v1"
	machineConfigKind       = "MachineConfig"
	roleLabel               = "machineconfiguration.openshift.io/role"
	ignitionVersion         = "3.2.0"
	fileMode                = "0644"
)

type machineConfigDoc struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Labels map[string]string `yaml:"labels"`
		Name   string            `yaml:"name"`
	} `yaml:"metadata"`
	Spec struct {
		Config struct {
			Ignition struct {
				Version string `yaml:"version"`
			} `yaml:"ignition"`
			Storage struct {
				Files []ignitionFile `yaml:"files"`
			} `yaml:"storage"`
		} `yaml:"config"`
	} `yaml:"spec"`
}

type ignitionFile struct {
	Contents struct {
		Source string `yaml:"source"`
	} `yaml:"contents"`
	Mode      string `yaml:"mode"`
	Overwrite bool   `yaml:"overwrite"`
	Path      string `yaml:"path"`
}

// MachineConfigAnalyzer decodes a rendered manifest and checks that every
// document matches the request it was rendered from.
type MachineConfigAnalyzer struct{}

func NewMachineConfigAnalyzer() *MachineConfigAnalyzer {
	return &MachineConfigAnalyzer{}
}

var _ repository.ManifestAnalyzer = (*MachineConfigAnalyzer)(nil)

func (a *MachineConfigAnalyzer) Analyze(manifest string, req entity.GenerationRequest) ([]entity.ManifestIssue, error) {
	docs, err := decodeDocuments(manifest)
	if err != nil {
		return nil, err
	}

	var expected []entity.RoleSpec
	for _, role := range entity.Roles {
		if spec := req.Spec(role); spec != nil && len(spec.Hosts) > 0 {
			expected = append(expected, *spec)
		}
	}

	var issues []entity.ManifestIssue
	if len(docs) != len(expected) {
		issues = append(issues, entity.ManifestIssue{
			Document: -1,
			Message:  fmt.Sprintf("expected %d documents, found %d", len(expected), len(docs)),
		})
		return issues, nil
	}

	for i, doc := range docs {
		issues = append(issues, a.analyzeDocument(i, doc, expected[i])...)
	}
	return issues, nil
}

func (a *MachineConfigAnalyzer) analyzeDocument(idx int, doc *machineConfigDoc, spec entity.RoleSpec) []entity.ManifestIssue {
	var issues []entity.ManifestIssue
	add := func(format string, args ...any) {
		issues = append(issues, entity.ManifestIssue{Document: idx, Message: fmt.Sprintf(format, args...)})
	}

	if doc.APIVersion != machineConfigAPIVersion {
		add("apiVersion is %q, want %q", doc.APIVersion, machineConfigAPIVersion)
	}
	if doc.Kind != machineConfigKind {
		add("kind is %q, want %q", doc.Kind, machineConfigKind)
	}
	if got := doc.Metadata.Labels[roleLabel]; got != spec.Role.String() {
		add("role label is %q, want %q", got, spec.Role)
	}
	if want := machineconfig.ManifestName(spec.Role); doc.Metadata.Name != want {
		add("name is %q, want %q", doc.Metadata.Name, want)
	}
	if doc.Spec.Config.Ignition.Version != ignitionVersion {
		add("ignition version is %q, want %q", doc.Spec.Config.Ignition.Version, ignitionVersion)
	}

	files := doc.Spec.Config.Storage.Files
	if len(files) != len(spec.Hosts) {
		add("%s has %d files, want %d", spec.Role, len(files), len(spec.Hosts))
		return issues
	}
	for i, f := range files {
		host := spec.Hosts[i]
		if want := machineconfig.FilePath(host.Hostname); f.Path != want {
			add("file %d path is %q, want %q", i, f.Path, want)
		}
		if f.Contents.Source != machineconfig.DataURL(host.Config) {
			add("file %d (%s) payload does not match its config", i, host.Hostname)
		}
		if f.Mode != fileMode {
			add("file %d (%s) mode is %q, want %q", i, host.Hostname, f.Mode, fileMode)
		}
		if !f.Overwrite {
			add("file %d (%s) is not marked overwrite", i, host.Hostname)
		}
	}
	return issues
}

func decodeDocuments(manifest string) ([]*machineConfigDoc, error) {
	dec := yaml.NewDecoder(strings.NewReader(manifest))
	var docs []*machineConfigDoc
	for {
		var doc machineConfigDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode manifest document %d: %w", len(docs), err)
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}
