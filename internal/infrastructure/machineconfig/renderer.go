package machineconfig

import (
	"encoding/base64"
	"fmt"
	"strings"

	"mcgenerator/internal/domain/entity"
	"mcgenerator/internal/domain/repository"
)

// DocumentSeparator precedes every role document, the first one included.
const DocumentSeparator = "---\n"

const (
	NamePrefix = "10-br-ex-"
	FileDir    = "/etc/nmstate/openshift/"
)

const headerTemplate = `apiVersion: machineconfiguration.openshift.io/v1
kind: MachineConfig
metadata:
  labels:
    machineconfiguration.openshift.io/role: %[1]s
  name: %[2]s%[1]s
spec:
  config:
    ignition:
      version: 3.2.0
    storage:
      files:
`

const fileTemplate = `      - contents:
          source: %s
        mode: 0644
        overwrite: true
        path: %s%s.yml
`

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

var _ repository.ManifestRenderer = (*Renderer)(nil)

func (r *Renderer) Render(req entity.GenerationRequest) (string, error) {
	return Generate(req)
}

// Generate renders req into a MachineConfig manifest. Roles are emitted in
// entity.Roles order whatever their order in req, hosts in index order. Roles
// outside entity.Roles are ignored. Nothing is written on error.
func Generate(req entity.GenerationRequest) (string, error) {
	var b strings.Builder
	for _, role := range entity.Roles {
		spec := req.Spec(role)
		if spec == nil || len(spec.Hosts) == 0 {
			continue
		}
		b.WriteString(DocumentSeparator)
		fmt.Fprintf(&b, headerTemplate, spec.Role, NamePrefix)
		for i, host := range spec.Hosts {
			if host.Hostname == "" {
				return "", &entity.MissingFieldError{Role: spec.Role, Index: i, Key: "hostname"}
			}
			if host.Config == "" {
				return "", &entity.MissingFieldError{Role: spec.Role, Index: i, Key: "config"}
			}
			fmt.Fprintf(&b, fileTemplate, DataURL(host.Config), FileDir, host.Hostname)
		}
	}
	return b.String(), nil
}

func EncodePayload(config string) string {
	return base64.StdEncoding.EncodeToString([]byte(config))
}

// DataURL is the ignition source for a file holding config.
func DataURL(config string) string {
	return "data:text/plain;charset=utf-8;base64," + EncodePayload(config)
}

func ManifestName(role entity.Role) string {
	return NamePrefix + string(role)
}

func FilePath(hostname string) string {
	return FileDir + hostname + ".yml"
}
