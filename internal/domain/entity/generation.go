package entity

type HostConfig struct {
	Hostname string `json:"hostname" validate:"required,max=253,nmstate_filename"`
	Config   string `json:"config" validate:"required"`
}

type RoleSpec struct {
	Role  Role         `json:"role"`
	Hosts []HostConfig `json:"hosts"`
}

// GenerationRequest is the strict input of a manifest render. Roles are kept in
// the order they are rendered; a role with no hosts is skipped.
type GenerationRequest struct {
	Roles []RoleSpec `json:"roles"`
}

func NewGenerationRequest() GenerationRequest {
	specs := make([]RoleSpec, 0, len(Roles))
	for _, role := range Roles {
		specs = append(specs, RoleSpec{Role: role})
	}
	return GenerationRequest{Roles: specs}
}

func (r GenerationRequest) HostCount() int {
	n := 0
	for _, spec := range r.Roles {
		n += len(spec.Hosts)
	}
	return n
}

func (r *GenerationRequest) Spec(role Role) *RoleSpec {
	for i := range r.Roles {
		if r.Roles[i].Role == role {
			return &r.Roles[i]
		}
	}
	return nil
}
