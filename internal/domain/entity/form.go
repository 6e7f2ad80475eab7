package entity

// HostField holds what the operator typed for one host row. Unlike HostConfig
// it may be partially filled.
type HostField struct {
	Index    int
	Hostname string
	Config   string
}

type RoleForm struct {
	Role  Role
	Count string
	Hosts []HostField
}

// FormView is what the page templates render. It never feeds the generator.
type FormView struct {
	Roles     []RoleForm
	Error     string
	Output    string
	RequestID string
}
