package entity

type Role string

const (
	RoleMaster Role = "master"
	RoleWorker Role = "worker"
)

// Roles is the fixed order in which roles are rendered.
var Roles = []Role{RoleMaster, RoleWorker}

func (r Role) String() string {
	return string(r)
}

func (r Role) CountKey() string {
	return string(r) + "_count"
}
