package permissions

// Permission es una acción habilitada por rol.
// @Enum data:view, data:manage, data:sync, data:export, users:manage, system:manage
type Permission string

const (
	DataView     Permission = "data:view"
	DataManage   Permission = "data:manage"
	DataSync     Permission = "data:sync"
	DataExport   Permission = "data:export"
	UsersManage  Permission = "users:manage"
	SystemManage Permission = "system:manage"
)

// Roles conocidos. Se repiten acá como string para no importar accounts.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

var all = []Permission{DataView, DataManage, DataSync, DataExport, UsersManage, SystemManage}

// matrix: rol -> permisos. Admin tiene todo.
var matrix = map[string][]Permission{
	RoleAdmin:  all,
	RoleUser:   {DataView, DataManage, DataSync, DataExport},
	RoleViewer: {DataView, DataExport},
}

// ForRole devuelve una copia de los permisos del rol (vacío si el rol no existe).
func ForRole(role string) []Permission {
	src := matrix[role]
	out := make([]Permission, len(src))
	copy(out, src)
	return out
}

func Allowed(role string, p Permission) bool {
	for _, x := range matrix[role] {
		if x == p {
			return true
		}
	}
	return false
}

// All devuelve todos los permisos conocidos.
func All() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}
