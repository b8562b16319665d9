package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"user": {
		"exam:take",
		"exam:view-own",
		"template:view",
		"user:change_password",
		"user:delete_account",
	},
	"admin": {
		"*", // everything
	},
}
