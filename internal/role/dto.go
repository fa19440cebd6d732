package role

type CreateRoleDTO struct {
	Name          string  `json:"name" validate:"required"`
	DepartmentID  *int64  `json:"department_id"`
	PermissionIDs []int64 `json:"permission_ids"`
}

type UpdateRoleDTO struct {
	Name                string  `json:"name" validate:"required"`
	DepartmentID        *int64  `json:"department_id"`
	GrantPermissionIDs  []int64 `json:"grant_permission_ids"`
	RevokePermissionIDs []int64 `json:"revoke_permission_ids"`
}
