package permission

// UpsertPermissionDTO is shared by create and update requests.
type UpsertPermissionDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
