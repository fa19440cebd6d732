package department

type UpsertDepartmentDTO struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}
