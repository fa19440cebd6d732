package postgres

import (
	"github.com/frahmantamala/access-management/internal"
	deptDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/department"
	"github.com/frahmantamala/access-management/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll() ([]department.Department, error) {
	var rows []deptDatamodel.Department
	if err := r.db.Order("department_id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	depts := make([]department.Department, 0, len(rows))
	for _, row := range rows {
		depts = append(depts, toDomain(row))
	}
	return depts, nil
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var row deptDatamodel.Department
	if err := r.db.Where("department_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	dept := toDomain(row)
	return &dept, nil
}

func (r *DepartmentRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&deptDatamodel.Department{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("department_id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DepartmentRepository) Create(d *department.Department) error {
	row := deptDatamodel.Department{
		Name:        d.Name,
		Description: d.Description,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	d.ID = row.DepartmentID
	d.CreatedAt = row.CreatedAt
	return nil
}

func (r *DepartmentRepository) Update(d *department.Department) error {
	return r.db.Model(&deptDatamodel.Department{}).
		Where("department_id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":        d.Name,
			"description": d.Description,
		}).Error
}

func (r *DepartmentRepository) Delete(id int64) (bool, error) {
	res := r.db.Where("department_id = ?", id).Delete(&deptDatamodel.Department{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DepartmentRepository) IsReferencedByRoles(id int64) (bool, error) {
	var count int64
	err := r.db.Table("roles").Where("department_id = ?", id).Count(&count).Error
	return count > 0, err
}

func toDomain(row deptDatamodel.Department) department.Department {
	return department.Department{
		ID:          row.DepartmentID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
