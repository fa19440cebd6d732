package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/menu"
	permissionDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with baseline data",
	Long:  `Seed departments, roles, permissions, menus and an initial admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"audit_logs", "permission_requests", "menu_permissions",
				"user_permissions", "role_permissions", "user_roles",
				"menus", "permissions", "roles", "departments", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(db, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Println("Seeding completed")
	},
}

func seed(db *gorm.DB, bcryptCost int) error {
	dept := departmentDatamodel.Department{Name: "IT"}
	if err := firstOrCreate(db, &dept, "name = ?", dept.Name); err != nil {
		return err
	}

	adminRole := roleDatamodel.Role{Name: "Admin", DepartmentID: &dept.DepartmentID}
	if err := firstOrCreate(db, &adminRole, "name = ?", adminRole.Name); err != nil {
		return err
	}

	permissions := []string{
		"users.view", "users.manage",
		"roles.view", "roles.manage",
		"permissions.view", "permissions.manage",
		"departments.view", "departments.manage",
		"menus.view", "menus.manage",
		"requests.view", "requests.review",
		"audit.view",
	}
	permIDs := make(map[string]int64, len(permissions))
	for _, name := range permissions {
		p := permissionDatamodel.Permission{Name: name}
		if err := firstOrCreate(db, &p, "name = ?", name); err != nil {
			return err
		}
		permIDs[name] = p.PermissionID
	}

	menus := []menuDatamodel.Menu{
		{Label: "Users", Route: "/users", MenuKey: "users"},
		{Label: "Roles", Route: "/roles", MenuKey: "roles"},
		{Label: "Permissions", Route: "/permissions", MenuKey: "permissions"},
		{Label: "Departments", Route: "/departments", MenuKey: "departments"},
		{Label: "Menus", Route: "/menus", MenuKey: "menus"},
		{Label: "Requests", Route: "/requests", MenuKey: "requests"},
		{Label: "Audit Trail", Route: "/audit", MenuKey: "audit"},
	}
	for i := range menus {
		if err := firstOrCreate(db, &menus[i], "menu_key = ?", menus[i].MenuKey); err != nil {
			return err
		}
	}

	// Admin gets every permission; every menu links to the permissions whose
	// name contains its key.
	for _, id := range permIDs {
		link := roleDatamodel.RolePermission{RoleID: adminRole.RoleID, PermissionID: id}
		if err := firstOrCreate(db, &link, "role_id = ? AND permission_id = ?", link.RoleID, link.PermissionID); err != nil {
			return err
		}
	}
	for _, m := range menus {
		for name, id := range permIDs {
			if !strings.Contains(name, m.MenuKey) {
				continue
			}
			link := menuDatamodel.MenuPermission{MenuID: m.ID, PermissionID: id}
			if err := firstOrCreate(db, &link, "menu_id = ? AND permission_id = ?", link.MenuID, link.PermissionID); err != nil {
				return err
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcryptCost)
	if err != nil {
		return err
	}
	admin := userDatamodel.User{
		FullName:           "System Admin",
		Email:              "admin@example.com",
		Password:           string(hash),
		UserStatus:         userDatamodel.StatusActive,
		MustChangePassword: true,
	}
	if err := firstOrCreate(db, &admin, "email = ?", admin.Email); err != nil {
		return err
	}

	assignment := userDatamodel.UserRole{UserID: admin.UserID, RoleID: adminRole.RoleID}
	if err := firstOrCreate(db, &assignment, "user_id = ? AND role_id = ?", assignment.UserID, assignment.RoleID); err != nil {
		return err
	}

	fmt.Println("Seeded admin user: admin@example.com (temporary password, change on first sign-in)")
	return nil
}

func firstOrCreate(db *gorm.DB, model interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(model).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(model).Error
}
