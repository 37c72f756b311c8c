package cmd

import (
	"errors"
	"fmt"
	"log"

	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
	companyDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/company"
	rbacDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/rbac"
	tagDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/tag"
	userDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/user"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			if err := clearSeedData(gormDB); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
		}

		if err := seedAll(gormDB, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}

		fmt.Println("Seeding complete.")
	},
}

// clearSeedData truncates domain tables, children before parents so no
// foreign key blocks the delete.
func clearSeedData(db *gorm.DB) error {
	tables := []string{
		"entry_tags",
		"entry_images",
		"user_role_assignments",
		"images",
		"tags",
		"catalog_entries",
		"catalog_categories",
		"users",
		"roles",
		"companies",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seedAll(db *gorm.DB, bcryptCost int) error {
	adminRole, err := ensureRole(db, "admin", "Administrator", []string{"*"}, false)
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}
	editorRole, err := ensureRole(db, "editor", "Catalog Editor", []string{"catalog:*", "tag:*", "image:*"}, false)
	if err != nil {
		return fmt.Errorf("seed editor role: %w", err)
	}
	viewerRole, err := ensureRole(db, "viewer", "Viewer", []string{"catalog:read", "tag:read", "image:read"}, true)
	if err != nil {
		return fmt.Errorf("seed viewer role: %w", err)
	}
	fmt.Println("Seeded system roles: admin, editor, viewer")

	demo, err := ensureCompany(db, "Northside Music Exchange", "northside-music")
	if err != nil {
		return fmt.Errorf("seed demo company: %w", err)
	}
	fmt.Println("Seeded demo company:", demo.Slug)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	seedUsers := []struct {
		email string
		name  string
		role  *rbacDatamodel.Role
	}{
		{"admin@northside.test", "Avery Coleman", adminRole},
		{"editor@northside.test", "Edith Marlowe", editorRole},
		{"viewer@northside.test", "Vera Nash", viewerRole},
	}
	for _, su := range seedUsers {
		u, err := ensureUser(db, demo.ID, su.email, su.name, string(hash))
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		if err := ensureAssignment(db, u.ID, su.role.ID, demo.ID); err != nil {
			return fmt.Errorf("assign %s to %s: %w", su.role.Name, su.email, err)
		}
		fmt.Printf("Seeded user %s with role %s\n", su.email, su.role.Name)
	}

	electrics, err := ensureCategory(db, demo.ID, "Electric Guitars", "Solid and semi-hollow body electrics")
	if err != nil {
		return err
	}
	amps, err := ensureCategory(db, demo.ID, "Amplifiers", "Tube and solid state amplifiers")
	if err != nil {
		return err
	}
	effects, err := ensureCategory(db, demo.ID, "Effects", "Pedals and outboard effects")
	if err != nil {
		return err
	}
	fmt.Println("Seeded catalog categories")

	seedEntries := []catalogDatamodel.Entry{
		{
			CompanyID:      demo.ID,
			CategoryID:     &electrics.ID,
			Name:           "Fender Stratocaster",
			Maker:          "Fender",
			YearFrom:       1962,
			YearTo:         1965,
			PriceLowCents:  1200000,
			PriceHighCents: 2800000,
			Currency:       "USD",
			Notes:          "Pre-CBS examples with original finish sit at the top of the range",
			IsPublished:    true,
		},
		{
			CompanyID:      demo.ID,
			CategoryID:     &electrics.ID,
			Name:           "Gibson Les Paul Standard",
			Maker:          "Gibson",
			YearFrom:       1958,
			YearTo:         1960,
			PriceLowCents:  20000000,
			PriceHighCents: 45000000,
			Currency:       "USD",
			IsPublished:    true,
		},
		{
			CompanyID:      demo.ID,
			CategoryID:     &amps.ID,
			Name:           "Fender Deluxe Reverb",
			Maker:          "Fender",
			ModelNo:        "AB763",
			YearFrom:       1964,
			YearTo:         1967,
			PriceLowCents:  160000,
			PriceHighCents: 320000,
			Currency:       "USD",
			IsPublished:    true,
		},
		{
			CompanyID:      demo.ID,
			CategoryID:     &effects.ID,
			Name:           "Klon Centaur",
			Maker:          "Klon",
			YearFrom:       1994,
			YearTo:         2000,
			PriceLowCents:  350000,
			PriceHighCents: 550000,
			Currency:       "USD",
			Notes:          "Gold case, pricing pending serial verification",
		},
	}
	for i := range seedEntries {
		if err := ensureEntry(db, &seedEntries[i]); err != nil {
			return fmt.Errorf("seed entry %q: %w", seedEntries[i].Name, err)
		}
	}
	fmt.Printf("Seeded %d catalog entries\n", len(seedEntries))

	seedTags := []tagDatamodel.Tag{
		{CompanyID: demo.ID, Name: "vintage", Color: "#7c3aed"},
		{CompanyID: demo.ID, Name: "refinished", Color: "#0ea5e9"},
		{CompanyID: demo.ID, Name: "collector-grade", Color: "#16a34a"},
	}
	for i := range seedTags {
		if err := ensureTag(db, &seedTags[i]); err != nil {
			return fmt.Errorf("seed tag %q: %w", seedTags[i].Name, err)
		}
	}
	fmt.Printf("Seeded %d tags\n", len(seedTags))

	return nil
}

// ensureRole creates a global system role, or refreshes its permission
// set when it already exists so reruns converge on the canonical grants.
func ensureRole(db *gorm.DB, name, displayName string, perms []string, isDefault bool) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := db.Where("name = ? AND company_id IS NULL", name).First(&role).Error
	if err == nil {
		role.DisplayName = displayName
		role.Permissions = perms
		role.IsDefault = isDefault
		role.IsSystemRole = true
		if err := db.Save(&role).Error; err != nil {
			return nil, err
		}
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = rbacDatamodel.Role{
		Name:         name,
		DisplayName:  displayName,
		Permissions:  perms,
		IsDefault:    isDefault,
		IsSystemRole: true,
	}
	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func ensureCompany(db *gorm.DB, name, slug string) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := db.Where("slug = ?", slug).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = companyDatamodel.Company{Name: name, Slug: slug, IsActive: true}
	if err := db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func ensureUser(db *gorm.DB, companyID int64, email, name, passwordHash string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := db.Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u = userDatamodel.User{
		CompanyID:    companyID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func ensureAssignment(db *gorm.DB, userID, roleID, companyID int64) error {
	var existing rbacDatamodel.UserRoleAssignment
	err := db.Where("user_id = ? AND role_id = ? AND company_id = ?", userID, roleID, companyID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	assignment := rbacDatamodel.UserRoleAssignment{
		UserID:    userID,
		RoleID:    roleID,
		CompanyID: companyID,
	}
	return db.Create(&assignment).Error
}

func ensureCategory(db *gorm.DB, companyID int64, name, description string) (*catalogDatamodel.Category, error) {
	var cat catalogDatamodel.Category
	err := db.Where("company_id = ? AND name = ?", companyID, name).First(&cat).Error
	if err == nil {
		return &cat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cat = catalogDatamodel.Category{
		CompanyID:   companyID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func ensureEntry(db *gorm.DB, entry *catalogDatamodel.Entry) error {
	var existing catalogDatamodel.Entry
	err := db.Where("company_id = ? AND name = ? AND maker = ? AND model_no = ?",
		entry.CompanyID, entry.Name, entry.Maker, entry.ModelNo).
		First(&existing).Error
	if err == nil {
		entry.ID = existing.ID
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(entry).Error
}

func ensureTag(db *gorm.DB, t *tagDatamodel.Tag) error {
	var existing tagDatamodel.Tag
	err := db.Where("company_id = ? AND name = ?", t.CompanyID, t.Name).First(&existing).Error
	if err == nil {
		t.ID = existing.ID
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(t).Error
}
