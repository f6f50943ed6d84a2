// internal/services/helpers_test.go
package services

import (
	"fmt"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/culturelense/culturelense-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test keeps suites isolated while
	// letting gorm's pooled connections see the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.CulturalEntity{},
		&models.EntityRelationship{},
		&models.ContentItem{},
		&models.Listing{},
		&models.Purchase{},
		&models.AuditLog{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var userSeq int

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		Email:  fmt.Sprintf("user%d-%s@example.com", userSeq, uuid.New().String()[:8]),
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Sup3r$ecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createApprovedVendor(t *testing.T, db *gorm.DB) (*models.User, *models.Vendor) {
	t.Helper()

	user := createTestUser(t, db, models.UserRoleVendor)
	vendor := &models.Vendor{
		UserID:       user.ID,
		BusinessName: fmt.Sprintf("Heritage House %s", uuid.New().String()[:8]),
		Status:       models.VendorStatusApproved,
	}
	require.NoError(t, db.Create(vendor).Error)
	return user, vendor
}

func createActiveListing(t *testing.T, db *gorm.DB, vendorID uuid.UUID, price float64, quantity int) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		VendorID: vendorID,
		Title:    "Bronze Nataraja replica",
		Price:    price,
		Quantity: quantity,
		Status:   models.ListingStatusActive,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func createTestEntity(t *testing.T, db *gorm.DB) *models.CulturalEntity {
	t.Helper()

	name := fmt.Sprintf("Entity %s", uuid.New().String()[:8])
	entity := &models.CulturalEntity{
		Name:        name,
		Slug:        Slugify(name),
		Type:        models.EntityTypeDeity,
		Description: "Reference entry for testing",
	}
	require.NoError(t, db.Create(entity).Error)
	return entity
}

func createContentItem(t *testing.T, db *gorm.DB, entityID uuid.UUID, isPaid bool, price float64) *models.ContentItem {
	t.Helper()

	item := &models.ContentItem{
		EntityID:   entityID,
		Kind:       models.ContentKindDeepMythology,
		Title:      "Origins and iconography",
		Price:      price,
		IsPaid:     isPaid,
		ContentURL: "content/origins.pdf",
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
