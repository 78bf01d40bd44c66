package repositories

import (
	"github.com/go-faster/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wooshop/internal/models"
)

// OpenDB opens a gorm connection for the given driver ("postgres" or "sqlite").
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Category{},
		&models.Tag{},
		&models.Product{},
		&models.User{},
		&models.Cart{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderNote{},
		&models.Coupon{},
		&models.Review{},
		&models.WishlistItem{},
	)
	if err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	return nil
}
