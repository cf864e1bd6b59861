package db

import (
	"errors"

	"github.com/diewo77/go-tailorshop/internal/models"
	"gorm.io/gorm"
)

// DefaultShop is created on first start so a fresh install can take orders.
var DefaultShop = models.Shop{Name: "My Tailor Shop"}

// Seed inserts baseline data. It is idempotent.
func Seed(db *gorm.DB) error {
	var existing models.Shop
	err := db.Order("id").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	shop := DefaultShop
	return db.Create(&shop).Error
}
