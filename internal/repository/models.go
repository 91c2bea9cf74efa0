package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables for every model. It is used in
// development and tests; deployed databases are migrated from the SQL files.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &CarModel{}, &BookingModel{})
}
