package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the server-side tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReminderJobModel{}, &PushDeviceModel{})
}
