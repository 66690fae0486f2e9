package scope

import "gorm.io/gorm"

func OrderByOccurredAsc(db *gorm.DB) *gorm.DB {
	return db.Order("occurred_at ASC")
}
