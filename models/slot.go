package models

import "time"

// Storage slot keys. Each slot holds one JSON document.
const (
	SlotLibrary  = "library"
	SlotSettings = "settings"
)

// StorageSlot is one durable key/JSON-value row. The library and the
// settings each occupy a single slot, rewritten whole on every flush.
type StorageSlot struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}
