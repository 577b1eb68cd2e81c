package models

import "gorm.io/gorm"

// Setting 存储站点级别的键值对设置
//
// Plugin options are stored the same way: one row per option name whose
// Value holds the JSON-encoded option record.
type Setting struct {
	gorm.Model
	Key   string `gorm:"type:varchar(255);uniqueIndex"`
	Value string `gorm:"type:text"`
}
