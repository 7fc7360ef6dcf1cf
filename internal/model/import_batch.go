package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImportOutcome string

const (
	ImportCommitted  ImportOutcome = "committed"
	ImportRolledBack ImportOutcome = "rolled_back"
)

// ImportBatch is the audit record of one import request.
type ImportBatch struct {
	gorm.Model
	Entity     string         `json:"entity" gorm:"size:50;not null;index"`
	UserID     uint           `json:"user_id" gorm:"index"`
	TotalRows  int            `json:"total_rows"`
	Imported   int            `json:"imported"`
	Failed     int            `json:"failed"`
	SkipErrors bool           `json:"skip_errors"`
	Outcome    ImportOutcome  `json:"outcome" gorm:"size:20;not null"`
	ArchiveKey string         `json:"archive_key"`
	Errors     datatypes.JSON `json:"errors"`
}
