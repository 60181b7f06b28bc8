package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Stock is the reference-data record for a tradable instrument.
// It is read-mostly: admission and quote lookups treat it as immutable.
type Stock struct {
	Symbol      string `yaml:"symbol" json:"symbol" validate:"required,max=10"`
	Name        string `yaml:"name" json:"name" validate:"required"`
	ShortName   string `yaml:"short_name" json:"short_name"`
	EnglishName string `yaml:"english_name" json:"english_name"`
	Exchange    string `yaml:"exchange" json:"exchange" validate:"required"`
	Industry    string `yaml:"industry" json:"industry"`
	// LotSize is the board-lot granularity for this instrument. Order quantity
	// must be a positive multiple of it unless AllowOddLot is set.
	LotSize     int                        `yaml:"lot_size" json:"lot_size" validate:"required,gt=0"`
	AllowOddLot bool                       `yaml:"allow_odd_lot" json:"allow_odd_lot"`
	IsActive    bool                       `yaml:"is_active" json:"is_active"`
	ListedDate  optional.Option[time.Time] `yaml:"listed_date" json:"listed_date"`
	CreatedAt   time.Time                  `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time                  `yaml:"updated_at" json:"updated_at"`
}
