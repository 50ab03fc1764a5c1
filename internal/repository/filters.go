package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const likeEscape = ` ESCAPE '\'`

// EquipmentFilter сужает выборку оборудования. Пустые поля не применяются.
type EquipmentFilter struct {
	PublicOnly bool
	CategoryID *int64
	Status     string
	Query      string
}

// RentalFilter сужает выборку заявок на аренду.
type RentalFilter struct {
	EquipmentID *int64
	CategoryID  *int64
	Status      string
	Query       string
}

// likePattern returns a lower-cased %term% pattern with LIKE wildcards escaped.
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

// lockForUpdate adds FOR UPDATE where the dialect supports row locks.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
