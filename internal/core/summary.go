package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryLine is one category row of the plan overview.
type CategoryLine struct {
	Category   Category
	Spending   decimal.Decimal
	Available  decimal.Decimal
	TargetText string // empty when the category has no target
}

// GroupLine aggregates the categories of one group.
type GroupLine struct {
	Group      CategoryGroup
	Budgeted   decimal.Decimal
	Available  decimal.Decimal
	Categories []CategoryLine
}

// PlanOverview is the ready-to-assign header plus every group in display order.
type PlanOverview struct {
	TotalCash     decimal.Decimal
	TotalAssigned decimal.Decimal
	ReadyToAssign decimal.Decimal // may be negative
	Groups        []GroupLine
}

// DayActivity holds one calendar day of an account register.
type DayActivity struct {
	Day          time.Time
	Transactions []Transaction
}
