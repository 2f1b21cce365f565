package models

// AccountClass is the top-level (level 1) classification of an account code.
// It partitions the chart of accounts into the classes reporting cares about.
type AccountClass string

const (
	AccountClassAsset     AccountClass = "asset"
	AccountClassLiability AccountClass = "liability"
	AccountClassNetAsset  AccountClass = "net_asset"
	AccountClassRevenue   AccountClass = "revenue"
	AccountClassExpense   AccountClass = "expense"
)

// BalanceSheetClasses are the account classes that appear on the balance sheet.
var BalanceSheetClasses = []AccountClass{AccountClassAsset, AccountClassLiability, AccountClassNetAsset}

// OperatingClasses are the account classes that appear on the operating statement.
var OperatingClasses = []AccountClass{AccountClassRevenue, AccountClassExpense}

// AccountCode is one entry in the three-level chart of accounts.
// Codes flagged IsCommonExpense are fanned out across projects by the
// allocation engine instead of being booked to a single project.
type AccountCode struct {
	Base
	Level1          AccountClass `gorm:"type:varchar(20);not null" json:"level1"`
	Level2          string       `gorm:"not null" json:"level2"`
	Level3          string       `gorm:"not null" json:"level3"`
	Code            string       `gorm:"uniqueIndex;not null" json:"code"`
	IsCommonExpense bool         `gorm:"not null;default:false" json:"is_common_expense"`
	IsActive        bool         `gorm:"not null;default:true" json:"is_active"`
}
