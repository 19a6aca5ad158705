package accounts

import "github.com/cleared-dev/shopbooks/internal/model"

// DefaultChart returns the chart of accounts for a retail business with a
// central warehouse and shop sub-ledgers.
func DefaultChart() []model.Account {
	return []model.Account{
		{Name: "Revenue", Type: model.AccountTypeRevenue, Rank: 0, Role: model.RoleSales, Description: "Shop sales"},
		{Name: "Ad Revenue", Type: model.AccountTypeRevenue, Rank: 0},
		{Name: "COGS Expense", Type: model.AccountTypeExpense, Rank: 1, Role: model.RoleCOGS, Description: "Cost of goods sold"},
		{Name: "Rent Expense", Type: model.AccountTypeExpense, Rank: 3},
		{Name: "Transportation Expense", Type: model.AccountTypeExpense, Rank: 3},
		{Name: "Depreciation Expense", Type: model.AccountTypeExpense, Rank: 3, Role: model.RoleDepreciation},
		{Name: "Tax Expense", Type: model.AccountTypeExpense, Rank: 5, Role: model.RoleTaxExpense, Description: "Corporate income tax"},
		{Name: "Cash", Type: model.AccountTypeAsset, Role: model.RoleCash},
		{Name: "Inventory", Type: model.AccountTypeAsset, Role: model.RoleInventory, Description: "Central warehouse stock"},
		{Name: "AR", Type: model.AccountTypeAsset, Role: model.RoleWorkingCapital, Description: "Accounts receivable"},
		{Name: "Equipment", Type: model.AccountTypeAsset, Role: model.RoleInvesting},
		{Name: "Accumulated Depreciation", Type: model.AccountTypeAsset, Role: model.RoleAccumulatedDepreciation},
		{Name: "Share Capital", Type: model.AccountTypeEquity, Role: model.RoleShareCapital},
		{Name: "Retained Earnings", Type: model.AccountTypeEquity, Role: model.RoleRetainedEarnings},
		{Name: "Tax Payable", Type: model.AccountTypeLiability, Role: model.RoleTaxPayable},
		{Name: "AP", Type: model.AccountTypeLiability, Role: model.RoleWorkingCapital, Description: "Accounts payable"},
		{Name: "Unearned Ad Revenue", Type: model.AccountTypeLiability, Role: model.RoleWorkingCapital},
		{Name: "Dividend Payable", Type: model.AccountTypeLiability, Role: model.RoleDividendPayable},
		{Name: "Equipment Payable", Type: model.AccountTypeLiability, Role: model.RoleInvesting},
	}
}
