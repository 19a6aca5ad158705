package model

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Group splits accounts into those closed into profit each period and those
// carried on the balance sheet.
type Group string

const (
	GroupFlow     Group = "flow"
	GroupPosition Group = "position"
)

// Group returns the statement group implied by the account type.
func (t AccountType) Group() Group {
	if t == AccountTypeRevenue || t == AccountTypeExpense {
		return GroupFlow
	}
	return GroupPosition
}

// GroupOf classifies an account by name alone: names containing "Expense" or
// "Revenue" are flow accounts, unless they are "Unearned" (deferred revenue is
// a liability).
func GroupOf(name string) Group {
	switch {
	case strings.Contains(name, "Expense"):
		return GroupFlow
	case strings.Contains(name, "Unearned"):
		return GroupPosition
	case strings.Contains(name, "Revenue"):
		return GroupFlow
	default:
		return GroupPosition
	}
}

// Role binds an account to a concept the engine needs to find by purpose
// rather than by name.
type Role string

const (
	RoleNone                    Role = ""
	RoleSales                   Role = "sales"
	RoleCOGS                    Role = "cogs"
	RoleInventory               Role = "inventory"
	RoleCash                    Role = "cash"
	RoleTaxExpense              Role = "tax_expense"
	RoleTaxPayable              Role = "tax_payable"
	RoleShareCapital            Role = "share_capital"
	RoleDividendPayable         Role = "dividend_payable"
	RoleRetainedEarnings        Role = "retained_earnings"
	RoleDepreciation            Role = "depreciation"
	RoleWorkingCapital          Role = "working_capital"
	RoleInvesting               Role = "investing"
	RoleAccumulatedDepreciation Role = "accumulated_depreciation"
)

// SingletonRoles must each be bound to exactly one account.
var SingletonRoles = []Role{
	RoleSales,
	RoleCOGS,
	RoleInventory,
	RoleCash,
	RoleTaxExpense,
	RoleTaxPayable,
	RoleShareCapital,
	RoleDividendPayable,
	RoleRetainedEarnings,
}

// Valid reports whether r is a known role (the empty role is valid).
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleSales, RoleCOGS, RoleInventory, RoleCash, RoleTaxExpense, RoleTaxPayable,
		RoleShareCapital, RoleDividendPayable, RoleRetainedEarnings, RoleDepreciation,
		RoleWorkingCapital, RoleInvesting, RoleAccumulatedDepreciation:
		return true
	}
	return false
}

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	Name        string
	Type        AccountType
	Rank        int // P&L ordering; flow accounts only
	Role        Role
	Description string

	// Internal is set on shop sub-ledger accounts resolved through their
	// parent inventory account. They never appear as presentation lines.
	Internal bool
}

// Group returns the statement group of the account.
func (a Account) Group() Group { return a.Type.Group() }

// IsFlow reports whether the account closes into profit each period.
func (a Account) IsFlow() bool { return a.Type.Group() == GroupFlow }

// StatementSection is the balance sheet heading for a position account.
func (a Account) StatementSection() string {
	switch a.Type {
	case AccountTypeAsset:
		return "Asset"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeLiability:
		return "Liabilities"
	default:
		return ""
	}
}
