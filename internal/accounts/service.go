package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// DefaultShopPrefix marks shop sub-ledger accounts, e.g. "Inventory_Shop A".
const DefaultShopPrefix = "Inventory_"

var (
	// ErrUnmappedAccount is returned when a ledger account is not in the chart.
	ErrUnmappedAccount = errors.New("account not in chart of accounts")
	// ErrInvalidChart is returned when the chart itself is inconsistent.
	ErrInvalidChart = errors.New("invalid chart of accounts")
)

// Service provides validated lookup over the chart of accounts.
type Service struct {
	accounts   []model.Account
	byName     map[string]model.Account
	byRole     map[model.Role][]model.Account
	shopPrefix string
}

// NewService validates accounts and builds a Service. Shop sub-ledger
// accounts are recognised by shopPrefix.
func NewService(accounts []model.Account, shopPrefix string) (*Service, error) {
	if shopPrefix == "" {
		shopPrefix = DefaultShopPrefix
	}
	s := &Service{
		accounts:   accounts,
		byName:     make(map[string]model.Account, len(accounts)),
		byRole:     make(map[model.Role][]model.Account),
		shopPrefix: shopPrefix,
	}

	var errs []error
	for _, a := range accounts {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("%w: account with empty name", ErrInvalidChart))
			continue
		case !a.Type.Valid():
			errs = append(errs, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidChart, a.Name, a.Type))
		case !a.Role.Valid():
			errs = append(errs, fmt.Errorf("%w: %s has unknown role %q", ErrInvalidChart, a.Name, a.Role))
		case a.Group() != model.GroupOf(a.Name):
			errs = append(errs, fmt.Errorf("%w: %s is typed %s but its name classifies it as a %s account",
				ErrInvalidChart, a.Name, a.Type, model.GroupOf(a.Name)))
		case strings.HasPrefix(a.Name, shopPrefix):
			errs = append(errs, fmt.Errorf("%w: %s collides with the shop sub-ledger prefix %q", ErrInvalidChart, a.Name, shopPrefix))
		}
		if _, dup := s.byName[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate account %s", ErrInvalidChart, a.Name))
		}
		s.byName[a.Name] = a
		if a.Role != model.RoleNone {
			s.byRole[a.Role] = append(s.byRole[a.Role], a)
		}
	}

	for _, r := range model.SingletonRoles {
		if n := len(s.byRole[r]); n != 1 {
			errs = append(errs, fmt.Errorf("%w: role %s bound to %d accounts, want 1", ErrInvalidChart, r, n))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads chart-of-accounts.csv from a books root and returns a Service.
func Load(root, shopPrefix string) (*Service, error) {
	path := filepath.Join(root, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts, shopPrefix)
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// ShopPrefix returns the sub-ledger prefix.
func (s *Service) ShopPrefix() string {
	return s.shopPrefix
}

// ShopOf returns the shop named by a sub-ledger account, e.g.
// "Inventory_Shop A" -> "Shop A".
func (s *Service) ShopOf(name string) (string, bool) {
	shop, ok := strings.CutPrefix(name, s.shopPrefix)
	if !ok || shop == "" {
		return "", false
	}
	return shop, true
}

// Lookup returns the account for name. Shop sub-ledger accounts resolve to
// the inventory account, carrying their own name and marked Internal.
func (s *Service) Lookup(name string) (model.Account, error) {
	if a, ok := s.byName[name]; ok {
		return a, nil
	}
	if _, ok := s.ShopOf(name); ok {
		parent := s.Role(model.RoleInventory)
		parent.Name = name
		parent.Role = model.RoleInventory
		parent.Internal = true
		return parent, nil
	}
	return model.Account{}, fmt.Errorf("%w: %q", ErrUnmappedAccount, name)
}

// Exists reports whether name resolves to an account.
func (s *Service) Exists(name string) bool {
	_, err := s.Lookup(name)
	return err == nil
}

// Role returns the account bound to a singleton role. NewService guarantees
// the binding exists.
func (s *Service) Role(r model.Role) model.Account {
	accts := s.byRole[r]
	if len(accts) == 0 {
		return model.Account{}
	}
	return accts[0]
}

// ByRole returns every account bound to role r.
func (s *Service) ByRole(r model.Role) []model.Account {
	return s.byRole[r]
}

// FlowAccounts returns revenue and expense accounts ordered by rank, then name.
func (s *Service) FlowAccounts() []model.Account {
	var flow []model.Account
	for _, a := range s.accounts {
		if a.IsFlow() {
			flow = append(flow, a)
		}
	}
	slices.SortStableFunc(flow, func(a, b model.Account) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return strings.Compare(a.Name, b.Name)
	})
	return flow
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(root string) error {
	return SaveChart(root, s.accounts)
}

// SaveChart writes accounts to accounts/chart-of-accounts.csv under root.
func SaveChart(root string, accounts []model.Account) error {
	dir := filepath.Join(root, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
