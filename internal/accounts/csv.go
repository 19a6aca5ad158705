package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/shopbooks/internal/model"
)

const (
	numFields = 5
	colName   = 0
	colType   = 1
	colRank   = 2
	colRole   = 3
	colDesc   = 4
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_name", "account_type", "rank", "role", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	if acct.IsFlow() {
		row[colRank] = strconv.Itoa(acct.Rank)
	}
	row[colRole] = string(acct.Role)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var rank int
	if record[colRank] != "" {
		var err error
		rank, err = strconv.Atoi(record[colRank])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing rank %q: %w", record[colRank], err)
		}
	}

	return model.Account{
		Name:        record[colName],
		Type:        model.AccountType(record[colType]),
		Rank:        rank,
		Role:        model.Role(record[colRole]),
		Description: record[colDesc],
	}, nil
}
