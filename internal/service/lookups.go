package service

import (
	"context"
	"fmt"

	"github.com/campusware/regpos/internal/pos"
)

// Lookups holds the reference data an operation resolves names against.
// Loaded fresh at the start of each operation so renames in the POS take
// effect without a restart.
type Lookups struct {
	CustomerTypes map[string]string // name -> customerTypeID
	PaymentTypes  map[string]pos.PaymentType
	Shops         map[string]pos.Shop // name -> shop
	Employees     []pos.Employee
}

func LoadLookups(ctx context.Context, api POSAPI) (Lookups, error) {
	l := Lookups{
		CustomerTypes: map[string]string{},
		PaymentTypes:  map[string]pos.PaymentType{},
		Shops:         map[string]pos.Shop{},
	}

	types, err := api.CustomerTypes(ctx)
	if err != nil {
		return Lookups{}, fmt.Errorf("load customer types: %w", err)
	}
	for _, t := range types {
		l.CustomerTypes[t.Name] = t.CustomerTypeID
	}

	payments, err := api.PaymentTypes(ctx)
	if err != nil {
		return Lookups{}, fmt.Errorf("load payment types: %w", err)
	}
	for _, p := range payments {
		l.PaymentTypes[p.Code] = p
	}

	shops, err := api.Shops(ctx)
	if err != nil {
		return Lookups{}, fmt.Errorf("load shops: %w", err)
	}
	for _, s := range shops {
		l.Shops[s.Name] = s
	}

	l.Employees, err = api.Employees(ctx)
	if err != nil {
		return Lookups{}, fmt.Errorf("load employees: %w", err)
	}
	return l, nil
}

// CustomerTypeID resolves a customer type by display name.
func (l Lookups) CustomerTypeID(name string) (string, error) {
	id, ok := l.CustomerTypes[name]
	if !ok {
		return "", fmt.Errorf("unknown customer type %q", name)
	}
	return id, nil
}

// OnAccountPayment returns the payment type used for charge-to-account
// transactions.
func (l Lookups) OnAccountPayment() (pos.PaymentType, error) {
	p, ok := l.PaymentTypes[OnAccountCode]
	if !ok {
		return pos.PaymentType{}, fmt.Errorf("payment type %q not configured in POS", OnAccountCode)
	}
	return p, nil
}
