package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campusware/regpos/internal/pos"
)

// ClearOptions selects whose balances to zero and who gets audited for it.
type ClearOptions struct {
	CustomerType string
	EmployeeID   int
}

// ClearResult tallies the balance-clearing pass.
type ClearResult struct {
	Cleared int
	Failed  int
}

func (r ClearResult) String() string {
	return fmt.Sprintf("cleared %d, failed %d", r.Cleared, r.Failed)
}

// ClearBalances posts a negative on-account sale against every customer of
// the given type carrying a positive balance, bringing each account to zero.
// Run after the balances have been exported to the billing system.
func (s *ExportService) ClearBalances(ctx context.Context, opts ClearOptions) (ClearResult, error) {
	lookups, err := LoadLookups(ctx, s.pos)
	if err != nil {
		return ClearResult{}, err
	}
	typeID, err := lookups.CustomerTypeID(opts.CustomerType)
	if err != nil {
		return ClearResult{}, err
	}
	payment, err := lookups.OnAccountPayment()
	if err != nil {
		return ClearResult{}, err
	}
	paymentTypeID, err := strconv.Atoi(payment.PaymentTypeID)
	if err != nil {
		return ClearResult{}, fmt.Errorf("payment type id %q: %w", payment.PaymentTypeID, err)
	}

	customers, err := s.pos.Customers(ctx, nil)
	if err != nil {
		return ClearResult{}, fmt.Errorf("pull customers: %w", err)
	}

	var result ClearResult
	for _, cust := range customers {
		if cust.CustomerTypeID != typeID {
			continue
		}
		balance := customerBalance(cust)
		if !balance.IsPositive() {
			continue
		}
		if err := s.clearOne(ctx, cust, balance, opts.EmployeeID, paymentTypeID); err != nil {
			result.Failed++
			s.sink.Log(LevelError, fmt.Sprintf("clear: customer %s: %v", cust.CustomerID, err))
			continue
		}
		result.Cleared++
		s.sink.Log(LevelInfo, fmt.Sprintf("clear: customer %s (%s %s) balance %s zeroed",
			cust.CustomerID, cust.FirstName, cust.LastName, balance.StringFixed(2)))
	}
	s.sink.Log(LevelInfo, "clear: "+result.String())
	return result, nil
}

func (s *ExportService) clearOne(ctx context.Context, cust pos.Customer, balance decimal.Decimal, employeeID, paymentTypeID int) error {
	customerID, err := strconv.Atoi(cust.CustomerID)
	if err != nil {
		return fmt.Errorf("customer id %q: %w", cust.CustomerID, err)
	}
	creditAccountID, err := strconv.Atoi(cust.CreditAccountID)
	if err != nil {
		return fmt.Errorf("credit account id %q: %w", cust.CreditAccountID, err)
	}

	negated := balance.Neg().StringFixed(2)
	sale := pos.SaleCreate{
		EmployeeID: employeeID,
		RegisterID: 1,
		ShopID:     1,
		CustomerID: customerID,
		Completed:  true,
		SaleLines: pos.SaleLinesCreate{
			SaleLine: pos.SaleLineCreate{
				ItemID: 0,
				Note: fmt.Sprintf("Balance of %s exported and cleared %s",
					balance.StringFixed(2), time.Now().Format("2006-01-02")),
				UnitQuantity: 1,
				UnitPrice:    negated,
				TaxClassID:   0,
				AvgCost:      0,
				FifoCost:     0,
			},
		},
		SalePayments: pos.SalePaymentsCreate{
			SalePayment: pos.SalePaymentCreate{
				Amount:          negated,
				PaymentTypeID:   paymentTypeID,
				CreditAccountID: creditAccountID,
			},
		},
	}
	return s.pos.CreateSale(ctx, sale)
}
