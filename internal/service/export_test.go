package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusware/regpos/internal/pos"
)

func onAccountPayment() pos.SalePayment {
	return pos.SalePayment{
		Amount:        "21.01",
		PaymentTypeID: "7",
		PaymentType:   &pos.PaymentType{PaymentTypeID: "7", Code: "SCA"},
	}
}

func chargeCustomer() *pos.Customer {
	return &pos.Customer{
		CustomerID:                "42",
		FirstName:                 "Alex",
		LastName:                  "Lee",
		CompanyRegistrationNumber: "500",
		CreditAccountID:           "9",
		CustomerTypeID:            "3",
	}
}

func testExportService(posAPI *fakePOS, sink Sink) *ExportService {
	return NewExportService(posAPI, ExportConfig{
		CatalogItemFK:     "77",
		SchoolYear:        "2026-2027",
		TransactionType:   "CHARGE",
		TransactionSource: "BOOKSTORE",
	}, sink)
}

func chargeOpts() ChargeOptions {
	return ChargeOptions{
		ShopName:     "Bookstore",
		CustomerType: "Student",
		Begin:        "2026-08-01",
		End:          "2026-08-28",
	}
}

func TestChargeRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:    "9001",
		Completed: "true",
		Customer:  chargeCustomer(),
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{
			{
				SaleLineID:          "1",
				ShopID:              "1",
				TimeStamp:           "2026-08-10T14:00:00-04:00",
				UnitQuantity:        "2",
				UnitPrice:           "10.00",
				CalcLineDiscount:    "1.00",
				DisplayableSubtotal: "19.00",
				CalcTax1:            "1.005",
				CalcTotal:           "21.005",
				Item:                &pos.Item{ItemID: "5", Description: "Hoodie"},
			},
			{
				// rung up in another shop, excluded from this export
				SaleLineID:   "2",
				ShopID:       "2",
				UnitQuantity: "1",
				UnitPrice:    "5.00",
			},
		}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{onAccountPayment()}},
	}}

	rows, err := testExportService(posAPI, nil).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, chargeHeader(false), rows[0])
	require.Equal(t, []string{
		"500", "500", "Alex Lee",
		"BOOKSTORE", "CHARGE", "2026-2027",
		"2026-08-10", "77", "Hoodie", "2",
		"9.50", "19.00", "1.01", "21.01",
		"9001",
	}, rows[1])
}

func TestChargeRowsMixedPaymentSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:   "9002",
		Customer: chargeCustomer(),
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{{
			SaleLineID: "1", ShopID: "1", UnitQuantity: "1", UnitPrice: "5.00",
			CalcLineDiscount: "0", CalcTax1: "0", CalcTotal: "5.00", DisplayableSubtotal: "5.00",
		}}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{
			onAccountPayment(),
			{Amount: "5.00", PaymentTypeID: "1", PaymentType: &pos.PaymentType{Code: "CASH"}},
		}},
	}}

	sink := &recordSink{}
	rows, err := testExportService(posAPI, sink).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only

	var warned bool
	for _, line := range sink.all() {
		if containsAll(line, "sale 9002", "bill manually") {
			warned = true
		}
	}
	require.True(t, warned, "expected a mixed-payment warning, got %v", sink.all())
}

func TestChargeRowsNotOnAccountSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:   "9003",
		Customer: chargeCustomer(),
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{{
			SaleLineID: "1", ShopID: "1", UnitQuantity: "1", UnitPrice: "5.00",
		}}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{
			{Amount: "5.00", PaymentType: &pos.PaymentType{Code: "CASH"}},
		}},
	}}

	rows, err := testExportService(posAPI, nil).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestChargeRowsCustomerTypeMismatchSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cust := chargeCustomer()
	cust.CustomerTypeID = "4"
	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:   "9004",
		Customer: cust,
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{{
			SaleLineID: "1", ShopID: "1", UnitQuantity: "1", UnitPrice: "5.00",
		}}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{onAccountPayment()}},
	}}

	rows, err := testExportService(posAPI, nil).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestChargeRowsZeroQuantityLineOmitted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:   "9005",
		Customer: chargeCustomer(),
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{
			{
				SaleLineID: "1", ShopID: "1", UnitQuantity: "0", UnitPrice: "5.00",
				CalcLineDiscount: "0", CalcTax1: "0", CalcTotal: "0", DisplayableSubtotal: "0",
			},
			{
				SaleLineID: "2", ShopID: "1", UnitQuantity: "1", UnitPrice: "5.00",
				CalcLineDiscount: "0", CalcTax1: "0", CalcTotal: "5.00", DisplayableSubtotal: "5.00",
				Note: "special order",
			},
		}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{onAccountPayment()}},
	}}

	sink := &recordSink{}
	rows, err := testExportService(posAPI, sink).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "special order", rows[1][8]) // note fallback when no item

	var logged bool
	for _, line := range sink.all() {
		if containsAll(line, "sale 9005 line 1", "zero quantity") {
			logged = true
		}
	}
	require.True(t, logged, "expected a zero-quantity error, got %v", sink.all())
}

func TestChargeRowsDescriptionFallbackUnknown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.sales = []pos.Sale{{
		SaleID:   "9006",
		Customer: chargeCustomer(),
		SaleLines: &pos.SaleLines{SaleLine: pos.Many[pos.SaleLine]{{
			SaleLineID: "1", ShopID: "1", UnitQuantity: "1", UnitPrice: "5.00",
			CalcLineDiscount: "0", CalcTax1: "0", CalcTotal: "5.00", DisplayableSubtotal: "5.00",
		}}},
		SalePayments: &pos.SalePayments{SalePayment: pos.Many[pos.SalePayment]{onAccountPayment()}},
	}}

	rows, err := testExportService(posAPI, nil).ChargeRows(ctx, chargeOpts())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Unknown", rows[1][8])
}

func TestBalanceRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.customers = []pos.Customer{
		{CustomerID: "1", FirstName: "Alex", LastName: "Lee", CompanyRegistrationNumber: "500",
			CustomerTypeID: "3", CreditAccount: &pos.CreditAccount{Balance: "12.50"}},
		{CustomerID: "2", FirstName: "Sam", LastName: "Ng", CompanyRegistrationNumber: "501",
			CustomerTypeID: "3", CreditAccount: &pos.CreditAccount{Balance: "0.00"}},
		{CustomerID: "3", FirstName: "Kim", LastName: "Ito", CompanyRegistrationNumber: "502",
			CustomerTypeID: "3"},
	}

	rows, err := testExportService(posAPI, nil).BalanceRows(ctx, BalanceOptions{CustomerType: "Student"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, balanceHeader(), rows[0])
	require.Equal(t, []string{"Alex", "Lee", "500", "Student", "12.50", "1"}, rows[1])
}

func TestClearBalances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posAPI := newFakePOS()
	posAPI.customers = []pos.Customer{
		{CustomerID: "42", FirstName: "Alex", LastName: "Lee", CustomerTypeID: "3",
			CreditAccountID: "9", CreditAccount: &pos.CreditAccount{Balance: "12.50"}},
		{CustomerID: "43", FirstName: "Sam", LastName: "Ng", CustomerTypeID: "3",
			CreditAccountID: "10", CreditAccount: &pos.CreditAccount{Balance: "0.00"}},
	}

	result, err := testExportService(posAPI, nil).ClearBalances(ctx, ClearOptions{
		CustomerType: "Student",
		EmployeeID:   6,
	})
	require.NoError(t, err)
	require.Equal(t, ClearResult{Cleared: 1}, result)
	require.Len(t, posAPI.created, 1)

	sale := posAPI.created[0]
	require.Equal(t, 6, sale.EmployeeID)
	require.Equal(t, 1, sale.RegisterID)
	require.Equal(t, 1, sale.ShopID)
	require.Equal(t, 42, sale.CustomerID)
	require.True(t, sale.Completed)
	require.Equal(t, "-12.50", sale.SaleLines.SaleLine.UnitPrice)
	require.Equal(t, 1, sale.SaleLines.SaleLine.UnitQuantity)
	require.Equal(t, 0, sale.SaleLines.SaleLine.ItemID)
	require.Contains(t, sale.SaleLines.SaleLine.Note, "12.50")
	require.Equal(t, "-12.50", sale.SalePayments.SalePayment.Amount)
	require.Equal(t, 7, sale.SalePayments.SalePayment.PaymentTypeID)
	require.Equal(t, 9, sale.SalePayments.SalePayment.CreditAccountID)
}
