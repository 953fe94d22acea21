package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campusware/regpos/internal/pos"
)

// OnAccountCode is the POS payment type code for charge-to-account sales.
const OnAccountCode = "SCA"

// ExportConfig carries the constants stamped into every exported row.
type ExportConfig struct {
	CatalogItemFK     string
	SchoolYear        string
	TransactionType   string
	TransactionSource string
	DebugFields       bool
}

// ExportService turns POS sales and balances into billing-system rows.
type ExportService struct {
	pos  POSAPI
	cfg  ExportConfig
	sink Sink
}

func NewExportService(posAPI POSAPI, cfg ExportConfig, sink Sink) *ExportService {
	if sink == nil {
		sink = NopSink{}
	}
	return &ExportService{pos: posAPI, cfg: cfg, sink: sink}
}

// WithSink returns a copy of the service reporting to sink.
func (s *ExportService) WithSink(sink Sink) *ExportService {
	out := *s
	if sink == nil {
		sink = NopSink{}
	}
	out.sink = sink
	return &out
}

// ChargeOptions selects the sales to export.
type ChargeOptions struct {
	ShopName     string
	CustomerType string
	Begin        string // yyyy-mm-dd inclusive
	End          string // yyyy-mm-dd inclusive
}

func chargeHeader(debug bool) []string {
	h := []string{
		"person_id", "customer_account_number", "customer_name",
		"transaction_source", "transaction_type", "school_year",
		"item_date", "catalog_item_fk", "description", "quantity",
		"unit_price", "purchase_amount", "tax_amount", "total_amount",
		"pos_transaction_id",
	}
	if debug {
		h = append(h, "debug_timestamp", "debug_shop_id")
	}
	return h
}

// shopBound renders one end of the timeStamp range filter in the shop's
// local offset, so "a day" means the shop's day, not the server's.
func shopBound(date, clock string, loc *time.Location) (string, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return "", fmt.Errorf("bad date %q: %w", date, err)
	}
	return date + "T" + clock + day.Format("-07:00"), nil
}

// half-up at two places; matches how the POS itself presents money
func roundMoney(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// ChargeRows exports every on-account sale line rung up in the named shop
// during the date range, one row per line, header first. Sales and lines
// that cannot be exported are logged and omitted; the export continues.
func (s *ExportService) ChargeRows(ctx context.Context, opts ChargeOptions) ([][]string, error) {
	lookups, err := LoadLookups(ctx, s.pos)
	if err != nil {
		return nil, err
	}
	shop, ok := lookups.Shops[opts.ShopName]
	if !ok {
		return nil, fmt.Errorf("unknown shop %q", opts.ShopName)
	}
	typeID, err := lookups.CustomerTypeID(opts.CustomerType)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(shop.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("shop %q timezone %q: %w", shop.Name, shop.TimeZone, err)
	}
	begin, err := shopBound(opts.Begin, "00:00:00", loc)
	if err != nil {
		return nil, err
	}
	end, err := shopBound(opts.End, "23:59:59", loc)
	if err != nil {
		return nil, err
	}

	sales, err := s.pos.Sales(ctx, url.Values{
		"completed":      {"true"},
		"timeStamp":      {fmt.Sprintf("><,%s,%s", begin, end)},
		"load_relations": {"all"},
	})
	if err != nil {
		return nil, fmt.Errorf("pull sales: %w", err)
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("export: %d completed sales in range", len(sales)))

	rows := [][]string{chargeHeader(s.cfg.DebugFields)}
	for _, sale := range sales {
		rows = append(rows, s.saleRows(sale, shop, typeID, loc)...)
	}
	return rows, nil
}

func (s *ExportService) saleRows(sale pos.Sale, shop pos.Shop, typeID string, loc *time.Location) [][]string {
	if sale.Customer == nil || sale.Customer.CustomerTypeID != typeID {
		return nil
	}
	if sale.SaleLines == nil || len(sale.SaleLines.SaleLine) == 0 {
		return nil
	}

	var payments []pos.SalePayment
	if sale.SalePayments != nil {
		payments = sale.SalePayments.SalePayment
	}
	onAccount := false
	for _, p := range payments {
		if p.PaymentType != nil && p.PaymentType.Code == OnAccountCode {
			onAccount = true
			break
		}
	}
	if !onAccount {
		return nil
	}
	if len(payments) > 1 {
		// a sale split between the account and another tender cannot be
		// billed line by line; flag it for manual handling
		s.sink.Log(LevelWarn, fmt.Sprintf("export: sale %s has %d payments including %s, skipping; bill manually",
			sale.SaleID, len(payments), OnAccountCode))
		return nil
	}

	cust := sale.Customer
	name := cust.FirstName + " " + cust.LastName

	var rows [][]string
	for _, line := range sale.SaleLines.SaleLine {
		if line.ShopID != shop.ShopID {
			continue
		}
		row, err := s.lineRow(sale, line, cust, name, loc)
		if err != nil {
			s.sink.Log(LevelError, fmt.Sprintf("export: sale %s line %s: %v", sale.SaleID, line.SaleLineID, err))
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *ExportService) lineRow(sale pos.Sale, line pos.SaleLine, cust *pos.Customer, name string, loc *time.Location) ([]string, error) {
	qty, err := decimal.NewFromString(line.UnitQuantity)
	if err != nil {
		return nil, fmt.Errorf("unitQuantity %q: %w", line.UnitQuantity, err)
	}
	if qty.IsZero() {
		return nil, fmt.Errorf("zero quantity")
	}
	unitPrice, err := decimal.NewFromString(line.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("unitPrice %q: %w", line.UnitPrice, err)
	}
	discount, err := decimal.NewFromString(line.CalcLineDiscount)
	if err != nil {
		return nil, fmt.Errorf("calcLineDiscount %q: %w", line.CalcLineDiscount, err)
	}
	tax, err := decimal.NewFromString(line.CalcTax1)
	if err != nil {
		return nil, fmt.Errorf("calcTax1 %q: %w", line.CalcTax1, err)
	}
	total, err := decimal.NewFromString(line.CalcTotal)
	if err != nil {
		return nil, fmt.Errorf("calcTotal %q: %w", line.CalcTotal, err)
	}

	// discount arrives per line, price per unit
	net := unitPrice.Sub(discount.Div(qty))

	itemDate := line.TimeStamp
	if ts, err := time.Parse(time.RFC3339, line.TimeStamp); err == nil {
		itemDate = ts.In(loc).Format("2006-01-02")
	}

	description := "Unknown"
	switch {
	case line.Item != nil && line.Item.Description != "":
		description = line.Item.Description
	case line.Note != "":
		description = line.Note
	}

	// the billing system keys accounts by the same person id
	row := []string{
		cust.CompanyRegistrationNumber,
		cust.CompanyRegistrationNumber,
		name,
		s.cfg.TransactionSource,
		s.cfg.TransactionType,
		s.cfg.SchoolYear,
		itemDate,
		s.cfg.CatalogItemFK,
		description,
		qty.String(),
		roundMoney(net),
		line.DisplayableSubtotal,
		roundMoney(tax),
		roundMoney(total),
		sale.SaleID,
	}
	if s.cfg.DebugFields {
		row = append(row, line.TimeStamp, line.ShopID)
	}
	return row, nil
}

// BalanceOptions selects the customers to export balances for.
type BalanceOptions struct {
	CustomerType string
}

func balanceHeader() []string {
	return []string{"first_name", "last_name", "registry_id", "customer_type", "balance", "customer_id"}
}

// BalanceRows exports every customer of the given type carrying a positive
// account balance, header first.
func (s *ExportService) BalanceRows(ctx context.Context, opts BalanceOptions) ([][]string, error) {
	lookups, err := LoadLookups(ctx, s.pos)
	if err != nil {
		return nil, err
	}
	typeID, err := lookups.CustomerTypeID(opts.CustomerType)
	if err != nil {
		return nil, err
	}
	customers, err := s.pos.Customers(ctx, url.Values{
		"customerTypeID": {typeID},
		"load_relations": {"all"},
	})
	if err != nil {
		return nil, fmt.Errorf("pull customers: %w", err)
	}

	rows := [][]string{balanceHeader()}
	for _, cust := range customers {
		balance := customerBalance(cust)
		if !balance.IsPositive() {
			continue
		}
		rows = append(rows, []string{
			cust.FirstName,
			cust.LastName,
			cust.CompanyRegistrationNumber,
			opts.CustomerType,
			balance.StringFixed(2),
			cust.CustomerID,
		})
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("export: %d customers with positive balance", len(rows)-1))
	return rows, nil
}
