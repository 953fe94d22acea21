package service

import (
	"context"
	"net/url"

	"github.com/campusware/regpos/internal/pos"
	"github.com/campusware/regpos/internal/registry"
)

// RegistryAPI is the upstream person source.
type RegistryAPI interface {
	Pull(ctx context.Context, resource string, params url.Values) ([]registry.Person, error)
	Household(ctx context.Context, id int) (registry.Household, error)
}

// POSAPI is the point-of-sale system of record for customers and sales.
type POSAPI interface {
	Customers(ctx context.Context, params url.Values) ([]pos.Customer, error)
	CreateCustomer(ctx context.Context, cust pos.Customer) (pos.Customer, error)
	UpdateCustomer(ctx context.Context, id string, cust pos.Customer) (pos.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	Sales(ctx context.Context, params url.Values) ([]pos.Sale, error)
	CreateSale(ctx context.Context, sale pos.SaleCreate) error
	CustomerTypes(ctx context.Context) ([]pos.CustomerType, error)
	PaymentTypes(ctx context.Context) ([]pos.PaymentType, error)
	Shops(ctx context.Context) ([]pos.Shop, error)
	Employees(ctx context.Context) ([]pos.Employee, error)
}
