package service

import (
	"github.com/campusware/regpos/internal/pos"
	"github.com/campusware/regpos/internal/registry"
)

// ComparableRecord is the canonical projection both sides are reduced to
// before deciding whether an update is needed. Missing values become empty
// strings on both sides, so a field absent upstream equals a field absent in
// the POS.
type ComparableRecord struct {
	LastName  string
	FirstName string
	Email     string
	Address1  string
	Address2  string
	City      string
	Zip       string
	State     string
}

// FromUpstream projects a person plus household into comparable form.
func FromUpstream(p registry.Person, h registry.Household) ComparableRecord {
	return ComparableRecord{
		LastName:  p.LastName,
		FirstName: preferredFirstName(p),
		Email:     registry.Str(p.Email1),
		Address1:  registry.Str(h.Address1),
		Address2:  registry.Str(h.Address2),
		City:      registry.Str(h.City),
		Zip:       registry.Str(h.PostalCode),
		State:     registry.Str(h.StateProvince),
	}
}

// FromCustomer projects an existing POS customer into comparable form.
func FromCustomer(c pos.Customer) ComparableRecord {
	rec := ComparableRecord{
		LastName:  c.LastName,
		FirstName: c.FirstName,
	}
	if c.Contact == nil {
		return rec
	}
	if c.Contact.Emails != nil && len(c.Contact.Emails.ContactEmail) > 0 {
		rec.Email = c.Contact.Emails.ContactEmail[0].Address
	}
	if c.Contact.Addresses != nil && len(c.Contact.Addresses.ContactAddress) > 0 {
		a := c.Contact.Addresses.ContactAddress[0]
		rec.Address1 = a.Address1
		rec.Address2 = a.Address2
		rec.City = a.City
		rec.Zip = a.Zip
		rec.State = a.State
	}
	return rec
}

// Differ reports whether an update should be pushed. With force set every
// record differs regardless of content.
func Differ(upstream, existing ComparableRecord, force bool) bool {
	if force {
		return true
	}
	return upstream != existing
}
