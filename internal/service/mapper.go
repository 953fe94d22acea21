package service

import (
	"strconv"
	"time"

	"github.com/campusware/regpos/internal/pos"
	"github.com/campusware/regpos/internal/registry"
)

// MapperConfig carries the per-run constants stamped into mapped customers.
type MapperConfig struct {
	CustomerTypeID  string
	PersonFieldID   string
	SyncTimeFieldID string
	CreditLimit     string
}

// preferredFirstName picks the display first name: the primary nickname field
// wins, then the secondary, else empty.
func preferredFirstName(p registry.Person) string {
	if n := registry.Str(p.NickFirstName); n != "" {
		return n
	}
	return registry.Str(p.FirstNickName)
}

// MapCustomer builds the POS customer payload for an upstream person. The
// person key goes into companyRegistrationNumber so later runs can match the
// record back, and again into the person custom field alongside a sync
// timestamp.
func MapCustomer(p registry.Person, h registry.Household, cfg MapperConfig, now time.Time) pos.Customer {
	personID := strconv.Itoa(p.PersonPK)
	cust := pos.Customer{
		FirstName:                 preferredFirstName(p),
		LastName:                  p.LastName,
		CompanyRegistrationNumber: personID,
		CustomerTypeID:            cfg.CustomerTypeID,
		Contact: &pos.Contact{
			Custom:  "",
			NoEmail: "false",
			NoPhone: "false",
			NoMail:  "false",
			Addresses: &pos.Addresses{
				ContactAddress: pos.Many[pos.ContactAddress]{{
					Address1:    registry.Str(h.Address1),
					Address2:    registry.Str(h.Address2),
					City:        registry.Str(h.City),
					State:       registry.Str(h.StateProvince),
					Zip:         registry.Str(h.PostalCode),
					Country:     registry.Str(h.Country),
					CountryCode: "",
					StateCode:   "",
				}},
			},
		},
		CreditAccount: &pos.CreditAccount{
			CreditLimit: cfg.CreditLimit,
		},
	}

	if email := registry.Str(p.Email1); email != "" {
		cust.Contact.Emails = &pos.Emails{
			ContactEmail: pos.Many[pos.ContactEmail]{{
				Address:   email,
				UseType:   "Primary",
				UseTypeID: "1",
			}},
		}
	}

	if cfg.PersonFieldID != "" && cfg.SyncTimeFieldID != "" {
		cust.CustomFieldValues = &pos.CustomFieldValues{
			CustomFieldValue: pos.Many[pos.CustomFieldValue]{
				{CustomFieldID: cfg.PersonFieldID, Value: personID},
				{CustomFieldID: cfg.SyncTimeFieldID, Value: now.Format(time.RFC3339)},
			},
		}
	}
	return cust
}
