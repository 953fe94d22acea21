package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/regpos/internal/registry"
)

func strp(s string) *string { return &s }

func TestPreferredFirstName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		person registry.Person
		want   string
	}{
		{"primary wins", registry.Person{NickFirstName: strp("Sam"), FirstNickName: strp("Samuel")}, "Sam"},
		{"secondary fallback", registry.Person{FirstNickName: strp("Samuel")}, "Samuel"},
		{"empty primary falls through", registry.Person{NickFirstName: strp(""), FirstNickName: strp("Samuel")}, "Samuel"},
		{"both missing", registry.Person{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, preferredFirstName(tc.person))
		})
	}
}

func TestMapCustomer(t *testing.T) {
	t.Parallel()

	person := registry.Person{
		PersonPK:      500,
		LastName:      "Lee",
		NickFirstName: strp("Alex"),
		Email1:        strp("a@b.com"),
		HouseholdFK:   77,
	}
	household := registry.Household{
		Address1:      strp("1 Main St"),
		City:          strp("Springfield"),
		StateProvince: strp("VT"),
		PostalCode:    strp("05156"),
	}
	cfg := MapperConfig{
		CustomerTypeID:  "3",
		PersonFieldID:   "11",
		SyncTimeFieldID: "12",
		CreditLimit:     "5000.00",
	}
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	cust := MapCustomer(person, household, cfg, now)

	require.Equal(t, "Alex", cust.FirstName)
	require.Equal(t, "Lee", cust.LastName)
	require.Equal(t, "500", cust.CompanyRegistrationNumber)
	require.Equal(t, "3", cust.CustomerTypeID)
	require.Equal(t, "5000.00", cust.CreditAccount.CreditLimit)

	require.NotNil(t, cust.Contact)
	require.Len(t, cust.Contact.Emails.ContactEmail, 1)
	require.Equal(t, "a@b.com", cust.Contact.Emails.ContactEmail[0].Address)
	require.Len(t, cust.Contact.Addresses.ContactAddress, 1)
	addr := cust.Contact.Addresses.ContactAddress[0]
	require.Equal(t, "1 Main St", addr.Address1)
	require.Equal(t, "", addr.Address2)
	require.Equal(t, "Springfield", addr.City)
	require.Equal(t, "VT", addr.State)
	require.Equal(t, "05156", addr.Zip)

	require.NotNil(t, cust.CustomFieldValues)
	fields := cust.CustomFieldValues.CustomFieldValue
	require.Len(t, fields, 2)
	require.Equal(t, "11", fields[0].CustomFieldID)
	require.Equal(t, "500", fields[0].Value)
	require.Equal(t, "12", fields[1].CustomFieldID)
	require.Equal(t, now.Format(time.RFC3339), fields[1].Value)
}

func TestMapCustomerNoEmail(t *testing.T) {
	t.Parallel()

	cust := MapCustomer(registry.Person{PersonPK: 1, LastName: "Ng"}, registry.Household{}, MapperConfig{}, time.Now())
	require.Nil(t, cust.Contact.Emails)
	require.Nil(t, cust.CustomFieldValues)
}
