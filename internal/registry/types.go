package registry

// Person is one upstream person record. Optional fields stay nil when the
// upstream response omits them; presence matters for the nickname rule.
type Person struct {
	PersonPK      int     `json:"person_pk"`
	LastName      string  `json:"last_name"`
	NickFirstName *string `json:"nick_first_name"`
	FirstNickName *string `json:"first_nick_name"`
	Email1        *string `json:"email_1"`
	HouseholdFK   int     `json:"household_fk"`
	Roles         *string `json:"roles"`
	GradeLevel    *string `json:"current_grade"`
}

// Household is the address record shared by a person's household.
type Household struct {
	HouseholdPK   int     `json:"household_pk"`
	Address1      *string `json:"address_1"`
	Address2      *string `json:"address_2"`
	City          *string `json:"city"`
	StateProvince *string `json:"state_province"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
}

// Str dereferences an optional upstream field, normalizing absence to "".
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
