package pos

// The API serializes every scalar as a JSON string, booleans included
// ("true"/"false"), so the record types keep string fields throughout and
// callers parse where arithmetic is needed.

type Customer struct {
	CustomerID                string             `json:"customerID,omitempty"`
	FirstName                 string             `json:"firstName,omitempty"`
	LastName                  string             `json:"lastName,omitempty"`
	CompanyRegistrationNumber string             `json:"companyRegistrationNumber,omitempty"`
	CustomerTypeID            string             `json:"customerTypeID,omitempty"`
	CreditAccountID           string             `json:"creditAccountID,omitempty"`
	Contact                   *Contact           `json:"Contact,omitempty"`
	CreditAccount             *CreditAccount     `json:"CreditAccount,omitempty"`
	CustomFieldValues         *CustomFieldValues `json:"CustomFieldValues,omitempty"`
}

type Contact struct {
	Custom    string     `json:"custom,omitempty"`
	NoEmail   string     `json:"noEmail,omitempty"`
	NoPhone   string     `json:"noPhone,omitempty"`
	NoMail    string     `json:"noMail,omitempty"`
	Emails    *Emails    `json:"Emails,omitempty"`
	Addresses *Addresses `json:"Addresses,omitempty"`
}

type Emails struct {
	ContactEmail Many[ContactEmail] `json:"ContactEmail,omitempty"`
}

type ContactEmail struct {
	Address   string `json:"address,omitempty"`
	UseType   string `json:"useType,omitempty"`
	UseTypeID string `json:"useTypeID,omitempty"`
}

type Addresses struct {
	ContactAddress Many[ContactAddress] `json:"ContactAddress,omitempty"`
}

type ContactAddress struct {
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
}

type CreditAccount struct {
	CreditAccountID string `json:"creditAccountID,omitempty"`
	CreditLimit     string `json:"creditLimit,omitempty"`
	Balance         string `json:"balance,omitempty"`
}

type CustomFieldValues struct {
	CustomFieldValue Many[CustomFieldValue] `json:"CustomFieldValue,omitempty"`
}

type CustomFieldValue struct {
	CustomFieldID string `json:"customFieldID,omitempty"`
	Name          string `json:"name,omitempty"`
	Value         string `json:"value,omitempty"`
}

type CustomerType struct {
	CustomerTypeID string `json:"customerTypeID"`
	Name           string `json:"name"`
}

type PaymentType struct {
	PaymentTypeID string `json:"paymentTypeID"`
	Code          string `json:"code"`
	Name          string `json:"name"`
}

type Shop struct {
	ShopID   string `json:"shopID"`
	Name     string `json:"name"`
	TimeZone string `json:"timeZone"`
}

type Employee struct {
	EmployeeID string `json:"employeeID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

type Sale struct {
	SaleID       string        `json:"saleID"`
	TimeStamp    string        `json:"timeStamp"`
	Completed    string        `json:"completed"`
	ShopID       string        `json:"shopID"`
	CustomerID   string        `json:"customerID"`
	Customer     *Customer     `json:"Customer,omitempty"`
	SaleLines    *SaleLines    `json:"SaleLines,omitempty"`
	SalePayments *SalePayments `json:"SalePayments,omitempty"`
}

type SaleLines struct {
	SaleLine Many[SaleLine] `json:"SaleLine,omitempty"`
}

type SaleLine struct {
	SaleLineID          string `json:"saleLineID"`
	ShopID              string `json:"shopID"`
	TimeStamp           string `json:"timeStamp"`
	UnitQuantity        string `json:"unitQuantity"`
	UnitPrice           string `json:"unitPrice"`
	CalcLineDiscount    string `json:"calcLineDiscount"`
	DisplayableSubtotal string `json:"displayableSubtotal"`
	CalcTax1            string `json:"calcTax1"`
	CalcTax2            string `json:"calcTax2"`
	CalcTotal           string `json:"calcTotal"`
	Note                string `json:"Note,omitempty"`
	Item                *Item  `json:"Item,omitempty"`
}

type Item struct {
	ItemID      string `json:"itemID"`
	Description string `json:"description"`
}

type SalePayments struct {
	SalePayment Many[SalePayment] `json:"SalePayment,omitempty"`
}

type SalePayment struct {
	SalePaymentID   string       `json:"salePaymentID"`
	Amount          string       `json:"amount"`
	PaymentTypeID   string       `json:"paymentTypeID"`
	CreditAccountID string       `json:"creditAccountID"`
	PaymentType     *PaymentType `json:"PaymentType,omitempty"`
}

// SaleCreate is the write-side sale payload used to post balance-clearing
// transactions. The write API accepts numeric scalars directly.
type SaleCreate struct {
	EmployeeID   int                `json:"employeeID"`
	RegisterID   int                `json:"registerID"`
	ShopID       int                `json:"shopID"`
	CustomerID   int                `json:"customerID"`
	Completed    bool               `json:"completed"`
	SaleLines    SaleLinesCreate    `json:"SaleLines"`
	SalePayments SalePaymentsCreate `json:"SalePayments"`
}

type SaleLinesCreate struct {
	SaleLine SaleLineCreate `json:"SaleLine"`
}

type SaleLineCreate struct {
	ItemID       int    `json:"itemID"`
	Note         string `json:"note"`
	UnitQuantity int    `json:"unitQuantity"`
	UnitPrice    string `json:"unitPrice"`
	TaxClassID   int    `json:"taxClassID"`
	AvgCost      int    `json:"avgCost"`
	FifoCost     int    `json:"fifoCost"`
}

type SalePaymentsCreate struct {
	SalePayment SalePaymentCreate `json:"SalePayment"`
}

type SalePaymentCreate struct {
	Amount          string `json:"amount"`
	PaymentTypeID   int    `json:"paymentTypeID"`
	CreditAccountID int    `json:"creditAccountID"`
}
