package customers

// Customer is a row of master_customer.
type Customer struct {
	CustomerID int64  `json:"customerid"`
	CustName   string `json:"custname"`
}

// CustomerInput is the body accepted by create and update.
type CustomerInput struct {
	CustName string `json:"custname" validate:"required,max=255"`
}
