package sales

import (
	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// SalesHeader is a row of sales_header.
type SalesHeader struct {
	DocNo      int64       `json:"docno"`
	DocDate    shared.Date `json:"docdate"`
	CustomerID *int64      `json:"customerid"`
}

// CustomerRef is the customer side of a sales join.
type CustomerRef struct {
	CustomerID int64  `json:"customerid"`
	CustName   string `json:"custname"`
}

// ItemRef is the item master side of a detail join.
type ItemRef struct {
	ItemID   int64
	ItemName string
}

// DetailRow is one sales_detail row with its optional item join.
type DetailRow struct {
	LineID    int64
	ItemID    *int64
	UnitPrice decimal.Decimal
	Qty       int
	Item      *ItemRef
}

// JoinResult is a header together with everything it references.
type JoinResult struct {
	Header   SalesHeader
	Customer *CustomerRef
	Details  []DetailRow
}

// ListRow is a header row with its customer join, as returned by the list endpoint.
type ListRow struct {
	DocNo      int64        `json:"docno"`
	DocDate    shared.Date  `json:"docdate"`
	CustomerID *int64       `json:"customerid"`
	Customer   *CustomerRef `json:"customer"`
}
