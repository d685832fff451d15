package sales

import (
	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// SaleRequest is the body of POST /sales and PUT /sales/{docno}.
type SaleRequest struct {
	DocDate    string      `json:"docdate" validate:"required,datetime=2006-01-02"`
	CustomerID int64       `json:"customerid" validate:"required,gt=0"`
	Items      []LineInput `json:"items" validate:"omitempty,dive"`
}

// LineInput is one requested detail line. UnitPrice is a pointer so a line
// that omits it is rejected rather than stored at zero.
type LineInput struct {
	ItemID    int64            `json:"itemid" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitprice"`
	Qty       int              `json:"qty" validate:"gte=0"`
}

// DocRef is returned after a sale is created.
type DocRef struct {
	DocNo int64 `json:"docno"`
}

// SalesDTO is the flattened view of one sale.
type SalesDTO struct {
	DocNo       int64        `json:"docno"`
	DocDate     shared.Date  `json:"docdate"`
	CustomerID  *int64       `json:"customerid"`
	Customer    *CustomerRef `json:"customer"`
	SalesDetail []DetailLine `json:"sales_detail"`
}

// DetailLine carries item reference fields from the item join, so they are
// null when that join is missing. Price and quantity come from the detail row.
type DetailLine struct {
	ItemID    *int64          `json:"itemid"`
	ItemName  *string         `json:"itemname"`
	UnitPrice decimal.Decimal `json:"unitprice"`
	Qty       int             `json:"qty"`
}

// ToSalesDTO flattens a join result. Detail order is preserved.
func ToSalesDTO(j JoinResult) SalesDTO {
	dto := SalesDTO{
		DocNo:       j.Header.DocNo,
		DocDate:     j.Header.DocDate,
		CustomerID:  j.Header.CustomerID,
		Customer:    copyCustomer(j.Customer),
		SalesDetail: make([]DetailLine, 0, len(j.Details)),
	}
	for _, d := range j.Details {
		line := DetailLine{UnitPrice: d.UnitPrice, Qty: d.Qty}
		if d.Item != nil {
			id, name := d.Item.ItemID, d.Item.ItemName
			line.ItemID = &id
			line.ItemName = &name
		}
		dto.SalesDetail = append(dto.SalesDetail, line)
	}
	return dto
}

// ToListRow attaches the customer join to a header.
func ToListRow(h SalesHeader, c *CustomerRef) ListRow {
	return ListRow{
		DocNo:      h.DocNo,
		DocDate:    h.DocDate,
		CustomerID: h.CustomerID,
		Customer:   copyCustomer(c),
	}
}

func copyCustomer(c *CustomerRef) *CustomerRef {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
