package items

// Item is a row of master_item.
type Item struct {
	ItemID   int64  `json:"itemid"`
	ItemName string `json:"itemname"`
}

type ItemInput struct {
	ItemName string `json:"itemname" validate:"required,max=255"`
}
