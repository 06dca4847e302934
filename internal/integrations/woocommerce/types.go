// internal/integrations/woocommerce/types.go
package woocommerce

import "encoding/json"

// wcProduct – podzbiór pól /wp-json/wc/v3/products, który trafia do feedu.
type wcProduct struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	SKU              string       `json:"sku"`
	Status           string       `json:"status"`        // "publish","draft","trash"
	RegularPrice     string       `json:"regular_price"` // string w Woo
	SalePrice        string       `json:"sale_price"`    // string
	ManageStock      bool         `json:"manage_stock"`
	StockQty         *json.Number `json:"stock_quantity"` // null gdy manage_stock=false
	StockStatus      string       `json:"stock_status"`   // instock, outofstock, onbackorder
	Backorders       string       `json:"backorders"`     // no, notify, yes
	Description      string       `json:"description"`
	ShortDescription string       `json:"short_description"`
	Weight           string       `json:"weight"`
	Dimensions       wcDimensions `json:"dimensions"`
	Categories       []wcRef      `json:"categories"`
	Images           []wcImage    `json:"images"`
}

type wcDimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type wcRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wcImage struct {
	Src string `json:"src"`
}
