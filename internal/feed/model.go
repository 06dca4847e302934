// internal/feed/model.go
package feed

import "encoding/xml"

// DateLayout atrybutu yml_catalog@date
const DateLayout = "2006-01-02 15:04"

// Catalog – korzeń dokumentu YML.
type Catalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    Shop     `xml:"shop"`
}

type Shop struct {
	Name       string     `xml:"name"`
	Company    string     `xml:"company"`
	URL        string     `xml:"url"`
	Categories Categories `xml:"categories"`
	Offers     Offers     `xml:"offers"`
}

type Categories struct {
	Items []Category `xml:"category"`
}

type Category struct {
	ID    string `xml:"id,attr"`
	Title string `xml:",chardata"`
}

type Offers struct {
	Items []Offer `xml:"offer"`
}

// Offer – kolejność pól = kolejność elementów w feedzie.
type Offer struct {
	ID           string      `xml:"id,attr"`
	VendorCode   string      `xml:"vendorCode"`
	Name         string      `xml:"name"`
	CategoryID   string      `xml:"categoryId"`
	Price        string      `xml:"price"`
	VAT          string      `xml:"vat"`
	StepQuantity string      `xml:"step-quantity"`
	Brand        string      `xml:"brand"`
	Vendor       string      `xml:"vendor"`
	Picture      string      `xml:"picture,omitempty"`
	Description  string      `xml:"description,omitempty"`
	Warehouses   []Warehouse `xml:"warehouse"`
	Params       []Param     `xml:"param"`
	Preorder     string      `xml:"preorder"`
}

type Warehouse struct {
	Name     string `xml:"name,attr"`
	Unit     string `xml:"unit,attr"`
	Quantity string `xml:",chardata"`
}

type Param struct {
	Name  string `xml:"name,attr"`
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}
