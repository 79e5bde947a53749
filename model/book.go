package model

type CopyStatus string

const (
	CopyInStock     CopyStatus = "in_stock"
	CopyTransmitOut CopyStatus = "transmit_out"
	CopyLending     CopyStatus = "lending"
	CopyTransmitIn  CopyStatus = "transmit_in"
)

type BookPublic struct {
	Id                 string   `json:"id"`
	Name               string   `json:"name"`
	NameEn             string   `json:"name_en,omitempty"`
	Author             string   `json:"author"`
	Category1          string   `json:"category1,omitempty"`
	Category2          string   `json:"category2,omitempty"`
	Category3          string   `json:"category3,omitempty"`
	Publisher          string   `json:"publisher,omitempty"`
	PublishDate        string   `json:"publish_date,omitempty"`
	Introduction       string   `json:"introduction,omitempty"`
	Libworkers         []string `json:"libworker_users"`
	IsAllowedToBorrow  bool     `json:"isAllowedToBorrow"`
	ManuallyDisallowed bool     `json:"manually_disallowed"`
	ReasonOfDisallowed string   `json:"reason_of_disallowed,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

type BookPrivate struct {
	KeeperUsers []string `json:"keeper_users"`
	// CopyKeeperMap names the keeper holding each registered copy.
	CopyKeeperMap map[string]string `json:"copy_keeper_map,omitempty"`
}

type BookInventory struct {
	Stock       int                   `json:"stock"`
	TransmitOut int                   `json:"transmit_out"`
	Lending     int                   `json:"lending"`
	TransmitIn  int                   `json:"transmit_in"`
	Copies      map[string]CopyStatus `json:"copies,omitempty"`
}

// Total is the number of copies the library owns.
func (inv *BookInventory) Total() int {
	return inv.Stock + inv.TransmitOut + inv.Lending + inv.TransmitIn
}

// Lent is the number of copies currently away from the stock.
func (inv *BookInventory) Lent() int {
	return inv.TransmitOut + inv.Lending + inv.TransmitIn
}

type Upload struct {
	PostId string `json:"post_id"`
	Delete bool   `json:"delete,omitempty"`
}

type Book struct {
	BookPublic
	BookPrivate
	BookInventory
	Upload
}

// ReasonNoStock is recorded when borrowing closes because no copy is left.
const ReasonNoStock = "no-stock"

// RefreshAllowed opens or closes borrowing from the stock. A book closed by
// hand stays closed with its reason.
func (b *Book) RefreshAllowed() {
	switch {
	case b.ManuallyDisallowed:
		b.IsAllowedToBorrow = false
	case b.Stock <= 0:
		b.IsAllowedToBorrow = false
		b.ReasonOfDisallowed = ReasonNoStock
	default:
		b.IsAllowedToBorrow = true
		b.ReasonOfDisallowed = ""
	}
}
