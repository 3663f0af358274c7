package mail

// PurchaseEmailData feeds the purchase-summary template.
type PurchaseEmailData struct {
	Name         string
	CampaignName string
	Items        []PurchaseEmailItem
	TotalPaid    string
}

type PurchaseEmailItem struct {
	Title       string
	Description string
	State       string
	Quantity    int
	Subtotal    string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string

	From          string
	OperatorEmail string
}
