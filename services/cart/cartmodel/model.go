package cartmodel

const (
	TaxRate         = 0.18
	DefaultCurrency = "TRY"
)

// Known product types, the tag itself stays open
const (
	TypeHotel          = "hotel"
	TypeTour           = "tour"
	TypeTransfer       = "transfer"
	TypeCarRental      = "car-rental"
	TypeRentalProperty = "rental-property"
	TypeFlight         = "flight"
)

// CartItem is one bookable line item, identified by ID and Type together
type CartItem struct {
	ID            string
	Type          string
	Title         string
	Description   string
	Image         string
	Price         float64
	OriginalPrice *float64
	Currency      string
	Quantity      int
	// Details holds the product specific payload (dates, guests, bookingDetails)
	Details map[string]any
}

func (i CartItem) Matches(id, itemType string) bool {
	return i.ID == id && (itemType == "" || i.Type == itemType)
}

func (i CartItem) Clone() CartItem {
	clone := i
	if i.OriginalPrice != nil {
		originalPrice := *i.OriginalPrice
		clone.OriginalPrice = &originalPrice
	}
	if i.Details != nil {
		clone.Details = copyMap(i.Details)
	}
	return clone
}

// ItemPatch carries the fields of an update, nil means untouched
type ItemPatch struct {
	Title         *string
	Description   *string
	Image         *string
	Price         *float64
	OriginalPrice *float64
	Currency      *string
	Quantity      *int
	Details       map[string]any
}

type Totals struct {
	TotalItems     int
	TotalPrice     float64
	TaxAmount      float64
	DiscountAmount *float64
	FinalTotal     float64
}

type CartState struct {
	Items          []CartItem `json:"items"`
	TotalItems     int        `json:"totalItems"`
	TotalPrice     float64    `json:"totalPrice"`
	Currency       string     `json:"currency"`
	TaxAmount      float64    `json:"taxAmount"`
	DiscountCode   string     `json:"discountCode,omitempty"`
	DiscountAmount *float64   `json:"discountAmount,omitempty"`
	FinalTotal     float64    `json:"finalTotal"`
}

func EmptyState() CartState {
	return CartState{
		Items:    []CartItem{},
		Currency: DefaultCurrency,
	}
}

func (s CartState) Clone() CartState {
	clone := s
	clone.Items = make([]CartItem, 0, len(s.Items))
	for _, item := range s.Items {
		clone.Items = append(clone.Items, item.Clone())
	}
	if s.DiscountAmount != nil {
		amount := *s.DiscountAmount
		clone.DiscountAmount = &amount
	}
	return clone
}

func (s CartState) WithTotals(t Totals) CartState {
	s.TotalItems = t.TotalItems
	s.TotalPrice = t.TotalPrice
	s.TaxAmount = t.TaxAmount
	s.DiscountAmount = t.DiscountAmount
	s.FinalTotal = t.FinalTotal
	return s
}

func (s CartState) Find(id, itemType string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.Matches(id, itemType) {
			return item, true
		}
	}
	return CartItem{}, false
}

func (s CartState) Contains(id string) bool {
	_, found := s.Find(id, "")
	return found
}

func copyMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = copyValue(v)
	}
	return result
}

func copyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return copyMap(value)
	case []any:
		result := make([]any, len(value))
		for i, e := range value {
			result[i] = copyValue(e)
		}
		return result
	default:
		return v
	}
}
