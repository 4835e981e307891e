package cart

// Queries offers read-only views on a Store
type Queries struct {
	store *Store
}

func NewQueries(store *Store) *Queries {
	if store == nil {
		panic("cart: Queries need a Store")
	}
	return &Queries{store: store}
}

func (q *Queries) mustHaveStore() *Store {
	if q == nil || q.store == nil {
		panic("cart: Queries used without a Store")
	}
	return q.store
}

func (q *Queries) ItemCount() int {
	return q.mustHaveStore().State().TotalItems
}

// TotalPrice is what the user pays, tax and discount included
func (q *Queries) TotalPrice() float64 {
	return q.mustHaveStore().State().FinalTotal
}

func (q *Queries) IsInCart(id string) bool {
	return q.mustHaveStore().State().Contains(id)
}

func (q *Queries) Currency() string {
	return q.mustHaveStore().State().Currency
}
