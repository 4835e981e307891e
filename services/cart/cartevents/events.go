package cartevents

const (
	TopicName       = "cart"
	cartClearedName = TopicName + ".cleared"
)

type CartCleared struct {
	CartUID string
	Reason  string
}

func (e CartCleared) GetEventTypeName() string {
	return cartClearedName
}

func (e CartCleared) GetAggregateName() string {
	return e.CartUID
}
