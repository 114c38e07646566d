package domain

// CartLine is one item entry in a session cart. Quantities only; prices
// are resolved against the catalog at read and checkout time.
type CartLine struct {
	ItemID   string
	Quantity int
}

type Cart struct {
	SessionID string
	Lines     []CartLine
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Quantity(itemID string) int {
	for _, l := range c.Lines {
		if l.ItemID == itemID {
			return l.Quantity
		}
	}
	return 0
}
