package domain

// CartItem is a copy of a matched chunk's metadata.
// The same book may appear more than once.
type CartItem = ChunkMetadata

// Cart is the ordered list of items owned by one session.
type Cart []CartItem

// Total sums the price of every item. An empty cart totals zero.
func (c Cart) Total() float64 {
	var sum float64
	for _, item := range c {
		sum += item.Price
	}
	return sum
}
