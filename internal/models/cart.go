package models

import "time"

// CartLine is one distinct product held in the cart. The product fields are a
// snapshot taken at add time; prices are re-derived server-side when the order
// is placed.
type CartLine struct {
	ProductID           string   `bson:"productId" json:"productId"`
	Name                string   `bson:"name" json:"name"`
	UnitPrice           float64  `bson:"unitPrice" json:"unitPrice"`
	DiscountedUnitPrice *float64 `bson:"discountedUnitPrice,omitempty" json:"discountedUnitPrice,omitempty"`
	ImageRef            string   `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
	Quantity            int      `bson:"quantity" json:"quantity"`
}

// EffectiveUnitPrice returns the discounted price when one is set and actually
// lower than the regular price, otherwise the regular price.
func (l CartLine) EffectiveUnitPrice() float64 {
	if l.DiscountedUnitPrice != nil && *l.DiscountedUnitPrice > 0 && *l.DiscountedUnitPrice < l.UnitPrice {
		return *l.DiscountedUnitPrice
	}
	return l.UnitPrice
}

// Cart is the persisted cart document for one session. Lines keep insertion
// order; at most one line exists per productId.
type Cart struct {
	SessionID string     `bson:"sessionId" json:"sessionId"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Total sums effective unit price × quantity over all lines. Recomputed on
// every call so it can never go stale after a mutation.
func (c Cart) Total() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.EffectiveUnitPrice() * float64(line.Quantity)
	}
	return total
}

// Count is the total unit count across all lines, not the line count.
func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
