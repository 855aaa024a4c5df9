package assemble

import "invoicebooks/internal/models"

// Batch accumulates classified line items across the files of one processing
// run, bucketed by business. It is an explicit value owned by the caller and
// threaded through the batch loop; merges must come from a single writer.
type Batch struct {
	groups map[models.Business][]models.LineItem
}

func NewBatch() *Batch {
	return &Batch{groups: make(map[models.Business][]models.LineItem)}
}

// Add merges fully resolved items into the accumulator.
func (b *Batch) Add(items ...models.LineItem) {
	for _, item := range items {
		b.groups[item.Business] = append(b.groups[item.Business], item)
	}
}

// Items returns the accumulated items for one business, in merge order.
func (b *Batch) Items(business models.Business) []models.LineItem {
	return b.groups[business]
}

// Len returns the total number of accumulated items.
func (b *Batch) Len() int {
	n := 0
	for _, items := range b.groups {
		n += len(items)
	}
	return n
}

// Invoices assembles the accumulated items of one business.
func (b *Batch) Invoices(business models.Business) []Invoice {
	return Assemble(b.groups[business])
}

// Businesses returns the buckets that received at least one item, in the
// fixed output order.
func (b *Batch) Businesses() []models.Business {
	var out []models.Business
	for _, business := range models.AllBusinesses() {
		if len(b.groups[business]) > 0 {
			out = append(out, business)
		}
	}
	return out
}
