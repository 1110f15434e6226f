package quote

// NoveltyFilter selects the quotes of a batch that are newer than the cursor
// and computes the next cursor value.
//
// The first quote of a batch is taken as the greatest number and the last one
// as the least; callers must pass batches in source order.
//
// A zero cursor is unset: the call selects nothing and returns the least
// number as the baseline, so the newer part of that page is delivered by the
// next poll. Otherwise the next cursor is the greatest number of the batch,
// even if that moves the cursor backwards, unless Clamp is set.
type NoveltyFilter struct {
	Clamp bool
}

func NewNoveltyFilter(clamp bool) *NoveltyFilter {
	return &NoveltyFilter{Clamp: clamp}
}

func (f *NoveltyFilter) Run(batch Batch, cursor int) (Batch, int, error) {
	if len(batch) == 0 {
		return nil, cursor, ErrEmptyBatch
	}

	greatest := batch[0].Number
	least := batch[len(batch)-1].Number

	if cursor == 0 {
		return Batch{}, least, nil
	}

	fresh := make(Batch, 0, len(batch))
	for _, q := range batch {
		if q.Number > cursor {
			fresh = append(fresh, q)
		}
	}

	next := greatest
	if f.Clamp && cursor > next {
		next = cursor
	}

	return fresh, next, nil
}
