package pagination

import "context"

// PageFunc fetches one page of a listing. An empty cursor requests the first
// page; an empty next cursor in the response marks the last page.
type PageFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// All invokes fetch until the listing reports no further cursor and returns
// every item in server order. Items are not deduplicated and failures are not
// retried: the first error aborts the enumeration.
func All[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var (
		all    []T
		cursor string
	)

	for {
		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next == "" {
			break
		}
		cursor = next
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}

// First returns the first item of a listing and whether one existed. Pages
// are fetched only until one carries an item; empty pages are skipped.
func First[T any](ctx context.Context, fetch PageFunc[T]) (T, bool, error) {
	var (
		zero   T
		cursor string
	)

	for {
		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return zero, false, err
		}
		if len(items) > 0 {
			return items[0], true, nil
		}
		if next == "" {
			return zero, false, nil
		}
		cursor = next
	}
}
