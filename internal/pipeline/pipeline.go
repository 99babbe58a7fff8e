// Package pipeline filters and sorts live collections for display.
//
// Everything here returns a new slice and leaves its input alone. Sorting
// is stable, so re-sorting an unchanged list never moves tied rows.
package pipeline

import "slices"

// Predicate reports whether an item should be kept.
type Predicate[T any] func(T) bool

// Compare orders two items like cmp.Compare.
type Compare[T any] func(a, b T) int

// All combines predicates conjunctively. Nil predicates are skipped and an
// empty list keeps everything.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range preds {
			if p != nil && !p(item) {
				return false
			}
		}
		return true
	}
}

// Apply keeps the items pred accepts and stable-sorts them with cmp. A nil
// pred keeps everything and a nil cmp keeps input order.
func Apply[T any](items []T, pred Predicate[T], cmp Compare[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// Reverse flips a comparator.
func Reverse[T any](cmp Compare[T]) Compare[T] {
	return func(a, b T) int { return cmp(b, a) }
}
