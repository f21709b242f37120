package internal

import (
	"iter"
)

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterZip pairs two slices element by element, stopping at the shorter one.
func IterZip[T1 any, T2 any](a []T1, b []T2) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for n := range min(len(a), len(b)) {
			if !yield(a[n], b[n]) {
				return
			}
		}
	}
}
