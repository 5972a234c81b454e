package internal

import (
	"iter"
)

// IterSeq2Concat concatenates multiple symbol iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return
				}
			}
		}
	}
}

// IterSeq2Find returns the value of the first pair whose key is key.
func IterSeq2Find[T1 comparable, T2 any](seq iter.Seq2[T1, T2], key T1) (value T2, ok bool) {
	for k, v := range seq {
		if k == key {
			return v, true
		}
	}
	return
}
