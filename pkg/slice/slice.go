// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice compliments the standard [slices] package by providing functional
programming utilities (Map, Filter, SumBy) leveraging generics.
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
//
// The result is never nil, so it always encodes as a JSON array.
func Map[T any, U any](input []T, transform func(T) U) []U {
	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter returns only the elements for which predicate evaluates to true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// Count returns how many elements satisfy predicate.
func Count[T any](input []T, predicate func(T) bool) int {
	count := 0
	for _, v := range input {
		if predicate(v) {
			count++
		}
	}
	return count
}

// SumBy adds up the value extracted from every element.
func SumBy[T any, N ~int | ~int64 | ~float64](input []T, value func(T) N) N {
	var total N
	for _, v := range input {
		total += value(v)
	}
	return total
}

// GroupBy buckets elements by key, preserving input order inside each bucket.
func GroupBy[T any, K comparable](input []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, v := range input {
		k := key(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}
