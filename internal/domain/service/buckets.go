package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Fallback keys recognised in every weight table.
const (
	KeyDefault = "default"
	KeyUnknown = "unknown"
)

// Bucket is one numeric range of a RangeTable.
// "a-b" is [a, b), "N+" is [N, +Inf) and "N" matches exactly N.
type Bucket struct {
	Key    string
	Lower  float64
	Upper  float64
	Exact  bool
	Weight float64
}

// Contains reports whether v falls in the bucket.
func (b Bucket) Contains(v float64) bool {
	if b.Exact {
		return v == b.Lower
	}
	return v >= b.Lower && v < b.Upper
}

// RangeTable maps numeric values to weights through half-open buckets parsed
// once at load time.
type RangeTable struct {
	buckets     []Bucket
	fallback    float64
	hasFallback bool
}

// ParseRangeTable parses string range keys into typed buckets.
func ParseRangeTable(raw map[string]float64) (RangeTable, error) {
	var t RangeTable
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		w := raw[k]
		key := strings.ToLower(strings.TrimSpace(k))
		if key == KeyDefault || key == KeyUnknown {
			// "default" wins over "unknown" when both are present.
			if !t.hasFallback || key == KeyDefault {
				t.fallback, t.hasFallback = w, true
			}
			continue
		}
		b, err := parseBucket(key)
		if err != nil {
			return RangeTable{}, err
		}
		b.Weight = w
		t.buckets = append(t.buckets, b)
	}

	sort.SliceStable(t.buckets, func(i, j int) bool {
		if t.buckets[i].Lower != t.buckets[j].Lower {
			return t.buckets[i].Lower < t.buckets[j].Lower
		}
		return t.buckets[i].Exact && !t.buckets[j].Exact
	})
	return t, nil
}

// MustRangeTable is ParseRangeTable for literals known to be valid.
func MustRangeTable(raw map[string]float64) RangeTable {
	t, err := ParseRangeTable(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseBucket(key string) (Bucket, error) {
	switch {
	case strings.HasSuffix(key, "+"):
		lo, err := strconv.ParseFloat(strings.TrimSuffix(key, "+"), 64)
		if err != nil {
			return Bucket{}, fmt.Errorf("invalid open-ended bucket %q: %w", key, err)
		}
		return Bucket{Key: key, Lower: lo, Upper: math.Inf(1)}, nil
	case strings.Contains(key, "-"):
		parts := strings.SplitN(key, "-", 2)
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Bucket{}, fmt.Errorf("invalid bucket lower bound %q: %w", key, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Bucket{}, fmt.Errorf("invalid bucket upper bound %q: %w", key, err)
		}
		if hi <= lo {
			return Bucket{}, fmt.Errorf("invalid bucket %q: upper bound must exceed lower bound", key)
		}
		return Bucket{Key: key, Lower: lo, Upper: hi}, nil
	default:
		v, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return Bucket{}, fmt.Errorf("invalid bucket %q: %w", key, err)
		}
		return Bucket{Key: key, Lower: v, Upper: v, Exact: true}, nil
	}
}

// Lookup returns the weight of the first bucket containing v and its key, or
// the table's fallback (0 when the table has none).
func (t RangeTable) Lookup(v float64) (float64, string) {
	for _, b := range t.buckets {
		if b.Contains(v) {
			return b.Weight, b.Key
		}
	}
	return t.fallback, KeyDefault
}

// Buckets returns a copy of the parsed buckets in evaluation order.
func (t RangeTable) Buckets() []Bucket {
	return append([]Bucket(nil), t.buckets...)
}

// CategoryTable maps case-insensitive string keys to weights.
type CategoryTable struct {
	weights map[string]float64
}

// NewCategoryTable lowercases keys.
func NewCategoryTable(raw map[string]float64) CategoryTable {
	w := make(map[string]float64, len(raw))
	for k, v := range raw {
		w[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return CategoryTable{weights: w}
}

// Lookup resolves key, then "default", then "unknown", then 0.
func (t CategoryTable) Lookup(key string) (float64, string) {
	k := strings.ToLower(strings.TrimSpace(key))
	if w, ok := t.weights[k]; ok && k != "" {
		return w, k
	}
	if w, ok := t.weights[KeyDefault]; ok {
		return w, KeyDefault
	}
	if w, ok := t.weights[KeyUnknown]; ok {
		return w, KeyUnknown
	}
	return 0, KeyDefault
}
