// Package rowkey implements the canonical encoding of ObservationStore row
// keys: the component that makes lexicographic key order equal the intended
// logical order (customer, project, metric, day, then two tie-breaking
// fields), so that range scans and prefix deletes are simple key-range
// operations on the underlying DataStore.
package rowkey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cobalt-telemetry/observationstore/internal/mathutil"
)

// delim separates encoded fields. It is not a valid hex digit, so splitting
// on it is unambiguous.
const delim = ":"

const (
	u32HexWidth = 8
	u64HexWidth = 16
)

// Key is a fully decoded row key: the six logical fields spec.md §4.D
// requires, in their canonical order.
type Key struct {
	CustomerID uint32
	ProjectID  uint32
	MetricID   uint32
	DayIndex   uint32
	ArrivalID  uint64
	RandomID   uint32
}

// Encode renders k as the fixed-width, big-endian, zero-padded hex string
// this package's Decode inverts. Because each field is a fixed-width
// hex encoding of a non-negative integer, byte-wise lexicographic order on
// the result equals numeric order on the tuple.
func Encode(k Key) string {
	return fmt.Sprintf("%0*x%s%0*x%s%0*x%s%0*x%s%0*x%s%0*x",
		u32HexWidth, k.CustomerID, delim,
		u32HexWidth, k.ProjectID, delim,
		u32HexWidth, k.MetricID, delim,
		u32HexWidth, k.DayIndex, delim,
		u64HexWidth, k.ArrivalID, delim,
		u32HexWidth, k.RandomID,
	)
}

// Decode is total on well-formed keys; malformed keys return ok=false,
// which callers surface as datastore.StatusInvalidArguments.
func Decode(key string) (k Key, ok bool) {
	parts := strings.Split(key, delim)
	if len(parts) != 6 {
		return Key{}, false
	}
	customer, ok1 := parseHexUint32(parts[0])
	project, ok2 := parseHexUint32(parts[1])
	metric, ok3 := parseHexUint32(parts[2])
	day, ok4 := parseHexUint32(parts[3])
	arrival, ok5 := parseHexUint64(parts[4])
	random, ok6 := parseHexUint32(parts[5])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return Key{}, false
	}
	return Key{
		CustomerID: customer,
		ProjectID:  project,
		MetricID:   metric,
		DayIndex:   day,
		ArrivalID:  arrival,
		RandomID:   random,
	}, true
}

func parseHexUint32(s string) (uint32, bool) {
	if len(s) != u32HexWidth {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func parseHexUint64(s string) (uint64, bool) {
	if len(s) != u64HexWidth {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PrefixCPM returns the k=3 prefix over (customer, project, metric) — the
// scope DeleteAllForMetric operates on.
func PrefixCPM(customerID, projectID, metricID uint32) string {
	return fmt.Sprintf("%0*x%s%0*x%s%0*x%s",
		u32HexWidth, customerID, delim,
		u32HexWidth, projectID, delim,
		u32HexWidth, metricID, delim,
	)
}

// PrefixCPMD returns the k=4 prefix over (customer, project, metric, day) —
// the building block for day-range scan bounds.
func PrefixCPMD(customerID, projectID, metricID, dayIndex uint32) string {
	return PrefixCPM(customerID, projectID, metricID) + fmt.Sprintf("%0*x%s", u32HexWidth, dayIndex, delim)
}

// FirstKeyForDay returns the smallest possible row key for
// (customer, project, metric, day): the day's prefix with arrival_id and
// random_id both zeroed. It is the inclusive lower bound of a day-range scan.
func FirstKeyForDay(customerID, projectID, metricID, dayIndex uint32) string {
	return Encode(Key{
		CustomerID: customerID,
		ProjectID:  projectID,
		MetricID:   metricID,
		DayIndex:   dayIndex,
		ArrivalID:  0,
		RandomID:   0,
	})
}

// SuccessorPrefixForDay returns the lexicographic successor of the k=4
// prefix through lastDayIndex: lastDayIndex+1's k=4 prefix, saturating to ""
// (no upper bound) if lastDayIndex is already math.MaxUint32, per spec.md
// §4.D's "K_succ ... with saturation at u32 max handled as 'no upper bound'".
func SuccessorPrefixForDay(customerID, projectID, metricID, lastDayIndex uint32) string {
	if lastDayIndex == mathutil.MaxUint32 {
		return ""
	}
	next := mathutil.SaturatingIncUint32(lastDayIndex)
	return PrefixCPMD(customerID, projectID, metricID, next)
}

// Successor returns the key immediately following k in this encoding's
// total order: the six fields read as one mixed-radix counter
// (random_id least significant, customer_id most significant), incremented
// by one with carry. Because every field keeps its fixed width, the result
// is itself a well-formed Key — unlike appending a raw successor byte to
// the encoded string, it stays decodable, which is what lets
// ObservationStore hand it back out as a pagination token (spec.md §6:
// "the opaque bytes of a row key in the §4.D format").
//
// Carrying out of customer_id (i.e. k.CustomerID == math.MaxUint32 and
// every other field is also at its max) saturates at the all-max key; a
// pagination token that rolled over this far would have to be rejected by
// the next call's (customer, project, metric) match check regardless, so
// no caller can observe a wraparound to zero.
func (k Key) Successor() Key {
	var overflowed bool
	if k.RandomID, overflowed = mathutil.SafeAddUint32(k.RandomID, 1); !overflowed {
		return k
	}
	if k.ArrivalID != math.MaxUint64 {
		k.ArrivalID++
		return k
	}
	k.ArrivalID = 0
	if k.DayIndex, overflowed = mathutil.SafeAddUint32(k.DayIndex, 1); !overflowed {
		return k
	}
	if k.MetricID, overflowed = mathutil.SafeAddUint32(k.MetricID, 1); !overflowed {
		return k
	}
	if k.ProjectID, overflowed = mathutil.SafeAddUint32(k.ProjectID, 1); !overflowed {
		return k
	}
	if k.CustomerID, overflowed = mathutil.SafeAddUint32(k.CustomerID, 1); !overflowed {
		return k
	}
	return Key{CustomerID: mathutil.MaxUint32, ProjectID: mathutil.MaxUint32, MetricID: mathutil.MaxUint32,
		DayIndex: mathutil.MaxUint32, ArrivalID: math.MaxUint64, RandomID: mathutil.MaxUint32}
}
