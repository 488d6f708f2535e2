package rowkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobalt-telemetry/observationstore/internal/mathutil"
	"github.com/cobalt-telemetry/observationstore/rowkey"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	k := rowkey.Key{CustomerID: 1, ProjectID: 2, MetricID: 3, DayIndex: 4, ArrivalID: 5, RandomID: 6}
	encoded := rowkey.Encode(k)
	decoded, ok := rowkey.Decode(encoded)
	require.True(t, ok)
	require.Equal(t, k, decoded)
}

func TestEncodeIsFixedWidthHex(t *testing.T) {
	k := rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 100}
	encoded := rowkey.Encode(k)
	require.Equal(t, "00000001:00000001:00000001:00000064:0000000000000000:00000000", encoded)
}

func TestDecodeRejectsMalformedKeys(t *testing.T) {
	cases := []string{
		"",
		"not-a-key",
		"01:02:03",                                        // too few fields
		"01:02:03:04:05:06:07",                             // too many fields
		"0000000g:00000001:00000001:00000001:0000000000000001:00000001", // non-hex digit
		"1:00000001:00000001:00000001:0000000000000001:00000001",        // wrong width
	}
	for _, c := range cases {
		_, ok := rowkey.Decode(c)
		require.Falsef(t, ok, "expected decode failure for %q", c)
	}
}

func TestKeyOrderMatchesDayOrder(t *testing.T) {
	a := rowkey.Encode(rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 5})
	b := rowkey.Encode(rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 6})
	require.Less(t, a, b)
}

func TestKeyOrderIsStableWithinADayByArrivalThenRandom(t *testing.T) {
	a := rowkey.Encode(rowkey.Key{DayIndex: 1, ArrivalID: 10, RandomID: 1})
	b := rowkey.Encode(rowkey.Key{DayIndex: 1, ArrivalID: 11, RandomID: 0})
	require.Less(t, a, b)
}

func TestPrefixCPMIsAPrefixOfEveryKeyForThatMetric(t *testing.T) {
	prefix := rowkey.PrefixCPM(1, 2, 3)
	full := rowkey.Encode(rowkey.Key{CustomerID: 1, ProjectID: 2, MetricID: 3, DayIndex: 99, ArrivalID: 1, RandomID: 1})
	require.Truef(t, len(full) > len(prefix) && full[:len(prefix)] == prefix, "expected %q to have prefix %q", full, prefix)
}

func TestPrefixCPMDoesNotMatchADifferentMetric(t *testing.T) {
	prefix := rowkey.PrefixCPM(1, 2, 3)
	full := rowkey.Encode(rowkey.Key{CustomerID: 1, ProjectID: 2, MetricID: 4, DayIndex: 99})
	require.NotEqual(t, prefix, full[:len(prefix)])
}

func TestFirstKeyForDayIsSmallestKeyOfThatDay(t *testing.T) {
	first := rowkey.FirstKeyForDay(1, 1, 1, 5)
	other := rowkey.Encode(rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 5, ArrivalID: 1, RandomID: 1})
	require.LessOrEqual(t, first, other)
}

func TestSuccessorPrefixForDayAdvancesTheDayField(t *testing.T) {
	succ := rowkey.SuccessorPrefixForDay(1, 1, 1, 5)
	require.Equal(t, rowkey.PrefixCPMD(1, 1, 1, 6), succ)
}

func TestSuccessorPrefixForDaySaturatesAtMaxUint32(t *testing.T) {
	succ := rowkey.SuccessorPrefixForDay(1, 1, 1, mathutil.MaxUint32)
	require.Empty(t, succ)
}

func TestSuccessorIncrementsRandomIDByOne(t *testing.T) {
	k := rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 1, ArrivalID: 1, RandomID: 5}
	require.Equal(t, uint32(6), k.Successor().RandomID)
}

func TestSuccessorCarriesIntoArrivalIDOnRandomOverflow(t *testing.T) {
	k := rowkey.Key{ArrivalID: 1, RandomID: mathutil.MaxUint32}
	s := k.Successor()
	require.Equal(t, uint64(2), s.ArrivalID)
	require.Equal(t, uint32(0), s.RandomID)
}

func TestSuccessorIsStrictlyGreaterThanKInEncoding(t *testing.T) {
	k := rowkey.Key{CustomerID: 1, ProjectID: 2, MetricID: 3, DayIndex: 4, ArrivalID: 5, RandomID: 6}
	require.Less(t, rowkey.Encode(k), rowkey.Encode(k.Successor()))
}

func TestSuccessorStaysDecodable(t *testing.T) {
	k := rowkey.Key{CustomerID: 1, ProjectID: 1, MetricID: 1, DayIndex: 42, ArrivalID: 99, RandomID: mathutil.MaxUint32}
	encoded := rowkey.Encode(k.Successor())
	decoded, ok := rowkey.Decode(encoded)
	require.True(t, ok)
	require.Equal(t, k.DayIndex, decoded.DayIndex)
	require.Equal(t, uint64(100), decoded.ArrivalID)
	require.Equal(t, uint32(0), decoded.RandomID)
}
