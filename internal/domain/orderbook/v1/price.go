package orderbookv1

import (
	"math"
	"strconv"
)

// ParsePrice converts a decimal price string to fixed-point hundredths.
// Two decimal places carry the full semantic precision of the feed.
func ParsePrice(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

// FormatPrice renders fixed-point hundredths with two decimal places.
func FormatPrice(p int64) string {
	neg := p < 0
	if neg {
		p = -p
	}
	s := strconv.FormatInt(p/100, 10) + "." + pad2(p%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
