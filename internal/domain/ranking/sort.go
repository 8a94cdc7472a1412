package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// SortKey names a display ordering for ranked drivers.
type SortKey string

const (
	SortByRank         SortKey = "rank"
	SortByScore        SortKey = "score"
	SortByTier         SortKey = "tier"
	SortByDriverID     SortKey = "driverId"
	SortByQualityGroup SortKey = "qualityGroup"
)

// Order is the direction of a display sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey validates s. An empty string means SortByRank.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortByRank, nil
	case SortByRank, SortByScore, SortByTier, SortByDriverID, SortByQualityGroup:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// ParseOrder validates s. An empty string means Asc.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Asc, nil
	case Asc, Desc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

// SortBy returns a copy of ranked ordered for display. Drivers that tie on
// key keep their canonical rank order. ranked itself is not modified.
func SortBy(ranked []model.RankedDriver, key SortKey, order Order) []model.RankedDriver {
	out := slices.Clone(ranked)
	slices.SortFunc(out, func(a, b model.RankedDriver) int {
		c := compareOn(key, a, b)
		if order == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return out
}

func compareOn(key SortKey, a, b model.RankedDriver) int {
	switch key {
	case SortByScore:
		return cmp.Compare(a.Score, b.Score)
	case SortByTier:
		return cmp.Compare(a.Tier.Ordinal(), b.Tier.Ordinal())
	case SortByDriverID:
		return strings.Compare(a.DriverID, b.DriverID)
	case SortByQualityGroup:
		return cmp.Compare(a.QualityGroup, b.QualityGroup)
	default:
		return cmp.Compare(a.Rank, b.Rank)
	}
}
