package container_plan

import (
	"sort"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/types"
)

// Recommendation is the number of containers of one type needed for a cargo.
type Recommendation struct {
	ContainerType     ContainerType   `json:"containerType"`
	Count             int64           `json:"count"`
	VolumeUtilization decimal.Decimal `json:"volumeUtilization"`
	WeightUtilization decimal.Decimal `json:"weightUtilization"`
}

func (r Recommendation) maxUtilization() decimal.Decimal {
	return decimal.Max(r.VolumeUtilization, r.WeightUtilization)
}

// Recommend ranks the container types for a cargo: fewest containers first, then the
// fullest. Reefers are never recommended; they are selected by hand.
func Recommend(volumeCBM, weightKG decimal.Decimal) []Recommendation {
	var out []Recommendation
	for _, spec := range specs {
		if spec.Type == TypeReefer {
			continue
		}
		count := max(types.CeilDiv(volumeCBM, spec.VolumeCBM), types.CeilDiv(weightKG, spec.MaxWeightKG), 1)
		n := decimal.NewFromInt(count)
		out = append(out, Recommendation{
			ContainerType:     spec.Type,
			Count:             count,
			VolumeUtilization: types.Percent(volumeCBM, spec.VolumeCBM.Mul(n)),
			WeightUtilization: types.Percent(weightKG, spec.MaxWeightKG.Mul(n)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].maxUtilization().GreaterThan(out[j].maxUtilization())
	})
	return out
}
