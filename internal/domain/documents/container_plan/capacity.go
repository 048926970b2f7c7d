package container_plan

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/types"
)

// ContainerType is an ISO container size class.
type ContainerType string

const (
	Type20GP   ContainerType = "20GP"
	Type40GP   ContainerType = "40GP"
	Type40HQ   ContainerType = "40HQ"
	TypeReefer ContainerType = "reefer"
)

// Spec is the fixed physical capacity of a container type.
type Spec struct {
	Type        ContainerType   `json:"containerType"`
	VolumeCBM   decimal.Decimal `json:"volumeCbm"`
	MaxWeightKG decimal.Decimal `json:"maxWeightKg"`
	LengthCM    int             `json:"lengthCm"`
	WidthCM     int             `json:"widthCm"`
	HeightCM    int             `json:"heightCm"`
}

var specs = []Spec{
	{Type: Type20GP, VolumeCBM: types.MustDecimal("33.2"), MaxWeightKG: types.MustDecimal("21800"), LengthCM: 590, WidthCM: 235, HeightCM: 239},
	{Type: Type40GP, VolumeCBM: types.MustDecimal("67.7"), MaxWeightKG: types.MustDecimal("26680"), LengthCM: 1203, WidthCM: 235, HeightCM: 239},
	{Type: Type40HQ, VolumeCBM: types.MustDecimal("76.3"), MaxWeightKG: types.MustDecimal("26580"), LengthCM: 1203, WidthCM: 235, HeightCM: 269},
	{Type: TypeReefer, VolumeCBM: types.MustDecimal("28.0"), MaxWeightKG: types.MustDecimal("27000"), LengthCM: 550, WidthCM: 228, HeightCM: 222},
}

// Specs returns the capacity table in display order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Spec returns the capacity of t.
func (t ContainerType) Spec() (Spec, bool) {
	for _, s := range specs {
		if s.Type == t {
			return s, true
		}
	}
	return Spec{}, false
}

// IsValid reports whether t is a known container type.
func (t ContainerType) IsValid() bool {
	_, ok := t.Spec()
	return ok
}

// Load is the cumulative cargo of one container.
type Load struct {
	ContainerSeq int
	VolumeCBM    decimal.Decimal
	WeightKG     decimal.Decimal
	ItemCount    int
}

// LoadsBySeq groups items by container sequence, ordered by sequence.
func LoadsBySeq(items []Item) []Load {
	index := make(map[int]int)
	var loads []Load
	for _, it := range items {
		i, ok := index[it.ContainerSeq]
		if !ok {
			i = len(loads)
			index[it.ContainerSeq] = i
			loads = append(loads, Load{ContainerSeq: it.ContainerSeq, VolumeCBM: decimal.Zero, WeightKG: decimal.Zero})
		}
		loads[i].VolumeCBM = loads[i].VolumeCBM.Add(it.VolumeCBM)
		loads[i].WeightKG = loads[i].WeightKG.Add(it.WeightKG)
		loads[i].ItemCount++
	}
	sort.Slice(loads, func(a, b int) bool { return loads[a].ContainerSeq < loads[b].ContainerSeq })
	return loads
}

// ContainerSummary is the loading state of one container.
type ContainerSummary struct {
	ContainerSeq      int             `json:"containerSeq"`
	LoadedVolumeCBM   decimal.Decimal `json:"loadedVolumeCbm"`
	VolumeLimitCBM    decimal.Decimal `json:"volumeLimitCbm"`
	VolumeUtilization decimal.Decimal `json:"volumeUtilization"`
	LoadedWeightKG    decimal.Decimal `json:"loadedWeightKg"`
	WeightLimitKG     decimal.Decimal `json:"weightLimitKg"`
	WeightUtilization decimal.Decimal `json:"weightUtilization"`
	IsOverVolume      bool            `json:"isOverVolume"`
	IsOverWeight      bool            `json:"isOverWeight"`
	ItemCount         int             `json:"itemCount"`
}

// Summarize reports every container 1..count, including empty ones.
func Summarize(spec Spec, count int, items []Item) []ContainerSummary {
	bySeq := make(map[int]Load)
	for _, l := range LoadsBySeq(items) {
		bySeq[l.ContainerSeq] = l
	}

	out := make([]ContainerSummary, 0, count)
	for seq := 1; seq <= count; seq++ {
		l, ok := bySeq[seq]
		if !ok {
			l = Load{ContainerSeq: seq, VolumeCBM: decimal.Zero, WeightKG: decimal.Zero}
		}
		out = append(out, ContainerSummary{
			ContainerSeq:      seq,
			LoadedVolumeCBM:   types.RoundVolume(l.VolumeCBM),
			VolumeLimitCBM:    spec.VolumeCBM,
			VolumeUtilization: types.Percent(l.VolumeCBM, spec.VolumeCBM),
			LoadedWeightKG:    types.RoundWeight(l.WeightKG),
			WeightLimitKG:     spec.MaxWeightKG,
			WeightUtilization: types.Percent(l.WeightKG, spec.MaxWeightKG),
			IsOverVolume:      l.VolumeCBM.GreaterThan(spec.VolumeCBM),
			IsOverWeight:      l.WeightKG.GreaterThan(spec.MaxWeightKG),
			ItemCount:         l.ItemCount,
		})
	}
	return out
}

// Capacity dimensions.
const (
	FieldVolume = "volume"
	FieldWeight = "weight"
)

// CapacityError is a container loaded above one of its limits.
type CapacityError struct {
	Code         string          `json:"code"`
	ContainerSeq int             `json:"containerSeq"`
	Field        string          `json:"field"`
	Loaded       decimal.Decimal `json:"loaded"`
	Limit        decimal.Decimal `json:"limit"`
	Message      string          `json:"message"`
}

// CheckCapacity compares the cumulative load of every container with the spec.
// Errors are ordered by container sequence, volume before weight.
func CheckCapacity(spec Spec, items []Item) []CapacityError {
	var errs []CapacityError
	for _, l := range LoadsBySeq(items) {
		if l.VolumeCBM.GreaterThan(spec.VolumeCBM) {
			errs = append(errs, CapacityError{
				Code:         apperror.CodeVolumeExceeded,
				ContainerSeq: l.ContainerSeq,
				Field:        FieldVolume,
				Loaded:       l.VolumeCBM,
				Limit:        spec.VolumeCBM,
				Message: fmt.Sprintf("container %d volume %s cbm exceeds limit %s cbm",
					l.ContainerSeq, l.VolumeCBM, spec.VolumeCBM),
			})
		}
		if l.WeightKG.GreaterThan(spec.MaxWeightKG) {
			errs = append(errs, CapacityError{
				Code:         apperror.CodeWeightExceeded,
				ContainerSeq: l.ContainerSeq,
				Field:        FieldWeight,
				Loaded:       l.WeightKG,
				Limit:        spec.MaxWeightKG,
				Message: fmt.Sprintf("container %d weight %s kg exceeds limit %s kg",
					l.ContainerSeq, l.WeightKG, spec.MaxWeightKG),
			})
		}
	}
	return errs
}
