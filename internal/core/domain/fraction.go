package domain

import "fmt"

type FractionType string

const (
	FractionGreenWaste        FractionType = "Green waste"
	FractionConstructionWaste FractionType = "Construction waste"
)

// ParseFractionType maps the wire label to a FractionType.
func ParseFractionType(label string) (FractionType, error) {
	switch label {
	case string(FractionGreenWaste):
		return FractionGreenWaste, nil
	case string(FractionConstructionWaste):
		return FractionConstructionWaste, nil
	default:
		return "", fmt.Errorf("unknown fraction type %q", label)
	}
}

func (t FractionType) String() string {
	return string(t)
}

// DroppedFraction is one material fraction dropped off during a visit.
// Immutable once constructed.
type DroppedFraction struct {
	fractionType FractionType
	weight       Weight
}

func NewDroppedFraction(fractionType FractionType, weight Weight) DroppedFraction {
	return DroppedFraction{fractionType: fractionType, weight: weight}
}

func (f DroppedFraction) Type() FractionType {
	return f.fractionType
}

func (f DroppedFraction) Weight() Weight {
	return f.weight
}
