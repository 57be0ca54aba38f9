package allocation

import (
	"fmt"
	"math"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/money"
)

// TipMode selects how the tip pool is determined. The three modes are
// mutually exclusive.
type TipMode string

const (
	// TipModePercent applies one of the fixed percentages to the
	// subtotal.
	TipModePercent TipMode = "percent"

	// TipModeCustom uses a free-typed dollar amount.
	TipModeCustom TipMode = "custom"

	// TipModeNone forces the tip pool to zero.
	TipModeNone TipMode = "none"
)

// FixedTipPercents are the selectable preset percentages.
var FixedTipPercents = []float64{15, 18, 20}

// DefaultTipPercent is preselected when no tip was detected on the
// scanned receipt.
const DefaultTipPercent = 18

// preselectTolerance is how close (in percentage points) a scanned
// tip's implied percentage must be to a preset to snap to it.
const preselectTolerance = 1.0

// TipSelection is the user's tip choice.
type TipSelection struct {
	Mode    TipMode
	Percent float64 // set when Mode == TipModePercent
	Amount  float64 // set when Mode == TipModeCustom
}

// Validate rejects selections that don't match their mode.
func (s TipSelection) Validate() error {
	switch s.Mode {
	case TipModePercent:
		for _, p := range FixedTipPercents {
			if s.Percent == p {
				return nil
			}
		}
		return fmt.Errorf("%w: tip percent must be one of 15, 18, 20", ErrValidation)
	case TipModeCustom:
		if s.Amount < 0 {
			return fmt.Errorf("%w: tip amount cannot be negative", ErrValidation)
		}
		return nil
	case TipModeNone:
		return nil
	default:
		return fmt.Errorf("%w: unknown tip mode %q", ErrValidation, s.Mode)
	}
}

// Pool resolves the selection into the dollar amount to distribute.
func (s TipSelection) Pool(subtotal float64) float64 {
	switch s.Mode {
	case TipModePercent:
		return money.Round(subtotal * s.Percent / 100)
	case TipModeCustom:
		return money.Round(s.Amount)
	default:
		return 0
	}
}

// PreselectTip chooses the initial tip selection from a scanned tip
// hint. A scanned amount whose implied percentage lands within one
// point of a preset snaps to that preset; anything else prefills the
// custom field. No hint defaults to 18%.
func PreselectTip(subtotal float64, scannedTip *float64) TipSelection {
	if scannedTip == nil || *scannedTip <= 0 || subtotal <= 0 {
		return TipSelection{Mode: TipModePercent, Percent: DefaultTipPercent}
	}
	implied := *scannedTip / subtotal * 100
	for _, p := range FixedTipPercents {
		if math.Abs(implied-p) < preselectTolerance {
			return TipSelection{Mode: TipModePercent, Percent: p}
		}
	}
	return TipSelection{Mode: TipModeCustom, Amount: money.Round(*scannedTip)}
}

// PoolShare is one item's slice of a tip or tax pool, weighted by its
// share of the subtotal and rounded to cents at the point of
// attachment. A zero subtotal allocates nothing.
func PoolShare(itemPrice, subtotal, pool float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return money.Round(itemPrice / subtotal * pool)
}

// PoolShares computes every valid item's slice of a pool, keyed by
// item ID.
func PoolShares(bill *models.Bill, pool float64) map[string]float64 {
	subtotal := Subtotal(bill)
	shares := make(map[string]float64)
	for _, it := range bill.Items {
		if !it.Valid() {
			continue
		}
		shares[it.ID] = PoolShare(it.Price, subtotal, pool)
	}
	return shares
}
