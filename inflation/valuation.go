package inflation

import (
	"fmt"
	"time"

	"github.com/meenmo/ilbond/bond"
)

// PrincipalResult is the inflation-adjusted cash principal owed at settlement.
type PrincipalResult struct {
	SettlementDate time.Time
	Face           float64
	IndexRatio     float64
	// DirtyPrice is the nominal full price per 100 par.
	DirtyPrice float64
	// NominalAccrued is the nominal accrued interest for Face.
	NominalAccrued float64
	// NominalPrincipal is DirtyPrice*Face/Par - NominalAccrued.
	NominalPrincipal float64
	Principal        float64
}

// FlatPriceResult is the clean price scaled by the last coupon's index ratio.
type FlatPriceResult struct {
	SettlementDate time.Time
	IndexRatio     float64
	CleanPrice     float64
	FlatPrice      float64
}

// AccruedResult is accrued interest scaled by the settlement index ratio.
type AccruedResult struct {
	SettlementDate   time.Time
	Face             float64
	IndexRatio       float64
	NominalAccrued   float64
	InflationAccrued float64
}

// Valuation bundles the three figures for one settlement.
type Valuation struct {
	Principal PrincipalResult
	FlatPrice FlatPriceResult
	Accrued   AccruedResult
}

// InflationPrincipal values face at settle off yield ytm. referenceFixing is
// the index level for the settlement date. Negative results are returned as is.
func (b *Bond) InflationPrincipal(settle time.Time, face, ytm, referenceFixing float64, conv bond.YTMConvention) (PrincipalResult, error) {
	if !finite(face) {
		return PrincipalResult{}, b.fail("InflationPrincipal", settle, faceError(face))
	}
	ratio, err := IndexRatio(referenceFixing, b.terms.BaseIndexValue)
	if err != nil {
		return PrincipalResult{}, b.fail("InflationPrincipal", settle, err)
	}
	dirty, err := b.engine.DirtyPriceFromYTM(settle, ytm, conv)
	if err != nil {
		return PrincipalResult{}, b.fail("InflationPrincipal", settle, err)
	}
	if !finite(dirty) {
		return PrincipalResult{}, b.fail("InflationPrincipal", settle, priceError("dirty", dirty, ytm))
	}
	principal := dirty * face / bond.Par
	accrued, err := b.engine.AccruedInterest(settle, face)
	if err != nil {
		return PrincipalResult{}, b.fail("InflationPrincipal", settle, err)
	}
	principal -= accrued

	return PrincipalResult{
		SettlementDate:   settle,
		Face:             face,
		IndexRatio:       ratio,
		DirtyPrice:       dirty,
		NominalAccrued:   accrued,
		NominalPrincipal: principal,
		Principal:        principal * ratio,
	}, nil
}

// FlatPriceFromYTM is the clean price indexed to lastCouponFixing, the index
// level fixed at the most recent coupon date. The inflation accrued since
// that coupon is deliberately left out.
func (b *Bond) FlatPriceFromYTM(settle time.Time, ytm, lastCouponFixing float64, conv bond.YTMConvention) (FlatPriceResult, error) {
	ratio, err := IndexRatio(lastCouponFixing, b.terms.BaseIndexValue)
	if err != nil {
		return FlatPriceResult{}, b.fail("FlatPriceFromYTM", settle, err)
	}
	clean, err := b.engine.CleanPriceFromYTM(settle, ytm, conv)
	if err != nil {
		return FlatPriceResult{}, b.fail("FlatPriceFromYTM", settle, err)
	}
	if !finite(clean) {
		return FlatPriceResult{}, b.fail("FlatPriceFromYTM", settle, priceError("clean", clean, ytm))
	}
	return FlatPriceResult{
		SettlementDate: settle,
		IndexRatio:     ratio,
		CleanPrice:     clean,
		FlatPrice:      clean * ratio,
	}, nil
}

// InflationAccruedInterest is the nominal accrued interest for face scaled by
// the settlement-date index ratio.
func (b *Bond) InflationAccruedInterest(settle time.Time, face, referenceFixing float64) (AccruedResult, error) {
	if !finite(face) {
		return AccruedResult{}, b.fail("InflationAccruedInterest", settle, faceError(face))
	}
	accrued, err := b.engine.AccruedInterest(settle, face)
	if err != nil {
		return AccruedResult{}, b.fail("InflationAccruedInterest", settle, err)
	}
	ratio, err := IndexRatio(referenceFixing, b.terms.BaseIndexValue)
	if err != nil {
		return AccruedResult{}, b.fail("InflationAccruedInterest", settle, err)
	}
	return AccruedResult{
		SettlementDate:   settle,
		Face:             face,
		IndexRatio:       ratio,
		NominalAccrued:   accrued,
		InflationAccrued: accrued * ratio,
	}, nil
}

// Valuation runs InflationPrincipal, FlatPriceFromYTM and
// InflationAccruedInterest for one settlement.
func (b *Bond) Valuation(settle time.Time, face, ytm, referenceFixing, lastCouponFixing float64, conv bond.YTMConvention) (Valuation, error) {
	principal, err := b.InflationPrincipal(settle, face, ytm, referenceFixing, conv)
	if err != nil {
		return Valuation{}, err
	}
	flat, err := b.FlatPriceFromYTM(settle, ytm, lastCouponFixing, conv)
	if err != nil {
		return Valuation{}, err
	}
	accrued, err := b.InflationAccruedInterest(settle, face, referenceFixing)
	if err != nil {
		return Valuation{}, err
	}
	return Valuation{Principal: principal, FlatPrice: flat, Accrued: accrued}, nil
}

func faceError(face float64) error {
	return fmt.Errorf("face must be finite, got %g: %w", face, ErrDomain)
}

func priceError(kind string, price, ytm float64) error {
	return fmt.Errorf("%s price %g at yield %g is not finite: %w", kind, price, ytm, ErrDomain)
}

func (b *Bond) fail(op string, settle time.Time, err error) error {
	b.log.Debug().Err(err).Str("op", op).Time("settlement", settle).Msg("valuation failed")
	return fmt.Errorf("%s: %w", op, err)
}
