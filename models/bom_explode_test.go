package models_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/factory_backend/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExplodeAbsoluteLineWithTolerance(t *testing.T) {
	// 10 units per output unit, 10% allowance, one target unit.
	bom := models.Bom{
		Qty:          dec("1"),
		TolerancePct: dec("10"),
		Lines: []models.BomLine{
			{ItemId: 1, LineType: models.BomLineTypeAbsolute, Qty: dec("10")},
		},
	}

	reqs := bom.Explode(dec("1"), 5, 6)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement; got %d", len(reqs))
	}
	if !reqs[0].Qty.Equal(dec("11")) {
		t.Fatalf("expected qty 11; got %s", reqs[0].Qty)
	}
	if reqs[0].LocationId != 5 {
		t.Fatalf("expected order source location 5; got %d", reqs[0].LocationId)
	}
}

func TestExplodeAbsoluteLineScalesByTargetQty(t *testing.T) {
	bom := models.Bom{
		Qty: dec("1"),
		Lines: []models.BomLine{
			{ItemId: 1, LineType: models.BomLineTypeAbsolute, Qty: dec("10")},
		},
	}

	reqs := bom.Explode(dec("2"), 5, 6)
	if !reqs[0].Qty.Equal(dec("20")) {
		t.Fatalf("expected qty 20 for two output units; got %s", reqs[0].Qty)
	}
}

func TestExplodePercentageLine(t *testing.T) {
	// 50% of the output quantity against an order of 4.
	bom := models.Bom{
		Qty: dec("1"),
		Lines: []models.BomLine{
			{ItemId: 2, LineType: models.BomLineTypePercentage, Qty: dec("50")},
		},
	}

	reqs := bom.Explode(dec("4"), 5, 6)
	if !reqs[0].Qty.Equal(dec("2")) {
		t.Fatalf("expected qty 2; got %s", reqs[0].Qty)
	}
}

func TestExplodeToleranceIsUnconditional(t *testing.T) {
	// A positive header tolerance always inflates requirements; a zero
	// tolerance never does.
	withTol := models.Bom{
		Qty:          dec("1"),
		TolerancePct: dec("5"),
		Lines: []models.BomLine{
			{ItemId: 3, LineType: models.BomLineTypeAbsolute, Qty: dec("100")},
		},
	}
	noTol := models.Bom{
		Qty: dec("1"),
		Lines: []models.BomLine{
			{ItemId: 3, LineType: models.BomLineTypeAbsolute, Qty: dec("100")},
		},
	}

	if got := withTol.Explode(dec("1"), 5, 6)[0].Qty; !got.Equal(dec("105")) {
		t.Fatalf("expected 105 with 5%% tolerance; got %s", got)
	}
	if got := noTol.Explode(dec("1"), 5, 6)[0].Qty; !got.Equal(dec("100")) {
		t.Fatalf("expected 100 without tolerance; got %s", got)
	}
}

func TestMaterialRequirementsApplyHeaderTolerance(t *testing.T) {
	// A plain order against a tolerant BOM draws the inflated quantity;
	// no per-order switch exists for material tolerance.
	order := models.WorkOrder{
		Qty:                   dec("1"),
		SourceLocationId:      5,
		DestinationLocationId: 6,
		Bom: &models.Bom{
			Qty:          dec("1"),
			TolerancePct: dec("10"),
			Lines: []models.BomLine{
				{ItemId: 1, LineType: models.BomLineTypeAbsolute, Qty: dec("10")},
			},
		},
	}

	reqs := order.MaterialRequirements()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement; got %d", len(reqs))
	}
	if !reqs[0].Qty.Equal(dec("11")) {
		t.Fatalf("expected qty 11 with header tolerance 10%%; got %s", reqs[0].Qty)
	}
}

func TestExplodeLocationPrecedence(t *testing.T) {
	bom := models.Bom{
		Qty: dec("1"),
		Lines: []models.BomLine{
			{ItemId: 1, LineType: models.BomLineTypeAbsolute, Qty: dec("1"), SourceLocationId: 9},
			{ItemId: 2, LineType: models.BomLineTypeAbsolute, Qty: dec("1")},
		},
	}

	// Line override wins, then the order source.
	reqs := bom.Explode(dec("1"), 5, 6)
	if reqs[0].LocationId != 9 {
		t.Fatalf("expected line override location 9; got %d", reqs[0].LocationId)
	}
	if reqs[1].LocationId != 5 {
		t.Fatalf("expected order source location 5; got %d", reqs[1].LocationId)
	}

	// No order source: fall back to the destination.
	reqs = bom.Explode(dec("1"), 0, 6)
	if reqs[1].LocationId != 6 {
		t.Fatalf("expected destination fallback 6; got %d", reqs[1].LocationId)
	}
}

func TestExplodeVariantKeyFromLineValues(t *testing.T) {
	bom := models.Bom{
		Qty: dec("1"),
		Lines: []models.BomLine{
			{
				ItemId:   1,
				LineType: models.BomLineTypeAbsolute,
				Qty:      dec("1"),
				AttributeValues: []models.AttributeValue{
					{Id: 12}, {Id: 3},
				},
			},
		},
	}

	reqs := bom.Explode(dec("1"), 5, 6)
	if reqs[0].VariantKey != "12,3" {
		t.Fatalf("expected canonical variant key %q; got %q", "12,3", reqs[0].VariantKey)
	}
}
