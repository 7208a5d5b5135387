package pricing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() RateTable {
	return RateTable{
		VehicleSprinter19: {Productive: 1800, Unproductive: 1500},
		VehicleMidsizeBus: {Productive: 2600, Unproductive: 2400},
		VehicleCoach60:    {Productive: 3000, Unproductive: 3000},
	}
}

func testPrices() DriverPrices {
	return DriverPrices{
		Provincial: UnitPrices{
			ItemWorkday:       63199,
			ItemPerDiem:       13574,
			ItemPickupDropoff: 4597,
			ItemOvertimeHour:  9196,
			ItemSleeperBerth:  21591,
		},
		National: UnitPrices{
			ItemBreakfast:    3624,
			ItemLunch:        13337,
			ItemSnack:        3624,
			ItemDinner:       13337,
			ItemSleeperBerth: 21591,
		},
	}
}

func baseTrip() TripInput {
	input := NewTripInput(testPrices())
	input.ProductiveKm = 100
	input.UnproductiveKm = 20
	return input
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*TripInput)
		want   Result
	}{
		{
			name: "SingleUnitVehicleOnly",
			want: Result{
				VehicleCostPerUnit: 308000,
				VehicleCostTotal:   308000,
				Subtotal:           308000,
				FinalCost:          308000,
				TotalWithTax:       340340,
			},
		},
		{
			name:   "ThreeUnits",
			mutate: func(in *TripInput) { in.Units = 3 },
			want: Result{
				VehicleCostPerUnit: 308000,
				VehicleCostTotal:   924000,
				Subtotal:           924000,
				FinalCost:          924000,
				TotalWithTax:       1021020,
			},
		},
		{
			name: "ProvincialWorkdayTwoUnits",
			mutate: func(in *TripInput) {
				in.Units = 2
				in.Provincial.Workday.Quantity = 1
			},
			want: Result{
				VehicleCostPerUnit:        308000,
				VehicleCostTotal:          616000,
				ProvincialDriverCostTotal: 126398,
				Subtotal:                  742398,
				FinalCost:                 742398,
				TotalWithTax:              742398 * TaxMultiplier,
			},
		},
		{
			name: "DestinationKmIsProductive",
			mutate: func(in *TripInput) {
				in.ProductiveKm = 60
				in.DestinationKm = 40
			},
			want: Result{
				VehicleCostPerUnit: 308000,
				VehicleCostTotal:   308000,
				Subtotal:           308000,
				FinalCost:          308000,
				TotalWithTax:       340340,
			},
		},
		{
			name: "NationalMealsWithDiscount",
			mutate: func(in *TripInput) {
				in.Vehicle = VehicleSprinter19
				in.ProductiveKm = 10
				in.UnproductiveKm = 0
				in.National.Lunch.Quantity = 2
				in.National.Dinner.Quantity = 1
				in.DiscountPercent = 10
			},
			want: Result{
				VehicleCostPerUnit:      18000,
				VehicleCostTotal:        18000,
				NationalDriverCostTotal: 40011,
				Subtotal:                58011,
				DiscountAmount:          5801.1,
				FinalCost:               52209.9,
				TotalWithTax:            52209.9 * TaxMultiplier,
			},
		},
		{
			name: "LegacyPerDiemIgnored",
			mutate: func(in *TripInput) {
				in.National.LegacyPerDiem = 99999
			},
			want: Result{
				VehicleCostPerUnit: 308000,
				VehicleCostTotal:   308000,
				Subtotal:           308000,
				FinalCost:          308000,
				TotalWithTax:       340340,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := baseTrip()
			if tc.mutate != nil {
				tc.mutate(&input)
			}

			got, err := Compute(input, testRates())
			require.NoError(t, err)
			assertResultClose(t, tc.want, got)
		})
	}
}

func TestComputeUnknownVehicle(t *testing.T) {
	t.Parallel()

	input := baseTrip()
	input.Vehicle = "double-decker"

	_, err := Compute(input, testRates())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "double-decker")
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	input := baseTrip()
	input.Units = 4
	input.Provincial.PerDiem.Quantity = 3
	input.National.Snack.Quantity = 2
	input.DiscountPercent = 7.5

	first, err := Compute(input, testRates())
	require.NoError(t, err)
	second, err := Compute(input, testRates())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeZeroUnitsMatchesOneUnit(t *testing.T) {
	t.Parallel()

	for _, units := range []int{0, -3} {
		input := baseTrip()
		input.Provincial.Workday.Quantity = 1
		input.Units = units
		got, err := Compute(input, testRates())
		require.NoError(t, err)

		input.Units = 1
		want, err := Compute(input, testRates())
		require.NoError(t, err)

		assert.Equal(t, want, got, "units=%d", units)
	}
}

func TestComputeScalesWithUnits(t *testing.T) {
	t.Parallel()

	input := baseTrip()
	input.Units = 3
	input.Provincial.Workday.Quantity = 2
	input.National.Breakfast.Quantity = 1.5

	single, err := Compute(input, testRates())
	require.NoError(t, err)

	input.Units = 6
	double, err := Compute(input, testRates())
	require.NoError(t, err)

	assert.Equal(t, single.VehicleCostPerUnit, double.VehicleCostPerUnit)
	assert.Equal(t, 2*single.VehicleCostTotal, double.VehicleCostTotal)
	assert.Equal(t, 2*single.ProvincialDriverCostTotal, double.ProvincialDriverCostTotal)
	assert.Equal(t, 2*single.NationalDriverCostTotal, double.NationalDriverCostTotal)
}

func TestComputeDiscountBoundaries(t *testing.T) {
	t.Parallel()

	input := baseTrip()
	input.Provincial.SleeperBerth.Quantity = 1

	input.DiscountPercent = 0
	none, err := Compute(input, testRates())
	require.NoError(t, err)
	assert.Equal(t, none.Subtotal, none.FinalCost)
	assert.Zero(t, none.DiscountAmount)

	input.DiscountPercent = 100
	full, err := Compute(input, testRates())
	require.NoError(t, err)
	assert.Zero(t, full.FinalCost)
	assert.Zero(t, full.TotalWithTax)
	assert.Equal(t, full.Subtotal, full.DiscountAmount)
}

func TestComputeClampsDiscount(t *testing.T) {
	t.Parallel()

	input := baseTrip()

	input.DiscountPercent = 150
	over, err := Compute(input, testRates())
	require.NoError(t, err)
	assert.Zero(t, over.FinalCost)

	input.DiscountPercent = -20
	under, err := Compute(input, testRates())
	require.NoError(t, err)
	assert.Equal(t, under.Subtotal, under.FinalCost)

	input.DiscountPercent = math.NaN()
	nan, err := Compute(input, testRates())
	require.NoError(t, err)
	assert.Equal(t, nan.Subtotal, nan.FinalCost)
}

func TestComputeNonNegativeForValidInputs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	vehicles := Vehicles()

	for i := 0; i < 500; i++ {
		input := NewTripInput(testPrices())
		input.Units = rng.Intn(10)
		input.ProductiveKm = rng.Float64() * 2000
		input.DestinationKm = rng.Float64() * 500
		input.UnproductiveKm = rng.Float64() * 300
		input.Vehicle = vehicles[rng.Intn(len(vehicles))]
		input.DiscountPercent = rng.Float64() * 100
		input.Provincial.Workday.Quantity = float64(rng.Intn(5))
		input.Provincial.OvertimeHour.Quantity = rng.Float64() * 8
		input.National.Dinner.Quantity = float64(rng.Intn(4))
		if i%50 == 0 {
			input.DiscountPercent = 100
		}

		got, err := Compute(input, testRates())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.FinalCost, 0.0)
		assert.GreaterOrEqual(t, got.TotalWithTax, got.FinalCost)
		assert.GreaterOrEqual(t, got.Subtotal, got.FinalCost)
	}
}

func TestReverseSubtotalRoundTrip(t *testing.T) {
	t.Parallel()

	input := baseTrip()
	input.Units = 2
	input.Provincial.Workday.Quantity = 1

	for _, discount := range []float64{0, 5, 12.5, 33.3, 50, 90, 99, 99.99} {
		input.DiscountPercent = discount
		result, err := Compute(input, testRates())
		require.NoError(t, err)

		subtotal, err := ReverseSubtotal(result.FinalCost, discount)
		require.NoError(t, err, "discount=%v", discount)
		assert.InDelta(t, result.Subtotal, subtotal, result.Subtotal*1e-9+1e-6, "discount=%v", discount)
	}
}

func TestReverseSubtotalGuard(t *testing.T) {
	t.Parallel()

	for _, discount := range []float64{100, 99.99999, 120} {
		_, err := ReverseSubtotal(0, discount)
		assert.ErrorIs(t, err, ErrComputation, "discount=%v", discount)
	}

	got, err := ReverseSubtotal(1500, 0)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got)
}

func TestRateTableValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testRates().Validate())

	missing := testRates()
	delete(missing, VehicleCoach60)
	assert.ErrorIs(t, missing.Validate(), ErrConfiguration)

	zero := testRates()
	zero[VehicleSprinter19] = VehicleRate{Productive: 0, Unproductive: 1500}
	assert.ErrorIs(t, zero.Validate(), ErrConfiguration)
}

func TestParseVehicle(t *testing.T) {
	t.Parallel()

	got, err := ParseVehicle("coach-60")
	require.NoError(t, err)
	assert.Equal(t, VehicleCoach60, got)

	got, err = ParseVehicle(" sprinter 19 asientos ")
	require.NoError(t, err)
	assert.Equal(t, VehicleSprinter19, got)

	_, err = ParseVehicle("tram")
	assert.ErrorIs(t, err, ErrUnknownVehicle)
}

func assertResultClose(t *testing.T, want, got Result) {
	t.Helper()

	const delta = 1e-6
	assert.InDelta(t, want.VehicleCostPerUnit, got.VehicleCostPerUnit, delta, "VehicleCostPerUnit")
	assert.InDelta(t, want.VehicleCostTotal, got.VehicleCostTotal, delta, "VehicleCostTotal")
	assert.InDelta(t, want.ProvincialDriverCostTotal, got.ProvincialDriverCostTotal, delta, "ProvincialDriverCostTotal")
	assert.InDelta(t, want.NationalDriverCostTotal, got.NationalDriverCostTotal, delta, "NationalDriverCostTotal")
	assert.InDelta(t, want.Subtotal, got.Subtotal, delta, "Subtotal")
	assert.InDelta(t, want.DiscountAmount, got.DiscountAmount, delta, "DiscountAmount")
	assert.InDelta(t, want.FinalCost, got.FinalCost, delta, "FinalCost")
	assert.InDelta(t, want.TotalWithTax, got.TotalWithTax, delta, "TotalWithTax")
}

func BenchmarkCompute(b *testing.B) {
	input := baseTrip()
	input.Units = 3
	input.Provincial.Workday.Quantity = 2
	input.DiscountPercent = 10
	rates := testRates()
	for i := 0; i < b.N; i++ {
		if _, err := Compute(input, rates); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
