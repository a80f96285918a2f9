package calc

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestSIP(t *testing.T) {
	tests := []struct {
		name            string
		in              SIPInput
		wantInvested    float64
		wantFutureValue float64 // within 1.0
	}{
		{
			name:            "5k monthly at 12% for 10 years",
			in:              SIPInput{MonthlyInvestment: 5000, AnnualRatePercent: 12, Years: 10},
			wantInvested:    600000,
			wantFutureValue: 1161695,
		},
		{
			name:            "zero rate collapses to invested capital",
			in:              SIPInput{MonthlyInvestment: 1000, AnnualRatePercent: 0, Years: 5},
			wantInvested:    60000,
			wantFutureValue: 60000,
		},
		{
			name:            "single year",
			in:              SIPInput{MonthlyInvestment: 100, AnnualRatePercent: 6, Years: 1},
			wantInvested:    1200,
			wantFutureValue: 1239.72,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SIP(tt.in)
			if got.Invested != tt.wantInvested {
				t.Errorf("SIP() Invested = %v, want %v", got.Invested, tt.wantInvested)
			}
			if !almostEqual(got.FutureValue, tt.wantFutureValue, 1.0) {
				t.Errorf("SIP() FutureValue = %v, want ~%v", got.FutureValue, tt.wantFutureValue)
			}
			if !almostEqual(got.Returns, got.FutureValue-got.Invested, 1e-9) {
				t.Errorf("SIP() Returns = %v, want FutureValue-Invested = %v", got.Returns, got.FutureValue-got.Invested)
			}
		})
	}
}

func TestSIP_positiveReturnsWhenRatePositive(t *testing.T) {
	for _, in := range []SIPInput{
		{MonthlyInvestment: 1, AnnualRatePercent: 0.1, Years: 1},
		{MonthlyInvestment: 500, AnnualRatePercent: 8, Years: 20},
		{MonthlyInvestment: 25000, AnnualRatePercent: 50, Years: 40},
	} {
		got := SIP(in)
		if got.FutureValue <= got.Invested {
			t.Errorf("SIP(%+v): FutureValue %v should exceed Invested %v", in, got.FutureValue, got.Invested)
		}
	}
}

func TestCompound(t *testing.T) {
	tests := []struct {
		name       string
		in         CompoundInput
		wantAmount float64 // within 0.01
	}{
		{
			name:       "annual compounding",
			in:         CompoundInput{Principal: 100000, AnnualRatePercent: 10, Years: 2, Frequency: 1},
			wantAmount: 121000,
		},
		{
			name:       "quarterly compounding",
			in:         CompoundInput{Principal: 10000, AnnualRatePercent: 8, Years: 5, Frequency: 4},
			wantAmount: 14859.47,
		},
		{
			name:       "zero years returns principal",
			in:         CompoundInput{Principal: 5000, AnnualRatePercent: 12, Years: 0, Frequency: 12},
			wantAmount: 5000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compound(tt.in)
			if !almostEqual(got.TotalAmount, tt.wantAmount, 0.01) {
				t.Errorf("Compound() TotalAmount = %v, want ~%v", got.TotalAmount, tt.wantAmount)
			}
			if !almostEqual(got.Interest, got.TotalAmount-got.Principal, 1e-9) {
				t.Errorf("Compound() Interest = %v, want %v", got.Interest, got.TotalAmount-got.Principal)
			}
			if got.TotalAmount < got.Principal {
				t.Errorf("Compound() TotalAmount %v below Principal %v", got.TotalAmount, got.Principal)
			}
		})
	}
}

func TestBrokerage(t *testing.T) {
	got := Brokerage(BrokerageInput{BuyPrice: 500, SellPrice: 520, Quantity: 100, BrokerageRatePercent: 0.03})

	if got.Turnover != 102000 {
		t.Errorf("Turnover = %v, want 102000", got.Turnover)
	}
	if !almostEqual(got.Brokerage, 30.6, 1e-9) {
		t.Errorf("Brokerage = %v, want 30.6", got.Brokerage)
	}
	if !almostEqual(got.STT, 52, 1e-9) {
		t.Errorf("STT = %v, want 52", got.STT)
	}
	if !almostEqual(got.TransactionCharges, 3.519, 1e-9) {
		t.Errorf("TransactionCharges = %v, want 3.519", got.TransactionCharges)
	}
	if !almostEqual(got.GST, (30.6+3.519)*0.18, 1e-9) {
		t.Errorf("GST = %v, want %v", got.GST, (30.6+3.519)*0.18)
	}
	if !almostEqual(got.SEBICharges, 0.102, 1e-9) {
		t.Errorf("SEBICharges = %v, want 0.102", got.SEBICharges)
	}
	if !almostEqual(got.StampDuty, 7.5, 1e-9) {
		t.Errorf("StampDuty = %v, want 7.5", got.StampDuty)
	}
	if !almostEqual(got.NetProfitLoss, 2000-got.TotalCharges, 1e-9) {
		t.Errorf("NetProfitLoss = %v, want %v", got.NetProfitLoss, 2000-got.TotalCharges)
	}
}

func TestBrokerage_totalIsSumOfCharges(t *testing.T) {
	inputs := []BrokerageInput{
		{BuyPrice: 500, SellPrice: 520, Quantity: 100, BrokerageRatePercent: 0.03},
		{BuyPrice: 99.95, SellPrice: 87.2, Quantity: 1, BrokerageRatePercent: 0.5},
		{BuyPrice: 1500, SellPrice: 1500, Quantity: 10000, BrokerageRatePercent: 0},
	}
	for _, in := range inputs {
		got := Brokerage(in)
		sum := got.Brokerage + got.STT + got.TransactionCharges + got.GST + got.SEBICharges + got.StampDuty
		if !almostEqual(got.TotalCharges, sum, 1e-9) {
			t.Errorf("Brokerage(%+v): TotalCharges %v != sum of components %v", in, got.TotalCharges, sum)
		}
	}
}

func TestProfitLoss(t *testing.T) {
	tests := []struct {
		name    string
		in      ProfitLossInput
		wantPL  float64
		wantPct float64
	}{
		{name: "profit", in: ProfitLossInput{BuyPrice: 100, SellPrice: 120, Quantity: 10}, wantPL: 200, wantPct: 20},
		{name: "loss", in: ProfitLossInput{BuyPrice: 120, SellPrice: 100, Quantity: 5}, wantPL: -100, wantPct: -16.666666666666664},
		{name: "flat", in: ProfitLossInput{BuyPrice: 50, SellPrice: 50, Quantity: 100}, wantPL: 0, wantPct: 0},
		{name: "zero buy price guards division", in: ProfitLossInput{BuyPrice: 0, SellPrice: 10, Quantity: 1}, wantPL: 10, wantPct: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProfitLoss(tt.in)
			if got.ProfitLoss != tt.wantPL {
				t.Errorf("ProfitLoss() = %v, want %v", got.ProfitLoss, tt.wantPL)
			}
			if !almostEqual(got.ReturnPercent, tt.wantPct, 1e-9) {
				t.Errorf("ReturnPercent = %v, want %v", got.ReturnPercent, tt.wantPct)
			}
		})
	}
}
