// Package calc implements the financial calculators offered by the platform:
// SIP future value, compound interest, brokerage/charges breakdown and
// profit/loss. All functions are pure and deterministic; input validation is
// the caller's concern and out-of-range inputs degrade gracefully instead of
// failing.
package calc

import "math"

// Statutory charge rates applied by the brokerage breakdown. Policy values,
// must not drift.
const (
	sttRate         = 0.001     // securities transaction tax, on sell side
	transactionRate = 0.0000345 // exchange transaction charges, on turnover
	gstRate         = 0.18      // on brokerage + transaction charges
	sebiRate        = 0.000001  // SEBI turnover fee
	stampDutyRate   = 0.00015   // on buy side
)

type (
	// SIPInput describes a monthly systematic investment plan.
	SIPInput struct {
		MonthlyInvestment float64
		AnnualRatePercent float64
		Years             int
	}

	SIPResult struct {
		Invested    float64 `json:"invested"`
		Returns     float64 `json:"returns"`
		FutureValue float64 `json:"future_value"`
	}

	CompoundInput struct {
		Principal         float64
		AnnualRatePercent float64
		Years             float64
		Frequency         int // compounding periods per year
	}

	CompoundResult struct {
		Principal   float64 `json:"principal"`
		Interest    float64 `json:"interest"`
		TotalAmount float64 `json:"total_amount"`
	}

	BrokerageInput struct {
		BuyPrice             float64
		SellPrice            float64
		Quantity             int
		BrokerageRatePercent float64
	}

	BrokerageResult struct {
		Turnover           float64 `json:"turnover"`
		Brokerage          float64 `json:"brokerage"`
		STT                float64 `json:"stt"`
		TransactionCharges float64 `json:"transaction_charges"`
		GST                float64 `json:"gst"`
		SEBICharges        float64 `json:"sebi_charges"`
		StampDuty          float64 `json:"stamp_duty"`
		TotalCharges       float64 `json:"total_charges"`
		NetProfitLoss      float64 `json:"net_profit_loss"`
	}

	ProfitLossInput struct {
		BuyPrice  float64
		SellPrice float64
		Quantity  int
	}

	ProfitLossResult struct {
		ProfitLoss    float64 `json:"profit_loss"`
		ReturnPercent float64 `json:"return_percent"`
	}
)

// SIP computes the future value of a monthly investment using the
// annuity-due formula. A zero rate collapses to invested capital since the
// geometric series is undefined there.
func SIP(in SIPInput) SIPResult {
	months := in.Years * 12
	invested := in.MonthlyInvestment * float64(months)

	monthlyRate := in.AnnualRatePercent / 100 / 12
	if monthlyRate == 0 {
		return SIPResult{Invested: invested, FutureValue: invested}
	}

	fv := in.MonthlyInvestment *
		((math.Pow(1+monthlyRate, float64(months)) - 1) / monthlyRate) *
		(1 + monthlyRate)
	return SIPResult{
		Invested:    invested,
		Returns:     fv - invested,
		FutureValue: fv,
	}
}

// Compound computes compound interest over the given number of years at the
// given compounding frequency.
func Compound(in CompoundInput) CompoundResult {
	freq := in.Frequency
	if freq < 1 {
		freq = 1
	}
	amount := in.Principal * math.Pow(1+in.AnnualRatePercent/100/float64(freq), float64(freq)*in.Years)
	return CompoundResult{
		Principal:   in.Principal,
		Interest:    amount - in.Principal,
		TotalAmount: amount,
	}
}

// Brokerage breaks an equity round trip down into its statutory charges and
// the resulting net profit or loss.
func Brokerage(in BrokerageInput) BrokerageResult {
	qty := float64(in.Quantity)
	turnover := (in.BuyPrice + in.SellPrice) * qty
	brokerage := turnover * (in.BrokerageRatePercent / 100)
	stt := in.SellPrice * qty * sttRate
	transCharges := turnover * transactionRate
	gst := (brokerage + transCharges) * gstRate
	sebi := turnover * sebiRate
	stampDuty := in.BuyPrice * qty * stampDutyRate
	total := brokerage + stt + transCharges + gst + sebi + stampDuty

	return BrokerageResult{
		Turnover:           turnover,
		Brokerage:          brokerage,
		STT:                stt,
		TransactionCharges: transCharges,
		GST:                gst,
		SEBICharges:        sebi,
		StampDuty:          stampDuty,
		TotalCharges:       total,
		NetProfitLoss:      (in.SellPrice-in.BuyPrice)*qty - total,
	}
}

// ProfitLoss computes the gross profit/loss of a trade and its return on the
// buy value. A zero buy price yields a zero return percentage.
func ProfitLoss(in ProfitLossInput) ProfitLossResult {
	qty := float64(in.Quantity)
	pl := (in.SellPrice - in.BuyPrice) * qty

	var retPct float64
	if in.BuyPrice > 0 {
		retPct = ((in.SellPrice - in.BuyPrice) / in.BuyPrice) * 100
	}
	return ProfitLossResult{ProfitLoss: pl, ReturnPercent: retPct}
}
