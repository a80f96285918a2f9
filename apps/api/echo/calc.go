package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/calc"
)

func registerCalcAPI(g *echo.Group) {
	cg := g.Group("/calculators")
	cg.POST("/sip", calcSIP)
	cg.POST("/compound-interest", calcCompound)
	cg.POST("/brokerage", calcBrokerage)
	cg.POST("/profit-loss", calcProfitLoss)
}

// Handlers

func calcSIP(ctx echo.Context) error {
	var data SIPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SIPRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, calc.SIP(calc.SIPInput{
		MonthlyInvestment: data.MonthlyInvestment,
		AnnualRatePercent: data.AnnualRatePercent,
		Years:             data.Years,
	}))
}

func calcCompound(ctx echo.Context) error {
	var data CompoundRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompoundRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, calc.Compound(calc.CompoundInput{
		Principal:         data.Principal,
		AnnualRatePercent: data.AnnualRatePercent,
		Years:             data.Years,
		Frequency:         data.Frequency,
	}))
}

func calcBrokerage(ctx echo.Context) error {
	var data BrokerageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BrokerageRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, calc.Brokerage(calc.BrokerageInput{
		BuyPrice:             data.BuyPrice,
		SellPrice:            data.SellPrice,
		Quantity:             data.Quantity,
		BrokerageRatePercent: data.BrokerageRatePercent,
	}))
}

func calcProfitLoss(ctx echo.Context) error {
	var data ProfitLossRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfitLossRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, calc.ProfitLoss(calc.ProfitLossInput{
		BuyPrice:  data.BuyPrice,
		SellPrice: data.SellPrice,
		Quantity:  data.Quantity,
	}))
}

type (
	SIPRequest struct {
		MonthlyInvestment float64 `json:"monthly_investment" validate:"required,gt=0"`
		AnnualRatePercent float64 `json:"annual_rate_percent" validate:"required,gt=0,lte=50"`
		Years             int     `json:"years" validate:"required,gte=1,lte=40"`
	}

	CompoundRequest struct {
		Principal         float64 `json:"principal" validate:"required,gt=0"`
		AnnualRatePercent float64 `json:"annual_rate_percent" validate:"required,gte=0.1,lte=100"`
		Years             float64 `json:"years" validate:"required,gte=1,lte=100"`
		Frequency         int     `json:"frequency" validate:"gte=1,lte=365"`
	}

	BrokerageRequest struct {
		BuyPrice             float64 `json:"buy_price" validate:"required,gt=0"`
		SellPrice            float64 `json:"sell_price" validate:"required,gt=0"`
		Quantity             int     `json:"quantity" validate:"required,gt=0"`
		BrokerageRatePercent float64 `json:"brokerage_rate_percent" validate:"gte=0,lte=5"`
	}

	ProfitLossRequest struct {
		BuyPrice  float64 `json:"buy_price" validate:"required,gt=0"`
		SellPrice float64 `json:"sell_price" validate:"required,gte=0"`
		Quantity  int     `json:"quantity" validate:"required,gt=0"`
	}
)
