package models

// MaxRequestHorizon bounds the forecast horizon accepted over HTTP.
const MaxRequestHorizon = 120

// MacroForecastRequest binds GET /ml/v1/macro/:series. Horizon stays a
// string so a blank value can be told apart from zero.
type MacroForecastRequest struct {
	Series  string `param:"series" validate:"required,max=64"`
	From    string `query:"from" validate:"max=32"`
	Horizon string `query:"horizonte" validate:"max=16"`
}
