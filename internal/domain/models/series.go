package models

import "fmt"

// MacroSeries identifies one indicator published by the BCB SGS API.
type MacroSeries struct {
	Alias        string `json:"alias"`
	ProviderCode int    `json:"sgsCode"`
	Description  string `json:"descricao"`
}

// SourceDescription renders the attribution string shown to API consumers.
func (s MacroSeries) SourceDescription() string {
	return fmt.Sprintf("Banco Central do Brasil - SGS %d (%s)", s.ProviderCode, s.Description)
}
