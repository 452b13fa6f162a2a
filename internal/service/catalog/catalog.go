package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"MacroCast/internal/domain/models"
	"MacroCast/pkg/util"
)

var known = map[string]models.MacroSeries{
	"selic": {Alias: "selic", ProviderCode: 432, Description: "SELIC meta anual (%)"},
	"ipca":  {Alias: "ipca", ProviderCode: 433, Description: "IPCA variação mensal (%)"},
	"pib":   {Alias: "pib", ProviderCode: 4385, Description: "PIB trimestre vs mesmo período anterior (%)"},
}

// Catalog resolves user supplied names to provider series.
type Catalog struct {
	series map[string]models.MacroSeries
}

// New returns the catalog of known BCB series.
func New() *Catalog {
	return &Catalog{series: known}
}

// Resolve maps an alias or a raw numeric SGS code to a series.
func (c *Catalog) Resolve(name string) (models.MacroSeries, error) {
	alias := strings.ToLower(strings.TrimSpace(name))
	if alias == "" {
		return models.MacroSeries{}, fmt.Errorf("%w: series name is required", models.ErrInvalidInput)
	}

	if s, ok := c.series[alias]; ok {
		return s, nil
	}

	if util.IsDigits(alias) {
		code, err := strconv.Atoi(alias)
		if err != nil {
			return models.MacroSeries{}, fmt.Errorf("%w: %q", models.ErrUnknownSeries, name)
		}
		return models.MacroSeries{
			Alias:        alias,
			ProviderCode: code,
			Description:  fmt.Sprintf("Série SGS %d", code),
		}, nil
	}

	return models.MacroSeries{}, fmt.Errorf("%w: %q", models.ErrUnknownSeries, name)
}

// List returns the registered series sorted by alias.
func (c *Catalog) List() []models.MacroSeries {
	out := make([]models.MacroSeries, 0, len(c.series))
	for _, s := range c.series {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
