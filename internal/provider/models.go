package provider

// ModelType names a standard data model. Each ModelType maps to one result
// type in pkg/models.
type ModelType string

const (
	// ModelPriceHistorical is daily OHLCV for an asset → []models.PriceBar.
	ModelPriceHistorical ModelType = "PriceHistorical"
	// ModelIndexHistorical is daily OHLCV for an index such as ^VIX → []models.PriceBar.
	ModelIndexHistorical ModelType = "IndexHistorical"
	// ModelEconomicSeries is a macro series, most-recent-first → models.TimeSeries.
	ModelEconomicSeries ModelType = "EconomicSeries"
	// ModelSentimentIndex is a 0-100 fear & greed reading → models.Sentiment.
	ModelSentimentIndex ModelType = "SentimentIndex"
)

// AllModels returns every model type in display order.
func AllModels() []ModelType {
	return []ModelType{
		ModelPriceHistorical,
		ModelIndexHistorical,
		ModelEconomicSeries,
		ModelSentimentIndex,
	}
}

// ModelCategory returns the display category of a model type.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelPriceHistorical:
		return "Price"
	case ModelIndexHistorical:
		return "Index"
	case ModelEconomicSeries:
		return "Economy"
	case ModelSentimentIndex:
		return "Sentiment"
	default:
		return "Other"
	}
}
