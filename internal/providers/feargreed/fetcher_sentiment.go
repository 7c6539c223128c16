package feargreed

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/marketpulse/internal/provider"
	"github.com/seenimoa/marketpulse/pkg/models"
)

type sentimentFetcher struct {
	provider.BaseFetcher
	cnnURL    string
	cryptoURL string
}

func newSentimentFetcher(cnnURL, cryptoURL string) *sentimentFetcher {
	return &sentimentFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelSentimentIndex,
			"Latest 0-100 fear & greed reading for stocks or crypto",
			[]string{provider.ParamMarket},
			nil,
			provider.WithCacheTTL(10*time.Minute),
			provider.WithRateLimit(2, time.Second),
		),
		cnnURL:    cnnURL,
		cryptoURL: cryptoURL,
	}
}

func (f *sentimentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	market := strings.ToLower(params[provider.ParamMarket])

	var read func(context.Context) (models.Sentiment, error)
	switch market {
	case models.MarketStocks:
		read = f.stocks
	case models.MarketCrypto:
		read = f.crypto
	default:
		return nil, fmt.Errorf("feargreed: unknown market %q", market)
	}

	return f.Load(ctx, params, func(ctx context.Context) (any, error) {
		s, err := read(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (f *sentimentFetcher) stocks(ctx context.Context) (models.Sentiment, error) {
	var resp cnnGraphData
	if err := fetchJSON(ctx, f.cnnURL, &resp); err != nil {
		return models.Sentiment{}, fmt.Errorf("feargreed stocks: %w", err)
	}
	fg := resp.FearAndGreed
	if fg.Rating == "" {
		return models.Sentiment{}, fmt.Errorf("feargreed stocks: empty reading")
	}
	return models.Sentiment{
		Market: models.MarketStocks,
		Value:  int(math.RoundToEven(fg.Score)),
		Label:  titleCase(fg.Rating),
		Source: "cnn",
	}, nil
}

func (f *sentimentFetcher) crypto(ctx context.Context) (models.Sentiment, error) {
	var resp altFNGResponse
	if err := fetchJSON(ctx, f.cryptoURL, &resp); err != nil {
		return models.Sentiment{}, fmt.Errorf("feargreed crypto: %w", err)
	}
	if resp.Metadata.Error != nil {
		return models.Sentiment{}, fmt.Errorf("feargreed crypto: %s", *resp.Metadata.Error)
	}
	if len(resp.Data) == 0 {
		return models.Sentiment{}, fmt.Errorf("feargreed crypto: empty reading")
	}
	v, err := strconv.Atoi(resp.Data[0].Value)
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("feargreed crypto: parse value %q: %w", resp.Data[0].Value, err)
	}
	return models.Sentiment{
		Market: models.MarketCrypto,
		Value:  v,
		Label:  titleCase(resp.Data[0].ValueClassification),
		Source: "alternative.me",
	}, nil
}
