package agents

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"sibyl/internal/domain/signal"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

const remoteForecastVersion = "external_stub_v1"

// RemoteForecaster delegates to a price-model service over HTTP
type RemoteForecaster struct {
	client *resty.Client
	url    string
	log    *logger.Logger
}

func NewRemoteForecaster(serviceURL string, timeout time.Duration) *RemoteForecaster {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &RemoteForecaster{
		client: client,
		url:    serviceURL,
		log:    logger.Get().With("component", "remote_forecaster"),
	}
}

type forecastRequest struct {
	Symbol      string             `json:"symbol"`
	AsOf        time.Time          `json:"as_of"`
	Features    map[string]float64 `json:"features"`
	HorizonDays int                `json:"horizon_days"`
}

type forecastResponse struct {
	P10        float64 `json:"p10"`
	P50        float64 `json:"p50"`
	P90        float64 `json:"p90"`
	ExpReturn  float64 `json:"exp_return"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
}

func (f *RemoteForecaster) Predict(ctx context.Context, symbol string, asOf time.Time, vector map[string]float64, horizonDays int) (signal.ForecastResult, error) {
	var parsed forecastResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(forecastRequest{
			Symbol:      symbol,
			AsOf:        asOf,
			Features:    vector,
			HorizonDays: horizonDays,
		}).
		SetResult(&parsed).
		Post(f.url)
	if err != nil {
		return signal.ForecastResult{}, errors.Wrap(err, "forecast service request")
	}
	if resp.IsError() {
		return signal.ForecastResult{}, errors.Wrapf(errors.ErrFetchFailed, "forecast service responded %d", resp.StatusCode())
	}

	if parsed.P10 > parsed.P50 || parsed.P50 > parsed.P90 {
		return signal.ForecastResult{}, errors.Wrapf(errors.ErrProviderData,
			"forecast quantiles out of order: p10=%.4f p50=%.4f p90=%.4f", parsed.P10, parsed.P50, parsed.P90)
	}

	direction := signal.Direction(parsed.Direction)
	if direction != signal.Up && direction != signal.Down && direction != signal.Flat {
		direction = DirectionFromReturn(parsed.ExpReturn)
	}

	return signal.ForecastResult{
		Symbol:       symbol,
		AsOf:         asOf,
		HorizonDays:  horizonDays,
		P10:          parsed.P10,
		P50:          parsed.P50,
		P90:          parsed.P90,
		ExpReturn:    parsed.ExpReturn,
		Direction:    direction,
		Confidence:   signal.Clamp(parsed.Confidence, 0, 1),
		ModelVersion: remoteForecastVersion,
	}, nil
}
