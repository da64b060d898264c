// Package vendors holds the HTTP clients for the daily-bar and derivative
// sources. Clients never return errors to the pipeline: any transport or
// parse failure is logged and surfaced as an empty series, which the price
// guard treats as vendor-unavailable.
package vendors

import (
	"time"

	"github.com/go-resty/resty/v2"

	"SignalPull/pkg/util"
)

const userAgent = "signalpull/1.0"

// ticker strips an optional venue prefix, so configured canonical symbols
// like NYSEARCA:VUG or BINANCE:BTCUSDT resolve to the vendor's own form.
func ticker(symbol string) string {
	_, t := util.SplitCanonical(symbol)
	return t
}

func newClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)
	return client
}
