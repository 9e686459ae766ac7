package weather

import (
	"context"

	"github.com/alexivanou/weatherscore/internal/model"
)

// Result is the outcome of an asynchronous fetch
type Result struct {
	Record model.WeatherRecord
	Err    error
}

// FetchAsync runs Fetch on its own goroutine. The returned channel yields
// exactly one Result and is then closed; it is buffered, so abandoning it
// does not leak the goroutine.
func (c *Client) FetchAsync(ctx context.Context, city string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		rec, err := c.Fetch(ctx, city)
		ch <- Result{Record: rec, Err: err}
	}()
	return ch
}
