package httpclient

import "golang.org/x/time/rate"

// NewLimiter returns a token bucket allowing perSecond requests with the given
// burst, or nil when perSecond is not positive. A burst below one is raised
// to one so the limiter can ever grant a request.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}
