// Package probe implements the connectivity check that keeps each
// ModelRecord's connect_status current (spec.md §4.4).
package probe

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/relay/upstream"
)

// Probe builds a minimal test request for m via its resolved adapter and
// POSTs it with a 10-second timeout, following no redirects. The status
// interpretation is fixed by spec.md §4.4:
//   - 200 or 429 => reachable (a 429 still proves the endpoint is live).
//   - any other 4xx => not reachable.
//   - 5xx or transport error => reachable (optimistic: don't quarantine a
//     configuration over a transient upstream outage).
func Probe(ctx context.Context, m model.ModelRecord) (reachable bool, err error) {
	a, ok := adaptor.Resolve(m.Vendor, m.ApiSpec)
	if !ok {
		return false, errors.Errorf("no adapter registered for %s/%s", m.Vendor, m.ApiSpec)
	}

	probeCtx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	testReq := a.BuildTestRequest(m.ModelName)
	httpReq, err := a.BuildRequest(probeCtx, testReq, m.ApiBase, m.ApiPath, m.ApiKey, m.ModelName)
	if err != nil {
		return false, errors.Wrap(err, "build probe request")
	}

	resp, err := upstream.DoNoRedirect(httpReq)
	if err != nil {
		return true, nil
	}
	defer resp.Body.Close()

	return interpretStatus(resp.StatusCode), nil
}

func interpretStatus(status int) bool {
	switch {
	case status == http.StatusOK:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= 400 && status < 500:
		return false
	default:
		return true
	}
}

// All concurrently probes every ModelRecord in repo and writes back each
// result's connect_status, one errgroup goroutine per record with no cap on
// concurrency (spec.md §4.4, §5 "any number of readers may access the
// registry concurrently").
func All(ctx context.Context, repo model.ModelRepository) error {
	records, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list records for probing")
	}

	// A plain Group, not WithContext: one model's probe failure must not
	// cancel the others in flight.
	var g errgroup.Group
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			reachable, probeErr := Probe(ctx, rec)
			if probeErr != nil {
				reachable = false
			}
			return repo.UpdateConnectStatus(ctx, rec.Id, reachable)
		})
	}
	return g.Wait()
}
