package projections

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"brochure/internal/adapters/api"
	"brochure/internal/domain/portfolio"
)

// GetPortfolioQuery carries query parameters.
type GetPortfolioQuery struct {
	ID string
}

// GetPortfolioResult carries the query result.
type GetPortfolioResult struct {
	ID        string
	Portfolio portfolio.Portfolio
}

// GetPortfolioDeps holds dependencies for GetPortfolio.
type GetPortfolioDeps struct {
	Gateway PortfolioFetcher
}

// ErrMissingID is returned when a portfolio is requested without an id.
var ErrMissingID = errors.New("portfolio id is required")

// QueryGetPortfolio fetches one public portfolio.
// PRE: query.ID is non-empty
// POST: returns api.ErrNotFound (wrapped) when no such student exists
func QueryGetPortfolio(ctx context.Context, query GetPortfolioQuery, deps GetPortfolioDeps) (GetPortfolioResult, error) {
	if query.ID == "" {
		return GetPortfolioResult{}, ErrMissingID
	}
	p, err := deps.Gateway.FetchPortfolio(ctx, query.ID)
	if err != nil {
		return GetPortfolioResult{}, err
	}
	return GetPortfolioResult{ID: query.ID, Portfolio: p}, nil
}

// GetOwnPortfolioQuery carries the caller's upstream cookies.
type GetOwnPortfolioQuery struct {
	Jar http.CookieJar
}

// GetOwnPortfolioResult carries the query result.
type GetOwnPortfolioResult struct {
	Portfolio portfolio.Portfolio
	Exists    bool // false means the student has not submitted yet
}

// GetOwnPortfolioDeps holds dependencies for GetOwnPortfolio.
type GetOwnPortfolioDeps struct {
	Gateway OwnPortfolioFetcher
}

// QueryGetOwnPortfolio fetches the caller's own portfolio for the dashboard and editor.
// POST: a missing record yields Exists=false with a default portfolio and no error
// POST: transport, status and parse failures are all returned as errors
func QueryGetOwnPortfolio(ctx context.Context, query GetOwnPortfolioQuery, deps GetOwnPortfolioDeps) (GetOwnPortfolioResult, error) {
	res := deps.Gateway.FetchOwnPortfolio(ctx, query.Jar)
	switch res.Status {
	case api.OwnPortfolioFound:
		return GetOwnPortfolioResult{Portfolio: res.Portfolio, Exists: true}, nil
	case api.OwnPortfolioNotFound:
		return GetOwnPortfolioResult{Portfolio: portfolio.New()}, nil
	default:
		slog.Warn("own_portfolio_fetch_failed", "error", res.Err)
		return GetOwnPortfolioResult{Portfolio: portfolio.New()}, res.Err
	}
}
