package projections

import (
	"context"
	"net/http"

	"brochure/internal/adapters/api"
	"brochure/internal/domain/portfolio"
)

// StudentLister fetches the directory snapshot.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]portfolio.Student, error)
}

// PortfolioFetcher fetches a public portfolio by id.
type PortfolioFetcher interface {
	FetchPortfolio(ctx context.Context, id string) (portfolio.Portfolio, error)
}

// OwnPortfolioFetcher fetches the portfolio belonging to the session in jar.
type OwnPortfolioFetcher interface {
	FetchOwnPortfolio(ctx context.Context, jar http.CookieJar) api.OwnPortfolioResult
}
