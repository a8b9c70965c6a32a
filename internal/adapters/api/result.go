package api

import "brochure/internal/domain/portfolio"

// OwnPortfolioStatus tags the outcome of fetching the caller's own portfolio.
type OwnPortfolioStatus int

const (
	// OwnPortfolioNotFound means the student has not submitted a portfolio yet.
	OwnPortfolioNotFound OwnPortfolioStatus = iota
	// OwnPortfolioFound carries the stored record.
	OwnPortfolioFound
	// OwnPortfolioFailed covers transport errors, error statuses and unparseable bodies.
	OwnPortfolioFailed
)

// String names the status for logs.
func (s OwnPortfolioStatus) String() string {
	switch s {
	case OwnPortfolioFound:
		return "found"
	case OwnPortfolioFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// OwnPortfolioResult is the tagged result of FetchOwnPortfolio.
// Portfolio is set only for Found; Err only for Failed.
type OwnPortfolioResult struct {
	Status    OwnPortfolioStatus
	Portfolio portfolio.Portfolio
	Err       error
}

func notFound() OwnPortfolioResult {
	return OwnPortfolioResult{Status: OwnPortfolioNotFound}
}

func found(p portfolio.Portfolio) OwnPortfolioResult {
	return OwnPortfolioResult{Status: OwnPortfolioFound, Portfolio: p}
}

func failed(err error) OwnPortfolioResult {
	return OwnPortfolioResult{Status: OwnPortfolioFailed, Err: err}
}
