package web

import "brochure/internal/adapters/http/middleware"

func errorNotice(msg string) *middleware.Flash {
	return &middleware.Flash{Kind: "error", Message: msg}
}

func successNotice(msg string) *middleware.Flash {
	return &middleware.Flash{Kind: "success", Message: msg}
}
