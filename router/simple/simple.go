package simple

import (
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/router"
)

type Handler func(*http.Request) *http.Response

// Router adapts a plain synchronous handler function to the router contract:
// the respond callback is invoked with whatever the function returns, before
// Handle itself returns.
type Router struct {
	handler Handler
}

func New(handler Handler) *Router {
	return &Router{handler: handler}
}

func (r *Router) Handle(request *http.Request, respond router.Respond) {
	respond(r.handler(request))
}
