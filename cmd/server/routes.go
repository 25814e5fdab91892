package main

import (
	"net/http"

	"github.com/JaimeStill/document-center/internal/browser"
	"github.com/JaimeStill/document-center/internal/documents"
	"github.com/JaimeStill/document-center/internal/infrastructure"
	"github.com/JaimeStill/document-center/internal/lifecycle"
	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, infra *infrastructure.Infrastructure, domain *Domain) {
	r.RegisterGroup(documents.NewHandler(domain.Documents, infra.Logger).Routes())
	r.RegisterGroup(browser.NewHandler(domain.Browser, infra.Logger).Routes())

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, infra.Lifecycle)
		},
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/metrics",
		Handler: metrics.Handler().ServeHTTP,
	})
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
