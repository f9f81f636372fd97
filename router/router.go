package router

import (
	"io"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

// New returns the service mux with probes, metrics and the huma API.
// The API is returned as well so its OpenAPI document can be exported.
func New(
	config huma.Config,
	readiness http.HandlerFunc,
	writeMetrics func(io.Writer),
	opts ...func(huma.API),
) (http.Handler, huma.API) {
	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("/readiness", readiness)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) { writeMetrics(w) })

	api := humago.New(mux, config)
	for _, opt := range opts {
		opt(api)
	}

	return mux, api
}

// Config is [huma.DefaultConfig] without the $schema link on response bodies.
func Config(title, version, description string, tags ...*huma.Tag) huma.Config {
	config := huma.DefaultConfig(title, version)
	config.Info.Description = description
	config.Tags = tags
	config.CreateHooks = nil
	return config
}

func OptUseMiddleware(middlewares ...func(huma.Context, func(huma.Context))) func(huma.API) {
	return func(api huma.API) { api.UseMiddleware(middlewares...) }
}

// OptGroup applies opts to a group mounted at prefix. An empty prefix applies
// them to api directly.
func OptGroup(prefix string, opts ...func(huma.API)) func(huma.API) {
	return func(api huma.API) {
		if prefix != "" {
			api = huma.NewGroup(api, prefix)
		}
		for _, opt := range opts {
			opt(api)
		}
	}
}

// OptAutoRegister registers every RegisterXxx method of server, see [huma.AutoRegister].
func OptAutoRegister(server any) func(huma.API) {
	return func(api huma.API) { huma.AutoRegister(api, server) }
}
