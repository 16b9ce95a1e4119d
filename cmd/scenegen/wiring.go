package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"scenegen/internal/config"
	"scenegen/internal/export"
	"scenegen/internal/logging"
	"scenegen/internal/perception"
	"scenegen/internal/pipeline"
	"scenegen/internal/sandbox"
	"scenegen/internal/scriptgen"
)

// newClient builds the provider client. Tests replace it.
var newClient = func(catalog *perception.Catalog, llm config.LLMConfig) perception.Client {
	return perception.NewRouterFromConfig(catalog, llm)
}

// buildCatalog applies the configured default model to the built-in catalog.
func buildCatalog(c *config.Config) *perception.Catalog {
	catalog := perception.DefaultCatalog()
	if id := c.LLM.DefaultModel; id != "" && id != catalog.Default().ID {
		withDefault, err := catalog.WithDefault(id)
		if err != nil {
			logging.BootWarn("ignoring default model: %v", err)
			return catalog
		}
		catalog = withDefault
	}
	return catalog
}

// buildPipeline wires generator, sandbox and exporter. reg may be nil.
func buildPipeline(c *config.Config, catalog *perception.Catalog, reg prometheus.Registerer) *pipeline.Pipeline {
	gen := scriptgen.NewGenerator(newClient(catalog, c.LLM), catalog,
		scriptgen.WithMaxOutputTokens(c.LLM.MaxOutputTokens))

	var opts []pipeline.Option
	if reg != nil {
		opts = append(opts, pipeline.WithMetrics(pipeline.NewMetrics(reg)))
	}
	return pipeline.New(gen, sandbox.NewExecutor(), export.NewExporter(nil), opts...)
}
