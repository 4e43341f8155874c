// Command patrec runs the toolkit's three primitives over a synthetic
// clustered data set: classifies a probe point with kNN and reduces the
// set with PCA and LDA. All knobs come from PATREC_* environment
// variables.
package main

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/valyala/fastrand"

	"github.com/go-patrec/patrec/geom"
	"github.com/go-patrec/patrec/internal/buildinfo"
	"github.com/go-patrec/patrec/internal/logging"
	"github.com/go-patrec/patrec/knn"
	"github.com/go-patrec/patrec/lda"
	"github.com/go-patrec/patrec/pca"
)

type config struct {
	ClusterSize    int                   `envconfig:"PATREC_CLUSTER_SIZE" default:"50"`
	ClusterNum     int                   `envconfig:"PATREC_CLUSTER_NUM" default:"3"`
	Dim            int                   `envconfig:"PATREC_DIM" default:"3"`
	KNum           int                   `envconfig:"PATREC_K_NUM" default:"5"`
	Components     int                   `envconfig:"PATREC_COMPONENTS" default:"2"`
	Spread         float64               `envconfig:"PATREC_SPREAD" default:"10"`
	MetricFuncType geom.DistanceFuncType `envconfig:"PATREC_DISTANCE_FUNC" default:"EUCLIDEAN"`
	Debug          bool                  `envconfig:"PATREC_DEBUG" default:"false"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		logging.DefaultLogger().Fatalf("error loading environment variables: %v", err)
	}
	logger := logging.NewLogger(cfg.Debug)
	ctx := logging.WithLogger(context.Background(), logger)
	if err := run(ctx, cfg); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg config) error {
	logger := logging.FromContext(ctx)
	logger.Infof("%s %s", buildinfo.Info.Name(), buildinfo.Info.Tag())

	data, labels := clusters(cfg)
	size := cfg.ClusterSize * cfg.ClusterNum

	distFn, err := geom.DistanceFuncFor(cfg.MetricFuncType)
	if err != nil {
		return fmt.Errorf("geom.DistanceFuncFor: %w", err)
	}

	clf := knn.New[string](knn.WithDistanceFunc(distFn))
	if err := clf.Load(data, cfg.Dim, labels, size); err != nil {
		return fmt.Errorf("knn.Load: %w", err)
	}
	probe := probePoint(cfg)
	label, err := clf.Classify(probe, cfg.KNum)
	if err != nil {
		return fmt.Errorf("knn.Classify: %w", err)
	}
	logger.Infow("classified probe point",
		"probe", probe, "k", cfg.KNum, "label", label, "loaded", clf.Len())

	pcaReducer := pca.New()
	if err := pcaReducer.Fit(data, cfg.Dim, size); err != nil {
		return fmt.Errorf("pca.Fit: %w", err)
	}
	projected, err := pcaReducer.Transform(cfg.Components)
	if err != nil {
		return fmt.Errorf("pca.Transform: %w", err)
	}
	logger.Infow("pca projection",
		"components", len(projected)/size, "values", len(projected))

	ldaReducer := lda.New[string]()
	if err := ldaReducer.Fit(data, cfg.Dim, labels, size); err != nil {
		return fmt.Errorf("lda.Fit: %w", err)
	}
	separated, err := ldaReducer.Transform(cfg.Components)
	if err != nil {
		return fmt.Errorf("lda.Transform: %w", err)
	}
	logger.Infow("lda projection",
		"classes", ldaReducer.Labels(), "values", len(separated))

	return nil
}

// clusters generates ClusterNum groups of ClusterSize points, each group
// scattered around a center far enough from the others that the labels
// are recoverable.
func clusters(cfg config) ([]float64, []string) {
	data := make([]float64, 0, cfg.ClusterSize*cfg.ClusterNum*cfg.Dim)
	labels := make([]string, 0, cfg.ClusterSize*cfg.ClusterNum)
	for c := 0; c < cfg.ClusterNum; c++ {
		center := clusterCenter(cfg, c)
		for i := 0; i < cfg.ClusterSize; i++ {
			for j := 0; j < cfg.Dim; j++ {
				data = append(data, center[j]+jitter(cfg.Spread))
			}
			labels = append(labels, fmt.Sprintf("C%d", c))
		}
	}
	return data, labels
}

func probePoint(cfg config) []float64 {
	center := clusterCenter(cfg, 0)
	probe := make([]float64, cfg.Dim)
	for j := 0; j < cfg.Dim; j++ {
		probe[j] = center[j] + jitter(cfg.Spread)
	}
	return probe
}

func clusterCenter(cfg config, c int) []float64 {
	center := make([]float64, cfg.Dim)
	for j := 0; j < cfg.Dim; j++ {
		center[j] = float64(c+1) * cfg.Spread * 10
	}
	return center
}

func jitter(spread float64) float64 {
	return (float64(fastrand.Uint32n(1000))/1000 - 0.5) * spread
}
