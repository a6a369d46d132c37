package spatial

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"parkpulse/internal/models"
)

func benchmarkBays(n int) []models.Bay {
	rng := rand.New(rand.NewSource(42))
	bays := make([]models.Bay, n)
	for i := range bays {
		bays[i] = models.Bay{
			KerbsideID: fmt.Sprintf("BAY_%05d", i),
			Latitude:   -37.84 + rng.Float64()*0.05,
			Longitude:  144.93 + rng.Float64()*0.06,
			Status:     models.BayStatus(rng.Intn(3)),
		}
	}
	return bays
}

func benchLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func BenchmarkBuildIndex(b *testing.B) {
	bays := benchmarkBays(5000)
	logger := benchLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildIndex(bays, melbourneRegion, logger)
	}
}

func BenchmarkQueryRadius(b *testing.B) {
	idx, _ := BuildIndex(benchmarkBays(5000), melbourneRegion, benchLogger())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.QueryRadius(ctx, -37.8136, 144.9631, 500)
	}
}

func BenchmarkNearest(b *testing.B) {
	idx, _ := BuildIndex(benchmarkBays(5000), melbourneRegion, benchLogger())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Nearest(-37.8136, 144.9631, 20)
	}
}
