package appcontext

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/config"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/producer"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	mr := miniredis.RunT(t)
	return &config.Config{
		ServiceName:          "roundsale-test",
		Env:                  "debug",
		LogLevel:             "warn",
		DbDriver:             "sqlite",
		SqliteDsn:            fmt.Sprintf("file:%s?mode=memory", uuid.NewString()),
		RedisAddr:            mr.Addr(),
		KafkaOrderTopic:      "orders",
		NotifyTimeout:        time.Second,
		RateLimitCapacity:    10,
		RateLimitRPS:         1,
		AvailabilityCacheTTL: time.Second,
		CartTTL:              time.Hour,
		DefaultShippingCost:  50,
		OrderCodeRetry:       3,
	}
}

func TestApplicationContextWiring(t *testing.T) {
	app, err := NewApplicationContext(testConfig(t))
	require.NoError(t, err)

	require.IsType(t, &producer.LogNotifier{}, app.Notifier)
	require.IsType(t, &ratelimit.LocalLimiter{}, app.Limiter)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, app.Shutdown(ctx))
}

func TestApplicationContextRejectsUnknownDriver(t *testing.T) {
	cf := testConfig(t)
	cf.DbDriver = "oracle"
	_, err := NewApplicationContext(cf)
	require.ErrorContains(t, err, "DB_DRIVER")
}
