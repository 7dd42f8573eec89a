package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrRoundClosed, http.StatusConflict},
		{&service.StockExceededError{ProductID: "p", Requested: 2, Remaining: 1}, http.StatusConflict},
		{&service.TransitionError{From: model.OrderStatusShipped, To: model.OrderStatusCancelled}, http.StatusUnprocessableEntity},
		{fmt.Errorf("order %w", service.ErrNotFound), http.StatusNotFound},
		{&service.ValidationError{Field: "name", Reason: "required"}, http.StatusBadRequest},
		{fmt.Errorf("%w: orders: %w", service.ErrPersistence, errors.New("conn reset")), http.StatusServiceUnavailable},
		{model.ErrCartScopeMismatch, http.StatusConflict},
		{redis_repo.ErrCartConflict, http.StatusConflict},
		{model.ErrCartLineNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusOf(c.err), c.err.Error())
	}
}

func TestServiceErrorJSONHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceErrorJSON(rec, fmt.Errorf("%w: orders: %w", service.ErrPersistence, errors.New("dial tcp 10.0.0.3:5432")))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["code"])
}
