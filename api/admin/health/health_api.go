// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/health"
)

// epochs that may pass unnoticed before the node reports unhealthy
const missedEpochs = 3

type API struct {
	healthStatus  *health.Health
	epochInterval time.Duration
}

func New(healthStatus *health.Health, epochInterval time.Duration) *API {
	return &API{
		healthStatus:  healthStatus,
		epochInterval: epochInterval,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxTimeBetweenEpochs := h.epochInterval * missedEpochs
	if query := r.URL.Query().Get("maxTimeBetweenEpochs"); query != "" {
		parsed, err := time.ParseDuration(query)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "maxTimeBetweenEpochs"))
		}
		maxTimeBetweenEpochs = parsed
	}

	acc, err := h.healthStatus.Status(maxTimeBetweenEpochs)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", utils.JSONContentType)
	if !acc.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	return utils.WriteJSON(w, acc)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
