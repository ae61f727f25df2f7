// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics() // make sure it starts in the default state of noopMeter

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}
	require.Nil(t, HTTPHandler())

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
	require.NotNil(t, HTTPHandler())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("count1").Add(1)
	Counter("count1").Add(2)

	ops := CounterVec("ops", []string{"op"})
	gauge := Gauge("gauge1")
	gaugeVec := GaugeVec("gaugeVec1", []string{"zeroOrOne"})
	hist := HistogramVec("hist1", []string{"zeroOrOne"}, BucketHTTPReqs)

	total := 0
	for i := range 10 {
		label := map[string]string{"zeroOrOne": strconv.Itoa(i % 2)}
		ops.AddWithLabel(1, map[string]string{"op": "submit"})
		gaugeVec.AddWithLabel(int64(i), label)
		hist.ObserveWithLabels(int64(i), label)
		total += i
	}
	gauge.Set(42)

	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	families := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		families[mf.GetName()] = mf
	}

	require.Equal(t, float64(3), families["stakepool_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(10), families["stakepool_ops"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(42), families["stakepool_gauge1"].Metric[0].GetGauge().GetValue())

	sumGaugeVec := families["stakepool_gaugeVec1"].Metric[0].GetGauge().GetValue() +
		families["stakepool_gaugeVec1"].Metric[1].GetGauge().GetValue()
	require.Equal(t, float64(total), sumGaugeVec)

	sumHist := families["stakepool_hist1"].Metric[0].GetHistogram().GetSampleSum() +
		families["stakepool_hist1"].Metric[1].GetHistogram().GetSampleSum()
	require.Equal(t, float64(total), sumHist)
}
