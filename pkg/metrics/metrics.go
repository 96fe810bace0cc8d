package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics methods are safe to call on a nil receiver.
type Metrics struct {
	callAttemptsCounter     *prometheus.CounterVec
	callFailuresCounter     *prometheus.CounterVec
	harvestedTxCounter      prometheus.Counter
	skippedShardsCounter    prometheus.Counter
	processedBlocksCounter  prometheus.Counter
	lastIndexedSeqnoGauge   prometheus.Gauge
	deliveredRecordsCounter prometheus.Counter
}

func NewMetrics(namespace string, registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := Metrics{
		// remote calls
		callAttemptsCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_remote_call_attempts_total", namespace),
			Help: "Get-method call attempts by method",
		}, []string{"method"}),
		callFailuresCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_remote_call_failures_total", namespace),
			Help: "Get-method calls that failed after all attempts",
		}, []string{"method"}),
		// harvesting
		harvestedTxCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_harvested_transactions_total", namespace),
			Help: "Transactions collected from masterchain and shard blocks",
		}),
		skippedShardsCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_skipped_shard_blocks_total", namespace),
			Help: "Shard blocks that could not be fetched",
		}),
		processedBlocksCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_masterchain_blocks_total", namespace),
			Help: "Masterchain blocks harvested by the indexer",
		}),
		lastIndexedSeqnoGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_last_indexed_seqno", namespace),
			Help: "The latest fully processed masterchain seqno",
		}),
		deliveredRecordsCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_delivered_records_total", namespace),
			Help: "Transaction records handed to the sink",
		}),
	}
	return &m
}

func (metrics *Metrics) IncCallAttempt(method string) {
	if metrics == nil {
		return
	}
	metrics.callAttemptsCounter.WithLabelValues(method).Inc()
}

func (metrics *Metrics) IncCallFailure(method string) {
	if metrics == nil {
		return
	}
	metrics.callFailuresCounter.WithLabelValues(method).Inc()
}

func (metrics *Metrics) AddHarvested(count int, skippedShards int) {
	if metrics == nil {
		return
	}
	metrics.harvestedTxCounter.Add(float64(count))
	metrics.skippedShardsCounter.Add(float64(skippedShards))
}

func (metrics *Metrics) SetProcessedBlock(seqno uint32) {
	if metrics == nil {
		return
	}
	metrics.processedBlocksCounter.Inc()
	metrics.lastIndexedSeqnoGauge.Set(float64(seqno))
}

func (metrics *Metrics) AddDelivered(count int) {
	if metrics == nil {
		return
	}
	metrics.deliveredRecordsCounter.Add(float64(count))
}
