// Package metrics defines the Prometheus instruments shared across the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingress metrics
var (
	// MessagesPublishedTotal tracks messages accepted at ingress by channel kind.
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_published_total",
			Help: "Messages published to the broker by kind (room/broadcast)",
		},
		[]string{"kind"},
	)

	// AssistantRepliesTotal tracks assistant reply outcomes.
	AssistantRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_assistant_replies_total",
			Help: "Assistant reply attempts by status (ok/error)",
		},
		[]string{"status"},
	)
)

// Fan-out metrics
var (
	// HubConnectedClients tracks websocket clients connected to this instance.
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "WebSocket clients currently connected to this instance",
		},
	)

	// HubMessagesDeliveredTotal tracks messages pushed to client send buffers.
	HubMessagesDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_messages_delivered_total",
			Help: "Messages pushed to websocket client send buffers",
		},
	)

	// HubSlowClientsEvicted tracks clients dropped because their send buffer filled up.
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "WebSocket clients evicted due to full send buffer",
		},
	)

	// HubCommandChannelDepth tracks current command channel depth.
	HubCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_command_channel_depth",
			Help: "Current hub command channel depth",
		},
	)
)

// Analysis metrics
var (
	// AnalysisProcessedTotal tracks analyzed messages by dimension and status (ok/fallback).
	AnalysisProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_processed_total",
			Help: "Analyzed messages by dimension and status (ok/fallback)",
		},
		[]string{"dimension", "status"},
	)

	// AnalysisClassifyDuration tracks classifier call latency in seconds.
	AnalysisClassifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_classify_duration_seconds",
			Help:    "Classifier call duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"dimension"},
	)

	// AgentCircuitBreakerState tracks the agent circuit breaker state (0=closed, 1=half-open, 2=open).
	AgentCircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_circuit_breaker_state",
			Help: "Agent circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
