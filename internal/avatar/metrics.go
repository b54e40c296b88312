// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avatar_sessions_opened_total",
			Help: "Total number of customization sessions opened, by mode.",
		},
		[]string{"mode"},
	)

	fieldUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avatar_field_updates_total",
			Help: "Total number of draft field updates, by field.",
		},
		[]string{"field"},
	)

	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_resets_total",
		Help: "Total number of drafts reset to the default configuration.",
	})

	sessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avatar_sessions_closed_total",
			Help: "Total number of customization sessions closed, by outcome.",
		},
		[]string{"outcome"},
	)
)
