package handler

import (
	"wordrush/shared/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordrush_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordrush_logins_total",
			Help: "Total number of login attempts by status.",
		},
		[]string{"status"},
	)

	bestImprovementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordrush_best_improvements_total",
		Help: "Total number of strictly improved best scores.",
	})

	wordImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordrush_word_import_rows_total",
			Help: "Rows processed by word imports, by outcome.",
		},
		[]string{"outcome"},
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordrush_token_verifications_total",
			Help: "Total number of token verification attempts by status.",
		},
		[]string{"status"},
	)
)

// RecordBestImprovement counts one strict best-score improvement.
func RecordBestImprovement() {
	bestImprovementsTotal.Inc()
}

// RecordWordImport counts the rows of a finished import by outcome.
func RecordWordImport(s models.ImportSummary) {
	wordImportRowsTotal.WithLabelValues("inserted").Add(float64(s.Inserted))
	wordImportRowsTotal.WithLabelValues("duplicate").Add(float64(s.Duplicates))
	wordImportRowsTotal.WithLabelValues("failed").Add(float64(s.Failed))
}
