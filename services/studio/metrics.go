// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package studio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forms_studio_mutations_total",
		Help: "Total tree mutations by operation",
	}, []string{"op"})

	validationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forms_studio_validation_runs_total",
		Help: "Total validation passes by outcome",
	}, []string{"outcome"})

	validationDefectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forms_studio_validation_defects_total",
		Help: "Total validation defects by bucket",
	}, []string{"bucket"})

	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forms_studio_publish_total",
		Help: "Total publish attempts by outcome",
	}, []string{"outcome"})
)

// observeValidation records one validation pass in the metrics.
func observeValidation(report ValidationReport) {
	outcome := "valid"
	if report.HasErrors() {
		outcome = "defects"
	}
	validationRunsTotal.WithLabelValues(outcome).Inc()
	validationDefectsTotal.WithLabelValues("pages").Add(float64(len(report.Pages)))
	validationDefectsTotal.WithLabelValues("sections").Add(float64(len(report.Sections)))
	validationDefectsTotal.WithLabelValues("branches").Add(float64(len(report.Branches)))
	validationDefectsTotal.WithLabelValues("questions").Add(float64(len(report.Questions)))
}
