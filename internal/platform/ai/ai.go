// Package ai holds the mock risk engine: a deterministic formula over age
// and status plus random jitter. It is advisory only and is not a model;
// its outputs are recomputed on demand and never treated as authoritative.
package ai

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Engine computes mock risk assessments. The jitter source is injectable so
// tests can pin it.
type Engine struct {
	rng *rand.Rand
}

func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Assessment is the result of a mock risk prediction.
type Assessment struct {
	RiskScore float64  `json:"riskScore"`
	RiskFlags []string `json:"riskFlags"`
}

// AssessRisk scores baseline 0.1, +0.3 for age >= 60, +0.5 for a critical
// status, then adds jitter in [-0.1, 0.1] and clamps to [0, 1].
func (e *Engine) AssessRisk(age int, status string) Assessment {
	score := 0.1
	var flags []string

	if age >= 60 {
		score += 0.3
		flags = append(flags, "elderly")
	}
	if strings.EqualFold(status, "critical") {
		score += 0.5
		flags = append(flags, "critical_condition")
	}

	score += (e.rng.Float64() - 0.5) * 0.2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Assessment{RiskScore: score, RiskFlags: flags}
}

// SuggestNextAppointment proposes a follow-up date: higher risk, sooner
// visit (7/14/30 days from the admission date).
func SuggestNextAppointment(admission time.Time, riskScore float64) time.Time {
	days := 30
	if riskScore > 0.7 {
		days = 7
	} else if riskScore > 0.4 {
		days = 14
	}
	return admission.AddDate(0, 0, days)
}

// Summarize renders a short narrative report for a patient.
func Summarize(name string, age int, gender, status string, a Assessment, next time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient %s, %d years old (%s), status: %s. ", name, age, gender, status)

	switch {
	case a.RiskScore > 0.7:
		b.WriteString("Patient is at high risk")
	case a.RiskScore > 0.4:
		b.WriteString("Patient has moderate risk factors")
	default:
		b.WriteString("Patient is currently low risk")
	}

	if len(a.RiskFlags) > 0 {
		fmt.Fprintf(&b, " (%s).", strings.Join(a.RiskFlags, ", "))
	} else {
		b.WriteString(" with no significant risk flags.")
	}

	fmt.Fprintf(&b, " Risk score: %.1f%%.", a.RiskScore*100)
	fmt.Fprintf(&b, " Next suggested appointment: %s.", next.Format("2006-01-02"))
	return b.String()
}
