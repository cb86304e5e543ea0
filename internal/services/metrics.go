package services

import "github.com/prometheus/client_golang/prometheus"

const (
	stepRoom        = "room"
	stepChannel     = "channel"
	stepParticipant = "participant"

	outcomeFetched       = "fetched"
	outcomeCreated       = "created"
	outcomeAdopted       = "adopted" // create hit a conflict, re-fetch won
	outcomeJoined        = "joined"
	outcomeAlreadyMember = "already_member"
	outcomeFailed        = "failed"
)

// provisionSteps counts provisioning step results. Both labels are drawn
// from the fixed sets above.
var provisionSteps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "roomtoken",
		Name:      "provision_steps_total",
		Help:      "Provisioning step results by step and outcome.",
	},
	[]string{"step", "outcome"},
)

// tokensIssued counts minted tokens by whether provisioning ran.
var tokensIssued = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "roomtoken",
		Name:      "tokens_issued_total",
		Help:      "Access tokens minted, by provisioning mode.",
	},
	[]string{"provisioned"},
)

func init() {
	prometheus.MustRegister(provisionSteps, tokensIssued)
}

func observeStep(step, outcome string) {
	provisionSteps.WithLabelValues(step, outcome).Inc()
}
