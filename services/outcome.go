package services

import "applyflow/utils"

// OutcomeKind classifies a client-facing result for the notification layer.
type OutcomeKind string

const (
	OutcomeValidation  OutcomeKind = "validation"
	OutcomeUpload      OutcomeKind = "upload"
	OutcomeDuplicate   OutcomeKind = "duplicate"
	OutcomeNetwork     OutcomeKind = "network"
	OutcomeNotEligible OutcomeKind = "not_eligible"
)

// Outcome is the structured result shape surfaced to the notification layer.
// The engine never hands raw errors to presentation code.
type Outcome struct {
	OK      bool        `json:"ok"`
	Kind    OutcomeKind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

func SuccessOutcome() *Outcome {
	return &Outcome{OK: true}
}

func FailureOutcome(kind OutcomeKind, message string) *Outcome {
	return &Outcome{OK: false, Kind: kind, Message: message}
}

// Notifier receives outcomes destined for the user. It is injected so the
// engine stays free of presentation dependencies.
type Notifier interface {
	Notify(outcome Outcome)
}

// LogNotifier is the default Notifier; it writes outcomes to the structured log.
type LogNotifier struct {
	Logger *utils.Logger
}

func NewLogNotifier(logger *utils.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(outcome Outcome) {
	if outcome.OK {
		n.Logger.Info("operation succeeded")
		return
	}
	n.Logger.Warn("operation failed", map[string]string{
		"kind":    string(outcome.Kind),
		"message": outcome.Message,
	})
}
