package toolresult

import (
	"strings"
	"unicode/utf8"
)

// Status is the classifier's verdict on one tool execution.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusMalformed Status = "malformed"
)

// Tier names which classification rule produced the verdict, in order of
// confidence. It is the label on the classifier outcome metric.
type Tier string

const (
	TierStructured Tier = "structured"
	TierParsed     Tier = "parsed"
	TierHeuristic  Tier = "heuristic"
	TierDefault    Tier = "default"
	TierMalformed  Tier = "malformed"
)

// Outcome is the classification of one tool payload. Heuristic is set only
// when the verdict came from marker scanning rather than structure, so
// callers can log and meter those separately.
type Outcome struct {
	Status    Status
	Tier      Tier
	Heuristic bool
	Reason    string
	Payload   Payload
}

// Failed reports whether the execution must be surfaced as an error.
func (o Outcome) Failed() bool {
	return o.Status != StatusSuccess
}

// failureMarkers are scanned, lowercased, against free-text payloads that
// carry no structured verdict. Marker hits are low-confidence and always
// reported as heuristic.
var failureMarkers = []string{
	"error",
	"failed",
	"failure",
	"exception",
	"שגיאה",
	"נכשל",
	"כשל",
}

// Classify decides whether a tool payload represents success or failure.
// Rules apply in order and the first that fires wins:
//
//  1. structured: an explicit boolean "success" field is authoritative.
//  2. parsed: a JSON object carrying an "error" field, or a textual
//     status field saying so, is a failure.
//  3. heuristic: text containing a failure marker is a failure, flagged
//     low-confidence. Broken JSON gets the same scan: a truncated error
//     envelope still names its failure.
//  4. default: everything else is a success.
//
// Payloads that cannot be decoded and carry no failure marker are
// malformed, never a silent success.
func Classify(raw []byte) Outcome {
	payload := Decode(raw)

	if payload.Kind == KindMalformed {
		if text := strings.TrimSpace(string(payload.Raw)); text != "" && utf8.ValidString(text) {
			if hasFailureMarker(text) {
				return Outcome{
					Status:    StatusFailure,
					Tier:      TierHeuristic,
					Heuristic: true,
					Reason:    text,
					Payload:   payload,
				}
			}
		}
		return Outcome{
			Status:  StatusMalformed,
			Tier:    TierMalformed,
			Reason:  "tool returned an undecodable payload",
			Payload: payload,
		}
	}

	if ok, isBool := payload.boolField("success"); isBool {
		if ok {
			return Outcome{Status: StatusSuccess, Tier: TierStructured, Payload: payload}
		}
		reason, _ := payload.stringField("error", "message", "detail")
		if reason == "" {
			reason = "tool reported failure"
		}
		return Outcome{Status: StatusFailure, Tier: TierStructured, Reason: reason, Payload: payload}
	}

	if reason, ok := payload.stringField("error"); ok {
		return Outcome{Status: StatusFailure, Tier: TierParsed, Reason: reason, Payload: payload}
	}
	if status, ok := payload.stringField("status"); ok {
		switch strings.ToLower(status) {
		case "error", "failed", "failure":
			reason, _ := payload.stringField("message", "detail")
			if reason == "" {
				reason = "tool reported status " + strings.ToLower(status)
			}
			return Outcome{Status: StatusFailure, Tier: TierParsed, Reason: reason, Payload: payload}
		case "ok", "success", "completed":
			return Outcome{Status: StatusSuccess, Tier: TierParsed, Payload: payload}
		}
	}

	if payload.Kind == KindText && hasFailureMarker(payload.Text) {
		return Outcome{
			Status:    StatusFailure,
			Tier:      TierHeuristic,
			Heuristic: true,
			Reason:    payload.Text,
			Payload:   payload,
		}
	}

	return Outcome{Status: StatusSuccess, Tier: TierDefault, Payload: payload}
}

func hasFailureMarker(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range failureMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
