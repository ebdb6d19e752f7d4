/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"time"
)

// Reason explains why a station was or was not steered. Values are stable
// and appear in logs and API output.
type Reason int

const (
	ReasonUnknown          Reason = 0
	Steer                  Reason = 1 // station was steered
	NoSteerTargetInterface Reason = 2 // assoc attempt was on the target interface
	NoSteerReassoc         Reason = 3 // assoc was a reassociation
	NoSteerNewStation      Reason = 4 // never seen before
	NoSteerDeferred        Reason = 5 // inside the defer window
	NoSteerNonCandidate    Reason = 6 // never probed the target interface
	NoSteerWeakSignal      Reason = 7
	NoSteerRecentlySteered Reason = 8
	NoSteerUnspecified     Reason = 9
)

// Reasons lists every defined reason in numeric order.
var Reasons = []Reason{
	Steer,
	NoSteerTargetInterface,
	NoSteerReassoc,
	NoSteerNewStation,
	NoSteerDeferred,
	NoSteerNonCandidate,
	NoSteerWeakSignal,
	NoSteerRecentlySteered,
	NoSteerUnspecified,
}

func (r Reason) String() string {
	switch r {
	case Steer:
		return "steered"
	case NoSteerTargetInterface:
		return "target-interface"
	case NoSteerReassoc:
		return "reassoc"
	case NoSteerNewStation:
		return "new-station"
	case NoSteerDeferred:
		return "deferred"
	case NoSteerNonCandidate:
		return "non-candidate"
	case NoSteerWeakSignal:
		return "weak-signal"
	case NoSteerRecentlySteered:
		return "recently-steered"
	case NoSteerUnspecified:
		return "unspecified"
	case ReasonUnknown:
		fallthrough
	default:
		return "unknown"
	}
}

func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Reason) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	*r = ReasonUnknown

	for _, reason := range Reasons {
		if reason.String() == name {
			*r = reason
			break
		}
	}

	return nil
}

// SteerEvent identifies which kind of timestamp a record holds. The numeric
// values double as the key suffix in the persisted key scheme.
type SteerEvent int

const (
	EventProbe SteerEvent = iota
	EventAttempt
	EventFailed
	EventSuccessful
	EventConnect
	EventDefer
)

func (e SteerEvent) String() string {
	switch e {
	case EventProbe:
		return "probe"
	case EventAttempt:
		return "attempt"
	case EventFailed:
		return "failed"
	case EventSuccessful:
		return "successful"
	case EventConnect:
		return "connect"
	case EventDefer:
		return "defer"
	default:
		return "invalid"
	}
}

// InterfaceRole selects which interface an interface-scoped record belongs
// to, relative to the interface handling the request.
type InterfaceRole int

const (
	CurrentInterface InterfaceRole = iota
	TargetInterface
)

func (r InterfaceRole) String() string {
	if r == TargetInterface {
		return "target"
	}

	return "current"
}

// Decision is the outcome of an association-time steering evaluation.
type Decision struct {
	Steer      bool          `json:"steer"`
	Reason     Reason        `json:"reason"`
	SinceProbe time.Duration `json:"since_probe"`
	SinceSteer time.Duration `json:"since_steer"`
	SinceDefer time.Duration `json:"since_defer"`
}

// EventKind classifies entries published on the event hub.
type EventKind string

const (
	KindDecision EventKind = "decision"
	KindEviction EventKind = "eviction"
	KindPoll     EventKind = "poll"
)

// Event is a notification about something the engine did.
type Event struct {
	Kind      EventKind    `json:"kind"`
	Interface string       `json:"interface"`
	Station   HardwareAddr `json:"station,omitempty"`
	Signal    int          `json:"signal,omitempty"`
	Decision  *Decision    `json:"decision,omitempty"`
	Summary   *PassSummary `json:"summary,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
