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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReason_String(t *testing.T) {
	want := map[Reason]string{
		Steer:                  "steered",
		NoSteerTargetInterface: "target-interface",
		NoSteerReassoc:         "reassoc",
		NoSteerNewStation:      "new-station",
		NoSteerDeferred:        "deferred",
		NoSteerNonCandidate:    "non-candidate",
		NoSteerWeakSignal:      "weak-signal",
		NoSteerRecentlySteered: "recently-steered",
		NoSteerUnspecified:     "unspecified",
		ReasonUnknown:          "unknown",
		Reason(42):             "unknown",
		Reason(-1):             "unknown",
	}

	for reason, s := range want {
		assert.Equal(t, s, reason.String(), "reason %d", int(reason))
	}

	assert.Len(t, Reasons, 9)
}

func TestDecision_JSON(t *testing.T) {
	b, err := json.Marshal(Decision{Steer: true, Reason: Steer})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"reason":"steered"`)

	var got Decision
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, Steer, got.Reason)

	require.NoError(t, json.Unmarshal([]byte(`{"reason":"bogus"}`), &got))
	assert.Equal(t, ReasonUnknown, got.Reason)

	assert.Error(t, json.Unmarshal([]byte(`{"reason":7}`), &got))
}

func TestSteerEvent_String(t *testing.T) {
	assert.Equal(t, "probe", EventProbe.String())
	assert.Equal(t, "defer", EventDefer.String())
	assert.Equal(t, 5, int(EventDefer))
	assert.Equal(t, "invalid", SteerEvent(9).String())
	assert.Equal(t, "target", TargetInterface.String())
	assert.Equal(t, "current", CurrentInterface.String())
}
