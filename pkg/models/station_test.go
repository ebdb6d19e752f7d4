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

func TestParseHardwareAddr(t *testing.T) {
	addr, err := ParseHardwareAddr(" 02:AB:cd:00:11:ff ")
	require.NoError(t, err)
	assert.Equal(t, "02:ab:cd:00:11:ff", addr.String())
	assert.Equal(t, "02abcd0011ff", addr.Compact())
	assert.False(t, addr.IsZero())

	dashed, err := ParseHardwareAddr("02-ab-cd-00-11-ff")
	require.NoError(t, err)
	assert.Equal(t, addr, dashed)

	_, err = ParseHardwareAddr("not-a-mac")
	require.ErrorIs(t, err, errInvalidHardwareAddr)

	_, err = ParseHardwareAddr("00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01")
	require.ErrorIs(t, err, errInvalidHardwareAddr)

	assert.True(t, HardwareAddr{}.IsZero())
}

func TestHardwareAddr_JSON(t *testing.T) {
	sta := Station{Addr: MustParseHardwareAddr("02:00:00:00:00:01"), Signal: -50, AvgSignal: -52, Strikes: 1}

	b, err := json.Marshal(sta)
	require.NoError(t, err)
	assert.JSONEq(t, `{"addr":"02:00:00:00:00:01","signal":-50,"avg_signal":-52,"strikes":1}`, string(b))

	var back Station
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, sta, back)

	var bad HardwareAddr
	require.Error(t, json.Unmarshal([]byte(`"zz"`), &bad))
}
