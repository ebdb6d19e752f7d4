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

package api

import "github.com/mfreeman451/apsteer/pkg/models"

// ProbeRequest reports a probe request heard on an interface.
type ProbeRequest struct {
	MAC    string `json:"mac"`
	Signal int    `json:"signal"`
}

// AssocRequest asks for a steering decision on an association.
type AssocRequest struct {
	MAC     string `json:"mac"`
	Signal  int    `json:"signal"`
	Reassoc bool   `json:"reassoc"`
}

// StationRequest names a station for connect and disconnect hooks.
type StationRequest struct {
	MAC string `json:"mac"`
}

type ProbeResponse struct {
	Recorded bool `json:"recorded"`
}

type DecisionResponse struct {
	Interface string              `json:"interface"`
	Station   models.HardwareAddr `json:"station"`
	models.Decision
}

type ReasonInfo struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
