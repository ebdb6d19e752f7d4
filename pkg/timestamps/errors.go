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

package timestamps

import "errors"

var (
	ErrInvalidCapacity  = errors.New("store capacity must be at least 1")
	ErrRelativePath     = errors.New("store path must be absolute")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrNoInterface      = errors.New("interface name is required")
	ErrStoreClosed      = errors.New("store closed")
	errGetTimestamp     = errors.New("failed to get timestamp")
	errPutTimestamp     = errors.New("failed to put timestamp")
	errEvictTimestamp   = errors.New("failed to evict timestamp")
	errCountTimestamps  = errors.New("failed to count timestamps")
	errListTimestamps   = errors.New("failed to list timestamps")
	errCreateStorageDir = errors.New("failed to create store directory")
)
