/*-
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

// Package config loads the apsteerd JSON configuration: one steering and
// one signal section shared by every managed interface, plus the store and
// log settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	errInvalidDuration = errors.New("invalid duration")
	errReadFile        = errors.New("failed to read config file")
	errUnmarshal       = errors.New("failed to decode config JSON")
)

// LoadFile decodes the JSON file at path into dst. Keys missing from the
// file leave the matching fields untouched, so optional settings stay nil.
func LoadFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", errReadFile, path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w %q: %w", errUnmarshal, path, err)
	}

	return nil
}

// ValidateConfig runs cfg.Validate when cfg is a Validator.
func ValidateConfig(cfg any) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// LoadAndValidate decodes path into cfg and then validates it. For a
// DaemonConfig, validation also fills the defaults for absent keys.
func LoadAndValidate(path string, cfg any) error {
	if err := LoadFile(path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

// Load reads the daemon configuration at path.
func Load(path string) (*DaemonConfig, error) {
	var cfg DaemonConfig

	if err := LoadAndValidate(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
