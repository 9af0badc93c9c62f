/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage is the file boundary of the screenplay tools.
// It reads and writes Fountain sources with locked, transactional writes and timestamped backups.
// Next to each script it keeps an embedded SQLite index at <dir>/.fountain/index.sqlite holding
// script snapshots, a searchable element table and persisted text measurements.
// The index is derived data and is rebuilt when it is found corrupt.
package storage
