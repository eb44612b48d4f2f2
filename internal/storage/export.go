// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/driftline/internal/util"
)

// Export writes a stored conversation to path as indented JSON. The
// write is atomic so a crash never leaves a truncated export behind.
func (s *Store) Export(id, path string) error {
	conv, err := s.Load(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
