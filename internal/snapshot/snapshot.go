// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot persists a dex.StateDump to disk between separate
// invocations of the CLI, so a sequence of ammcore subcommands can act
// on one logical, process-lifetime core even though each subcommand is
// its own process.
package snapshot

import (
	"encoding/gob"
	"errors"
	"os"

	"github.com/Appic-Solutions/appic-dex/dex"
)

// Load reads the dump at path. A missing file is reported as an empty,
// zero-value dump rather than an error, since the very first
// create-pool invocation has nothing to load yet.
func Load(path string) (dex.StateDump, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return dex.StateDump{}, nil
	}
	if err != nil {
		return dex.StateDump{}, err
	}
	defer f.Close()

	var dump dex.StateDump
	if err := gob.NewDecoder(f).Decode(&dump); err != nil {
		return dex.StateDump{}, err
	}
	return dump, nil
}

// Save writes dump to path, replacing whatever was there before.
func Save(path string, dump dex.StateDump) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(dump)
}
