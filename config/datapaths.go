// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// baseDataDirEnv names the environment variable consulted when --config is
// not passed on the command line.
const baseDataDirEnv = "ATLASDB_DATA"

// Data directory layout, relative to the node's data directory root.
const (
	StateDirName    = "state"
	SegmentsDirName = "segments"
	IndexDirName    = "index"
	BlocksDirName   = "blocks"
	KeysDirName     = "keys"
)

// dataSubdirs lists the subdirectories EnsureDataDirs creates under a fresh
// data directory.
var dataSubdirs = []string{StateDirName, SegmentsDirName, IndexDirName, BlocksDirName, KeysDirName}

// ResolveDataDir returns the data directory to use: the explicit flag value
// if non-empty, else the ATLASDB_DATA environment variable, else "".
func ResolveDataDir(dataDirFlag string) string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	return os.Getenv(baseDataDirEnv)
}

// EnsureDataDirs creates dataDir and its expected subdirectories if they do
// not already exist. It does not overwrite any existing content.
func EnsureDataDirs(dataDir string) error {
	if dataDir == "" {
		return fmt.Errorf("config: no data directory specified (pass --config or set %s)", baseDataDirEnv)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return err
	}
	for _, sub := range dataSubdirs {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0700); err != nil {
			return err
		}
	}
	return nil
}

// StatePath, SegmentsPath, IndexPath, BlocksPath and KeysPath return the
// absolute path to each named subdirectory under dataDir.
func StatePath(dataDir string) string    { return filepath.Join(dataDir, StateDirName) }
func SegmentsPath(dataDir string) string { return filepath.Join(dataDir, SegmentsDirName) }
func IndexPath(dataDir string) string    { return filepath.Join(dataDir, IndexDirName) }
func BlocksPath(dataDir string) string   { return filepath.Join(dataDir, BlocksDirName) }
func KeysPath(dataDir string) string     { return filepath.Join(dataDir, KeysDirName) }

// GenesisPath returns the path to the genesis file under dataDir.
func GenesisPath(dataDir string) string {
	return filepath.Join(dataDir, GenesisJSONFile)
}

// ConfigPath returns the path to the config file under dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFilename)
}
