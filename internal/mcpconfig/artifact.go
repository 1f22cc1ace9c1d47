// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcpconfig

import (
	"fmt"
	"os"
	"sync"
)

// artifactPattern names artifacts so concurrent launches never collide.
const artifactPattern = "zenlaunch-mcp-*.json"

// Artifact is a rendered LaunchConfig on disk. It must be removed when the
// agent exits; Remove is safe to call more than once.
type Artifact struct {
	Path string

	once sync.Once
	err  error
}

// WriteArtifact renders cfg into a new private file in dir. An empty dir
// means os.TempDir. On any error no file is left behind.
func WriteArtifact(dir string, cfg LaunchConfig) (*Artifact, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(dir, artifactPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create launch configuration: %w", err)
	}
	path := f.Name()

	if err := f.Chmod(0600); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to restrict launch configuration permissions: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write launch configuration: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close launch configuration: %w", err)
	}

	return &Artifact{Path: path}, nil
}

// Remove deletes the file. Only the first call does any work; a file that
// is already gone is not an error.
func (a *Artifact) Remove() error {
	a.once.Do(func() {
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			a.err = fmt.Errorf("failed to remove launch configuration: %w", err)
		}
	})
	return a.err
}
