// SPDX-License-Identifier: MIT
package engines

import "github.com/apimgr/metaseek/internal/engine"

// All returns one instance of every built-in engine, the slice
// internal/registry.New is typically called with at startup.
func All() []engine.Engine {
	return []engine.Engine{
		NewDuckDuckGo(),
		NewBrave(),
		NewWikipedia(),
		NewGitHub(),
	}
}
