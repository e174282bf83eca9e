package standards

import (
	"fmt"
	"sort"
	"sync"

	tt "github.com/gnolang/later/internal/types"
)

// Rule checks one file.
type Rule interface {
	// ID is the name standards refer to the rule by.
	ID() string
	Description() string
	// Severity is the default severity of the issues the rule reports.
	Severity() tt.Severity
	Check(f *File) ([]tt.Issue, error)
}

type ruleConstructor func() Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ruleConstructor{}
)

// Register makes a rule available to standards manifests under its ID.
// Registering the same ID twice panics.
func Register(constructor func() Rule) {
	id := constructor().ID()

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("standards: rule %q registered twice", id))
	}
	registry[id] = constructor
}

// NewRule returns a fresh instance of the registered rule id.
func NewRule(id string) (Rule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[id]
	if !ok {
		return nil, false
	}
	return c(), true
}

// Registered lists the known rule IDs in sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
