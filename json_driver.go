package jsonmodel

import (
	"sync"

	j "github.com/goccy/go-json"
)

// JSONDriver encodes documents for ToJSON, Clone, CopyDocument and the
// metadata size. The default implementation is goccy/go-json and may be
// swapped with SetJSONDriver.
type JSONDriver interface {
	Marshal(v any) ([]byte, error)
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = goJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver in use.
func CurrentJSONDriver() JSONDriver { return getJSONDriver() }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type goJSONDriver struct{}

func (goJSONDriver) Marshal(v any) ([]byte, error) { return j.Marshal(v) }
func (goJSONDriver) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return j.MarshalIndent(v, prefix, indent)
}
func (goJSONDriver) Name() string { return "go-json" }
