package adapters

type BuiltInAdapterType = string

const (
	HTTPAdapterType BuiltInAdapterType = "http"
)

// RegisterBuiltins registers all built-in adapters by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, adapters ...BuiltInAdapterType) {
	if len(adapters) == 0 {
		adapters = append(adapters, HTTPAdapterType)
	}

	for _, key := range adapters {
		switch key {
		case HTTPAdapterType:
			RegisterHTTP(r)
		}
	}
}
