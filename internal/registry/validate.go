package registry

import (
	"fmt"
	"strings"
)

// Validate performs a strict consistency check over every registered
// definition: port names must be non-empty and unique within their
// direction, a port may not be both an input and an output, and a kernel
// factory must be present. It is run once at startup, after all modules
// have registered.
func (r *Registry) Validate() error {
	var errs []string

	for _, kind := range r.Kinds() {
		def := r.defs[kind]

		if def.New == nil {
			errs = append(errs, fmt.Sprintf("model '%s': no kernel factory", kind))
		}

		inputs := make(map[string]struct{}, len(def.Description.Inputs))
		for _, name := range def.Description.Inputs {
			if name == "" {
				errs = append(errs, fmt.Sprintf("model '%s': empty input port name", kind))
				continue
			}
			if _, dup := inputs[name]; dup {
				errs = append(errs, fmt.Sprintf("model '%s': input port '%s' declared twice", kind, name))
			}
			inputs[name] = struct{}{}
		}

		outputs := make(map[string]struct{}, len(def.Description.Outputs))
		for _, name := range def.Description.Outputs {
			if name == "" {
				errs = append(errs, fmt.Sprintf("model '%s': empty output port name", kind))
				continue
			}
			if _, dup := outputs[name]; dup {
				errs = append(errs, fmt.Sprintf("model '%s': output port '%s' declared twice", kind, name))
			}
			if _, clash := inputs[name]; clash {
				errs = append(errs, fmt.Sprintf("model '%s': port '%s' declared as both input and output", kind, name))
			}
			outputs[name] = struct{}{}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
