// Package config loads and validates the recognized top-level options for
// kgx Sources, Sinks and the Transformer (spec §6.3). Configuration can be
// built in code, loaded from JSON, or loaded from YAML — the same
// Options struct backs all three, mirroring the SafeConfig/Validate()
// convention the rest of this codebase uses for its ambient config layer.
//
// # Quick start
//
//	opts, err := config.LoadFile("transform.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := opts.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
