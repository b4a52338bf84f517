// Package discovery finds module files on disk and turns their entries into
// module definitions for an injector.
//
// A module file is a YAML, JSON, TOML or HCL document whose first non-blank
// line is one of the marker comments "# inject", "// inject" or
// "/* inject */". JSON has no comments, so JSON module files carry a
// top-level "inject": true instead. Files without the marker are ignored.
//
// Entries are either plain values or references to a catalogue factory:
//
//	# inject
//	modules:
//	  greeting:
//	    value: hello
//	  message:
//	    factory: sprintf
//	    deps: [greeting, name]
//	    conf:
//	      format: "%s, %s!"
//
// A scalar or list entry is shorthand for a plain value.
package discovery
