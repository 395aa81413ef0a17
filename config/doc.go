// Package config loads the settings of an h5view process from a JSONC file.
//
// A file only needs the fields it changes; everything else keeps the value
// of Default:
//
//	{
//	  // h5grove server in front of the file
//	  "source": {"kind": "h5grove", "url": "http://localhost:8888", "file": "sample.h5"},
//	  "retry": {"maxAttempts": 5, "initialDelay": "200ms"},
//	}
//
// Durations are written as Go duration strings ("250ms", "1m30s") or as a
// number of seconds.
package config
