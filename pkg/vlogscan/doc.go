// Package vlogscan parses vlog audit lines and analyzes them for activity
// spikes and suspicious behavior.
//
// Quick start:
//
//	s, err := vlogscan.New(vlogscan.WithMode("fallback"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev := s.ParseLine("0xAB12[ts:1000]|EVNT:XR-EXEC!@run_usr:alice=>/usr/bin/ls")
//	fmt.Println(ev.EventType, ev.Category) // XR-EXEC user
//
//	report, err := s.Analyze(ctx, vlogscan.Input{Name: "audit.vlog", Reader: f})
//
// A Scanner is safe for concurrent use. Create once, reuse across inputs.
package vlogscan
