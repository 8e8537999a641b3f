package model

// Line is the intermediate type produced by sources and consumed by the engine.
type Line struct {
	Source    string // source name (file path, "stdin", upload name)
	Number    int    // 1-based line number within Source
	Text      string // original line text, newline stripped
	Truncated bool   // Text was cut at the source's line length limit
}
