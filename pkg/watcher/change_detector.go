package watcher

// ChangeAnalysis describes what changed and which rebuild steps need to run
type ChangeAnalysis struct {
	NeedSchemaReload bool
	NeedReparse      bool // raw records must be parsed again
	NeedReencode     bool
	ChangedFiles     []string
}

// AnalyzeChanges determines which rebuild steps to run for a change
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeSchema:
		// New schemas change how records parse, so everything downstream reruns
		analysis.NeedSchemaReload = true
		analysis.NeedReparse = true
		analysis.NeedReencode = true

	case ChangeTypeInput:
		// Artifacts hold parsed resources; raw scan dumps still need parsing,
		// which callers decide from the input kind
		analysis.NeedReencode = true
	}

	return analysis
}
