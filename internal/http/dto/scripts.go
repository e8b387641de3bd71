package dto

import (
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/scripts"
)

type InitialMessageResponse struct {
	Template string `json:"template"`
}

type PhaseScriptsResponse struct {
	Name      string             `json:"name"`
	Summary   string             `json:"summary"`
	Templates []scripts.Template `json:"templates"`
}

// ToScriptsList shapes the full library for UI insertion, keyed by phase id.
func ToScriptsList() map[string]PhaseScriptsResponse {
	out := make(map[string]PhaseScriptsResponse, len(scripts.Phases()))
	for _, p := range scripts.Phases() {
		s, ok := scripts.ForPhase(p)
		if !ok {
			continue
		}
		templates := scripts.Templates(p)
		if templates == nil {
			templates = []scripts.Template{}
		}
		out[string(p)] = PhaseScriptsResponse{
			Name:      s.Name,
			Summary:   s.Summary,
			Templates: templates,
		}
	}
	return out
}

type ScriptResponse struct {
	Phase    string           `json:"phase"`
	Template scripts.Template `json:"template"`
}

func ToScriptResponse(p phase.Phase, t scripts.Template) ScriptResponse {
	return ScriptResponse{Phase: string(p), Template: t}
}
