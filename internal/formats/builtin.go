package formats

var assessmentSections = []string{
	"CLIENT INFORMATION",
	"PRESENTING PROBLEM",
	"MENTAL STATUS & CLINICAL OBSERVATIONS",
	"ASSESSMENT RESULTS",
	"CLINICAL HISTORY",
	"RISK ASSESSMENT",
	"CLINICAL IMPRESSION",
	"STRENGTHS AND CHALLENGES",
	"TREATMENT RECOMMENDATIONS",
}

var assessmentGuidance = map[string]string{
	"CLIENT INFORMATION":                    "the client's basic demographics and the referral source",
	"PRESENTING PROBLEM":                    "the client's primary concerns and symptoms",
	"MENTAL STATUS & CLINICAL OBSERVATIONS": "behavior, appearance, mood, and mental status findings",
	"ASSESSMENT RESULTS":                    "relevant assessment scores, clinical measures, or findings",
	"CLINICAL HISTORY":                      "mental health, medical, and treatment history",
	"RISK ASSESSMENT":                       "safety concerns and protective factors",
	"CLINICAL IMPRESSION":                   "diagnostic considerations and clinical reasoning",
	"STRENGTHS AND CHALLENGES":              "the client's strengths and areas of difficulty",
	"TREATMENT RECOMMENDATIONS":             "a specific treatment plan and recommendations",
}

// AssessmentSections returns a copy of the fixed heading list for assessment notes.
func AssessmentSections() []string {
	return append([]string(nil), assessmentSections...)
}

// AssessmentGuidance returns a copy of the per-heading writing guidance for
// assessment notes.
func AssessmentGuidance() map[string]string {
	out := make(map[string]string, len(assessmentGuidance))
	for k, v := range assessmentGuidance {
		out[k] = v
	}
	return out
}

var builtin = []Format{
	{
		ID:          "girp",
		Label:       "GIRP",
		Description: "Goals, Intervention, Response, Plan - Standard format focusing on session goals and outcomes",
		Sections: []string{
			"GOALS/FOCUS OF SESSION",
			"INTERVENTIONS AND STRUCTURED ACTIVITIES",
			"RESPONSE TO INTERVENTIONS",
			"PLAN AND NEXT STEPS",
		},
		Guidance: map[string]string{
			"GOALS/FOCUS OF SESSION":                  "the objectives the client is working towards, including any therapy approach used",
			"INTERVENTIONS AND STRUCTURED ACTIVITIES": "specific therapeutic strategies and structured activities, including the role of TH",
			"RESPONSE TO INTERVENTIONS":               "the client's reactions and progress related to the interventions",
			"PLAN AND NEXT STEPS":                     "future interventions and goals for upcoming sessions, including any plan information",
		},
	},
	{
		ID:          "dap",
		Label:       "DAP",
		Description: "Description, Assessment, Plan - Concise format for describing session content and outcomes",
		Sections: []string{
			"DESCRIPTION OF SESSION",
			"ASSESSMENT OF PROGRESS",
			"PLAN FOR TREATMENT",
		},
		Guidance: map[string]string{
			"DESCRIPTION OF SESSION": "the session content, including presenting problems and interventions used",
			"ASSESSMENT OF PROGRESS": "the client's response, progress, and current functioning",
			"PLAN FOR TREATMENT":     "next steps and treatment recommendations",
		},
	},
	{
		ID:          "birp",
		Label:       "BIRP",
		Description: "Behavior, Intervention, Response, Plan - Focuses on observed behaviors and interventions",
		Sections: []string{
			"BEHAVIOR OBSERVED",
			"INTERVENTIONS USED",
			"RESPONSE TO INTERVENTIONS",
			"PLAN FOR NEXT SESSION",
		},
		Guidance: map[string]string{
			"BEHAVIOR OBSERVED":         "the client's presentation and observable behaviors",
			"INTERVENTIONS USED":        "specific therapeutic techniques and interventions",
			"RESPONSE TO INTERVENTIONS": "the client's reactions and engagement",
			"PLAN FOR NEXT SESSION":     "future treatment direction and homework",
		},
	},
	{
		ID:          "soap",
		Label:       "SOAP",
		Description: "Subjective, Objective, Assessment, Plan - Medical-style format for comprehensive documentation",
		Sections: []string{
			"SUBJECTIVE INFORMATION",
			"OBJECTIVE OBSERVATIONS",
			"ASSESSMENT OF PROGRESS",
			"PLAN AND RECOMMENDATIONS",
		},
		Guidance: map[string]string{
			"SUBJECTIVE INFORMATION":   "the client's reported experiences and concerns",
			"OBJECTIVE OBSERVATIONS":   "observable behaviors and clinical findings",
			"ASSESSMENT OF PROGRESS":   "current status and progress",
			"PLAN AND RECOMMENDATIONS": "the treatment plan and next steps",
		},
	},
	{
		ID:          "pirp",
		Label:       "PIRP",
		Description: "Problem, Intervention, Response, Plan - Problem-focused approach to session documentation",
		Sections: []string{
			"PROBLEM ADDRESSED",
			"INTERVENTIONS USED",
			"RESPONSE TO TREATMENT",
			"PLAN FOR CONTINUATION",
		},
		Guidance: map[string]string{
			"PROBLEM ADDRESSED":     "the primary issues worked on this session",
			"INTERVENTIONS USED":    "therapeutic techniques employed",
			"RESPONSE TO TREATMENT": "the client's engagement and progress",
			"PLAN FOR CONTINUATION": "the ongoing treatment strategy",
		},
	},
	{
		ID:          "rift",
		Label:       "RIFT",
		Description: "Reason, Intervention, Feedback, Therapy goals - Goal-oriented session documentation",
		Sections: []string{
			"REASON FOR SESSION",
			"INTERVENTIONS APPLIED",
			"FEEDBACK AND RESPONSE",
			"THERAPY GOALS PROGRESS",
		},
		Guidance: map[string]string{
			"REASON FOR SESSION":     "the purpose and focus of this session",
			"INTERVENTIONS APPLIED":  "therapeutic approaches used",
			"FEEDBACK AND RESPONSE":  "the client's feedback and engagement",
			"THERAPY GOALS PROGRESS": "progress toward treatment goals",
		},
	},
	{
		ID:          "care",
		Label:       "CARE",
		Description: "Client, Assessment, Response, Evaluation - Client-centered progress documentation",
		Sections: []string{
			"CLIENT PRESENTATION",
			"ASSESSMENT OF NEEDS",
			"RESPONSE TO SESSION",
			"EVALUATION OF PROGRESS",
		},
		Guidance: map[string]string{
			"CLIENT PRESENTATION":    "the client's current state and concerns",
			"ASSESSMENT OF NEEDS":    "clinical needs and focus areas",
			"RESPONSE TO SESSION":    "the client's engagement and progress",
			"EVALUATION OF PROGRESS": "treatment effectiveness and outcomes",
		},
	},
	{
		ID:          "stop",
		Label:       "STOP",
		Description: "Summary, Treatment, Observation, Plan - Structured approach to session documentation",
		Sections: []string{
			"SUMMARY OF SESSION",
			"TREATMENT PROVIDED",
			"OBSERVATIONS MADE",
			"PLAN MOVING FORWARD",
		},
		Guidance: map[string]string{
			"SUMMARY OF SESSION":  "the session content and focus",
			"TREATMENT PROVIDED":  "therapeutic interventions used",
			"OBSERVATIONS MADE":   "clinical observations",
			"PLAN MOVING FORWARD": "next steps and recommendations",
		},
	},
	{
		ID:          "mint",
		Label:       "MINT",
		Description: "Motivation, Issues, Next steps, Therapeutic tools - Focus on motivation and tools",
		Sections: []string{
			"MOTIVATION AND ENGAGEMENT",
			"ISSUES ADDRESSED",
			"NEXT STEPS IDENTIFIED",
			"THERAPEUTIC TOOLS USED",
		},
		Guidance: map[string]string{
			"MOTIVATION AND ENGAGEMENT": "the client's motivation and engagement level",
			"ISSUES ADDRESSED":          "problems worked on this session",
			"NEXT STEPS IDENTIFIED":     "agreed-upon next steps",
			"THERAPEUTIC TOOLS USED":    "specific techniques and their implementation",
		},
	},
	{
		ID:          "fort",
		Label:       "FORT",
		Description: "Focus, Outcome, Response, Tactics - Outcome-focused session documentation",
		Sections: []string{
			"FOCUS OF SESSION",
			"OUTCOME DESIRED",
			"RESPONSE OBSERVED",
			"TACTICS FOR PROGRESS",
		},
		Guidance: map[string]string{
			"FOCUS OF SESSION":     "the session's primary focus",
			"OUTCOME DESIRED":      "therapeutic goals and desired results",
			"RESPONSE OBSERVED":    "the client's responses and progress",
			"TACTICS FOR PROGRESS": "specific strategies for advancement",
		},
	},
}
