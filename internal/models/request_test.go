package models

import (
	"testing"
)

func TestNoteRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      *NoteRequest
		wantErr  bool
		wantType NoteType
	}{
		{"empty content", &NoteRequest{Content: "  "}, true, ""},
		{"free text", &NoteRequest{Content: "CL reported"}, false, NoteTypeSession},
		{"assessment kept", &NoteRequest{NoteType: NoteTypeAssessment, Content: "x"}, false, NoteTypeAssessment},
		{"unsupported type", &NoteRequest{NoteType: "intake", Content: "x"}, true, ""},
		{"guided only", &NoteRequest{GuidedAnswers: map[string]string{"mood": "anxious"}}, false, NoteTypeSession},
		{"guided blank answers", &NoteRequest{GuidedAnswers: map[string]string{"mood": "  "}}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.req.NoteType != tt.wantType {
				t.Errorf("NoteType = %q, want %q", tt.req.NoteType, tt.wantType)
			}
		})
	}
}

func TestNoteRequest_IsAssessment(t *testing.T) {
	if (&NoteRequest{NoteType: NoteTypeSession}).IsAssessment() {
		t.Error("session request reported as assessment")
	}
	if !(&NoteRequest{NoteType: NoteTypeAssessment}).IsAssessment() {
		t.Error("assessment request not reported as assessment")
	}
}
