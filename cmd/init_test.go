package cmd

import "testing"

func TestInitStepFor(t *testing.T) {
	tests := []struct {
		name          string
		hasCredential bool
		setupComplete bool
		want          initStep
	}{
		{"first run", false, false, initFresh},
		{"password stored, no level", true, false, initResume},
		{"initialized", true, true, initComplete},
		{"level saved but keyring emptied", false, true, initFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := initStepFor(tt.hasCredential, tt.setupComplete); got != tt.want {
				t.Errorf("initStepFor(%v, %v) = %d, want %d", tt.hasCredential, tt.setupComplete, got, tt.want)
			}
		})
	}
}
