package logging

import "testing"

func TestProgressSamplerSequence(t *testing.T) {
	type step struct {
		stage   string
		percent float64
		want    bool
	}
	tests := []struct {
		name  string
		size  float64
		steps []step
	}{
		{
			name: "buckets within one stage",
			size: 10,
			steps: []step{
				{"encode", 0, true},
				{"encode", 4, false},
				{"encode", 9.9, false},
				{"encode", 10, true},
				{"encode", 35, true},
				{"encode", 20, false},
				{"encode", 100, true},
				{"encode", 140, false},
			},
		},
		{
			name: "stage change resets buckets",
			size: 25,
			steps: []step{
				{"compose", 80, true},
				{"encode", 0, true},
				{"encode", 30, true},
				{" encode ", 40, false},
				{"finalize", 30, true},
			},
		},
		{
			name: "unknown percent only reports stages",
			size: 5,
			steps: []step{
				{"probe", -1, true},
				{"probe", -1, false},
				{"", -1, false},
				{"encode", -1, true},
				{"encode", 2, true},
			},
		},
		{
			name: "default step",
			size: 0,
			steps: []step{
				{"encode", 1, true},
				{"encode", 4.9, false},
				{"encode", 5, true},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewProgressSampler(tc.size)
			for i, st := range tc.steps {
				if got := s.ShouldLog(st.stage, st.percent); got != st.want {
					t.Fatalf("step %d (%q %.1f): got %v, want %v", i, st.stage, st.percent, got, st.want)
				}
			}
		})
	}
}

func TestNilProgressSamplerPassesEverything(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("encode", 50) || !s.ShouldLog("encode", 50) {
		t.Fatal("nil sampler should not suppress updates")
	}
}
