package models

import "testing"

// TestAssetHumanSize verifies human-readable size formatting at the unit
// boundaries.
func TestAssetHumanSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "2 KB"},
		{1024 * 1024, "1.0 MB"},
		{5*1024*1024 + 512*1024, "5.5 MB"},
	}
	for _, tt := range tests {
		a := &Asset{SizeBytes: tt.size}
		if got := a.HumanSize(); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestAssetIsImage(t *testing.T) {
	if !(&Asset{ContentType: "image/png"}).IsImage() {
		t.Error("image/png should be an image")
	}
	if (&Asset{ContentType: "application/pdf"}).IsImage() {
		t.Error("application/pdf is not an image")
	}
}

func TestJobStatusIsFinal(t *testing.T) {
	for s, want := range map[JobStatus]bool{
		JobStatusPending:    false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	} {
		if s.IsFinal() != want {
			t.Errorf("%s.IsFinal() = %v, want %v", s, !want, want)
		}
	}
}
