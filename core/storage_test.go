package core

import "testing"

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{name: "pdf within cap", contentType: "application/pdf", size: 1 << 20},
		{name: "exactly at the cap", contentType: "application/pdf", size: MaxUploadSize},
		{name: "webm is allowed", contentType: "video/webm", size: 10 << 20},
		{name: "webp is allowed", contentType: "image/webp", size: 1 << 10},
		{name: "docx is allowed", contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", size: 1 << 20},
		{name: "zip is rejected", contentType: "application/zip", size: 1 << 10, wantErr: ErrUnsupportedFileType},
		{name: "empty content type is rejected", contentType: "", size: 1 << 10, wantErr: ErrUnsupportedFileType},
		{name: "over the cap", contentType: "application/pdf", size: MaxUploadSize + 1, wantErr: ErrFileTooLarge},
		{name: "oversized and disallowed reports the type first", contentType: "application/zip", size: MaxUploadSize + 1, wantErr: ErrUnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateUpload(tt.contentType, tt.size); err != tt.wantErr {
				t.Errorf("ValidateUpload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInferFileType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "image"},
		{"image/webp", "image"},
		{"video/mp4", "video"},
		{"video/webm", "video"},
		{"application/pdf", "pdf"},
		{"application/msword", "pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := InferFileType(tt.contentType); got != tt.want {
				t.Errorf("InferFileType(%q) = %q, want %q", tt.contentType, got, tt.want)
			}
		})
	}
}
